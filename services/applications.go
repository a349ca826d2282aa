package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"empowerpwd/db"
	"empowerpwd/logger"
	"empowerpwd/models"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

type ApplyInput struct {
	CoverLetter string `json:"coverLetter" validate:"max=5000"`
}

// ApplicationService handles job seekers applying to jobs and employers
// reviewing them.
type ApplicationService struct {
	orm   *gorm.DB
	users PartnerDirectory
}

func NewApplicationService(orm *gorm.DB, users PartnerDirectory) *ApplicationService {
	return &ApplicationService{orm: orm, users: users}
}

// Apply creates a pending application for an approved job.
func (s *ApplicationService) Apply(ctx context.Context, applicantID, jobID int64, in ApplyInput) (*models.Application, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationErr("%v", err)
	}

	var job models.Job
	err := db.Write(ctx, s.orm).First(&job, jobID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && job.Status != models.JobApproved) {
		return nil, fmt.Errorf("%w: job %d", ErrNotFound, jobID)
	}
	if err != nil {
		return nil, storeErr("get job", err)
	}
	if job.EmployerID == applicantID {
		return nil, validationErr("cannot apply to your own job")
	}

	var existing int64
	err = db.Write(ctx, s.orm).Model(&models.Application{}).
		Where("job_id = ? AND applicant_id = ?", jobID, applicantID).
		Count(&existing).Error
	if err != nil {
		return nil, storeErr("count applications", err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: already applied to job %d", ErrConflict, jobID)
	}

	app := &models.Application{
		JobID:       jobID,
		ApplicantID: applicantID,
		CoverLetter: strings.TrimSpace(in.CoverLetter),
		Status:      models.ApplicationPending,
	}
	if err := db.Write(ctx, s.orm).Create(app).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: already applied to job %d", ErrConflict, jobID)
		}
		return nil, storeErr("create application", err)
	}
	logger.Log.Infof("User %d applied to job %d", applicantID, jobID)
	return app, nil
}

// MyApplications lists the applications of one job seeker, newest first.
func (s *ApplicationService) MyApplications(ctx context.Context, applicantID int64) ([]models.Application, error) {
	apps := []models.Application{}
	err := db.ReadOnly(ctx, s.orm).
		Where("applicant_id = ?", applicantID).
		Order("created_at DESC").Order("id DESC").
		Find(&apps).Error
	if err != nil {
		return nil, storeErr("list applications", err)
	}
	return apps, nil
}

// Applicants lists the applications to a job owned by employerID with the
// applicant summaries attached, oldest first.
func (s *ApplicationService) Applicants(ctx context.Context, employerID, jobID int64) ([]models.Application, error) {
	if err := s.checkOwner(ctx, employerID, jobID); err != nil {
		return nil, err
	}

	apps := []models.Application{}
	err := db.ReadOnly(ctx, s.orm).
		Where("job_id = ?", jobID).
		Order("created_at ASC").Order("id ASC").
		Find(&apps).Error
	if err != nil {
		return nil, storeErr("list applicants", err)
	}
	if len(apps) == 0 {
		return apps, nil
	}

	summaries, err := s.users.Summaries(ctx, lo.Map(apps, func(a models.Application, _ int) int64 { return a.ApplicantID }))
	if err != nil {
		return nil, err
	}
	for i := range apps {
		if summary, ok := summaries[apps[i].ApplicantID]; ok {
			apps[i].Applicant = &summary
		}
	}
	return apps, nil
}

// SetStatus lets the owner of the job move an application along.
func (s *ApplicationService) SetStatus(ctx context.Context, employerID, applicationID int64, status models.ApplicationStatus) (*models.Application, error) {
	if !status.Valid() {
		return nil, validationErr("unknown application status %q", status)
	}
	app, err := s.find(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, employerID, app.JobID); err != nil {
		return nil, err
	}

	app.Status = status
	if err := db.Write(ctx, s.orm).Save(app).Error; err != nil {
		return nil, storeErr("update application", err)
	}
	return app, nil
}

// Withdraw removes a pending application of applicantID.
func (s *ApplicationService) Withdraw(ctx context.Context, applicantID, applicationID int64) error {
	app, err := s.find(ctx, applicationID)
	if err != nil {
		return err
	}
	if app.ApplicantID != applicantID {
		return fmt.Errorf("%w: application %d", ErrNotFound, applicationID)
	}
	if app.Status != models.ApplicationPending {
		return fmt.Errorf("%w: application %d is already %s", ErrConflict, applicationID, app.Status)
	}
	if err := db.Write(ctx, s.orm).Delete(&models.Application{}, applicationID).Error; err != nil {
		return storeErr("delete application", err)
	}
	return nil
}

func (s *ApplicationService) checkOwner(ctx context.Context, employerID, jobID int64) error {
	var job models.Job
	err := db.Write(ctx, s.orm).Select("id", "employer_id").First(&job, jobID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: job %d", ErrNotFound, jobID)
	}
	if err != nil {
		return storeErr("get job", err)
	}
	if job.EmployerID != employerID {
		return fmt.Errorf("%w: job %d belongs to another employer", ErrForbidden, jobID)
	}
	return nil
}

func (s *ApplicationService) find(ctx context.Context, id int64) (*models.Application, error) {
	var app models.Application
	err := db.Write(ctx, s.orm).First(&app, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: application %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, storeErr("get application", err)
	}
	return &app, nil
}
