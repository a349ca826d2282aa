package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"empowerpwd/db"
	"empowerpwd/logger"
	"empowerpwd/models"

	"gorm.io/gorm"
)

const (
	defaultJobPageSize = 20
	maxJobPageSize     = 100
)

type JobInput struct {
	Title           string `json:"jobTitle" validate:"required,max=255"`
	Description     string `json:"jobDescription" validate:"required"`
	Location        string `json:"jobLocation" validate:"max=255"`
	EmploymentType  string `json:"employmentType" validate:"omitempty,oneof=full-time part-time contract internship remote"`
	SalaryMin       int64  `json:"salaryMin" validate:"gte=0"`
	SalaryMax       int64  `json:"salaryMax" validate:"omitempty,gtefield=SalaryMin"`
	DisabilityTypes string `json:"disabilityTypes" validate:"max=500"`
}

type JobQuery struct {
	Text           string
	Location       string
	EmploymentType string
	Limit          int
	Offset         int
}

type JobService struct {
	orm *gorm.DB
}

func NewJobService(orm *gorm.DB) *JobService {
	return &JobService{orm: orm}
}

// CreateJob stores a new posting waiting for moderation.
func (s *JobService) CreateJob(ctx context.Context, employerID int64, in JobInput) (*models.Job, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationErr("%v", err)
	}
	job := &models.Job{EmployerID: employerID, Status: models.JobPending}
	applyJobInput(job, in)

	if err := db.Write(ctx, s.orm).Create(job).Error; err != nil {
		return nil, storeErr("create job", err)
	}
	logger.Log.Infof("Employer %d posted job %d", employerID, job.ID)
	return job, nil
}

// GetJob hides jobs that are not approved from everybody except the owner
// and admins.
func (s *JobService) GetJob(ctx context.Context, id, viewerID int64, viewerRole models.Role) (*models.Job, error) {
	job, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobApproved && viewerRole != models.RoleAdmin && job.EmployerID != viewerID {
		return nil, fmt.Errorf("%w: job %d", ErrNotFound, id)
	}
	return job, nil
}

// UpdateJob edits an owned posting and sends it back to moderation.
func (s *JobService) UpdateJob(ctx context.Context, employerID, id int64, in JobInput) (*models.Job, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationErr("%v", err)
	}
	job, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.EmployerID != employerID {
		return nil, fmt.Errorf("%w: job %d belongs to another employer", ErrForbidden, id)
	}

	applyJobInput(job, in)
	job.Status = models.JobPending
	job.DeclineReason = ""
	if err := db.Write(ctx, s.orm).Save(job).Error; err != nil {
		return nil, storeErr("update job", err)
	}
	return job, nil
}

func (s *JobService) DeleteJob(ctx context.Context, userID int64, role models.Role, id int64) error {
	job, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if role != models.RoleAdmin && job.EmployerID != userID {
		return fmt.Errorf("%w: job %d belongs to another employer", ErrForbidden, id)
	}
	err = db.Write(ctx, s.orm).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", id).Delete(&models.Application{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Job{}, id).Error
	})
	if err != nil {
		return storeErr("delete job", err)
	}
	return nil
}

// SearchJobs lists approved jobs, newest first.
func (s *JobService) SearchJobs(ctx context.Context, q JobQuery) ([]models.Job, error) {
	if q.Limit <= 0 {
		q.Limit = defaultJobPageSize
	}
	if q.Limit > maxJobPageSize {
		q.Limit = maxJobPageSize
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	query := db.ReadOnly(ctx, s.orm).Where("status = ?", models.JobApproved)
	if text := strings.TrimSpace(q.Text); text != "" {
		like := containsPattern(text)
		query = query.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(disability_types) LIKE ? ESCAPE '\')`, like, like, like)
	}
	if loc := strings.TrimSpace(q.Location); loc != "" {
		query = query.Where(`LOWER(location) LIKE ? ESCAPE '\'`, containsPattern(loc))
	}
	if q.EmploymentType != "" {
		query = query.Where("employment_type = ?", q.EmploymentType)
	}

	jobs := []models.Job{}
	err := query.Order("created_at DESC").Order("id DESC").Limit(q.Limit).Offset(q.Offset).Find(&jobs).Error
	if err != nil {
		return nil, storeErr("search jobs", err)
	}
	return jobs, nil
}

func (s *JobService) ListEmployerJobs(ctx context.Context, employerID int64) ([]models.Job, error) {
	jobs := []models.Job{}
	err := db.ReadOnly(ctx, s.orm).Where("employer_id = ?", employerID).Order("created_at DESC").Find(&jobs).Error
	if err != nil {
		return nil, storeErr("list employer jobs", err)
	}
	return jobs, nil
}

// PendingJobs is the admin moderation queue, oldest first.
func (s *JobService) PendingJobs(ctx context.Context) ([]models.Job, error) {
	jobs := []models.Job{}
	err := db.ReadOnly(ctx, s.orm).Where("status = ?", models.JobPending).Order("created_at ASC").Find(&jobs).Error
	if err != nil {
		return nil, storeErr("list pending jobs", err)
	}
	return jobs, nil
}

// ModerateJob approves or declines a pending job. Declining needs a reason.
func (s *JobService) ModerateJob(ctx context.Context, id int64, approve bool, reason string) (*models.Job, error) {
	reason = strings.TrimSpace(reason)
	if !approve && reason == "" {
		return nil, validationErr("a reason is required to decline a job")
	}
	job, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobPending {
		return nil, fmt.Errorf("%w: job %d is already %s", ErrConflict, id, job.Status)
	}

	if approve {
		job.Status = models.JobApproved
		job.DeclineReason = ""
	} else {
		job.Status = models.JobDeclined
		job.DeclineReason = reason
	}
	if err := db.Write(ctx, s.orm).Save(job).Error; err != nil {
		return nil, storeErr("moderate job", err)
	}
	logger.Log.Infof("Job %d moderated: %s", id, job.Status)
	return job, nil
}

func (s *JobService) find(ctx context.Context, id int64) (*models.Job, error) {
	var job models.Job
	err := db.ReadOnly(ctx, s.orm).First(&job, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: job %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, storeErr("get job", err)
	}
	return &job, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern matches text literally anywhere in a lowered column.
func containsPattern(text string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(text)) + "%"
}

func applyJobInput(job *models.Job, in JobInput) {
	job.Title = strings.TrimSpace(in.Title)
	job.Description = strings.TrimSpace(in.Description)
	job.Location = strings.TrimSpace(in.Location)
	job.EmploymentType = in.EmploymentType
	job.SalaryMin = in.SalaryMin
	job.SalaryMax = in.SalaryMax
	job.DisabilityTypes = in.DisabilityTypes
}
