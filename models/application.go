package models

import "time"

type ApplicationStatus string

const (
	ApplicationPending     ApplicationStatus = "pending"
	ApplicationReviewed    ApplicationStatus = "reviewed"
	ApplicationShortlisted ApplicationStatus = "shortlisted"
	ApplicationAccepted    ApplicationStatus = "accepted"
	ApplicationRejected    ApplicationStatus = "rejected"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationReviewed, ApplicationShortlisted, ApplicationAccepted, ApplicationRejected:
		return true
	}
	return false
}

// Application links a job seeker to an approved job. A seeker applies to a
// job at most once.
type Application struct {
	ID          int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	JobID       int64             `gorm:"not null;uniqueIndex:idx_applications_job_applicant,priority:1" json:"jobId"`
	ApplicantID int64             `gorm:"not null;uniqueIndex:idx_applications_job_applicant,priority:2;index" json:"applicantId"`
	CoverLetter string            `gorm:"type:text" json:"coverLetter"`
	Status      ApplicationStatus `gorm:"size:20;not null;default:pending" json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`

	Applicant *UserSummary `gorm:"-" json:"applicant,omitempty"`
}

func (Application) TableName() string {
	return "applications"
}
