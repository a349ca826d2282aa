package models

import "time"

type JobStatus string

const (
	JobPending  JobStatus = "pending"
	JobApproved JobStatus = "approved"
	JobDeclined JobStatus = "declined"
)

// Job is a posting created by an employer and moderated by an admin.
type Job struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployerID      int64     `gorm:"index;not null" json:"employerId"`
	Title           string    `gorm:"size:255;not null" json:"jobTitle"`
	Description     string    `gorm:"type:text;not null" json:"jobDescription"`
	Location        string    `gorm:"size:255;index" json:"jobLocation"`
	EmploymentType  string    `gorm:"size:50" json:"employmentType"`
	SalaryMin       int64     `json:"salaryMin"`
	SalaryMax       int64     `json:"salaryMax"`
	DisabilityTypes string    `gorm:"size:500" json:"disabilityTypes"`
	Status          JobStatus `gorm:"size:20;index;not null;default:pending" json:"jobStatus"`
	DeclineReason   string    `gorm:"size:500" json:"declineReason,omitempty"`
	CreatedAt       time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (Job) TableName() string {
	return "jobs"
}
