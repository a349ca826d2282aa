package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleJobSeeker Role = "jobseeker"
	RoleEmployer  Role = "employer"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleJobSeeker, RoleEmployer, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Email          string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password       string    `gorm:"size:255;not null" json:"-"`
	Role           Role      `gorm:"size:20;index;not null" json:"role"`
	FirstName      string    `gorm:"size:255" json:"firstName,omitempty"`
	LastName       string    `gorm:"size:255" json:"lastName,omitempty"`
	CompanyName    string    `gorm:"size:255" json:"companyName,omitempty"`
	DisabilityType string    `gorm:"size:255" json:"disabilityType,omitempty"`
	IsVerified     bool      `gorm:"not null;default:false" json:"isVerified"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName prefers the company for employers, then the person's name,
// then the e-mail.
func (u User) DisplayName() string {
	if u.Role == RoleEmployer && u.CompanyName != "" {
		return u.CompanyName
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.Email
}

func (u User) Summary() UserSummary {
	return UserSummary{
		ID:    u.ID,
		Email: u.Email,
		Role:  u.Role,
		Name:  u.DisplayName(),
	}
}

// UserSummary is what other users get to see about a conversation partner.
type UserSummary struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
	Name  string `json:"name"`
}
