package models

import "time"

// Resource is an entry of the video library: a link to an externally
// hosted video with a category used for browsing.
type Resource struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	VideoURL    string    `gorm:"size:1000;not null" json:"videoUrl"`
	Category    string    `gorm:"size:100;index" json:"category"`
	CreatedBy   int64     `gorm:"not null" json:"createdBy"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
}

func (Resource) TableName() string {
	return "resources"
}
