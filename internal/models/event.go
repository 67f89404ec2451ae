package models

import (
	"time"

	"gorm.io/datatypes"
)

// Event is a campus event shown on the public calendar.
type Event struct {
	BaseModel
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartTime   time.Time `gorm:"not null;index" json:"start_time"`
	EndTime     time.Time `gorm:"not null" json:"end_time"`
}

// Announcement is an admin-published notice.
type Announcement struct {
	BaseModel
	Title       string         `gorm:"not null" json:"title"`
	Content     string         `gorm:"not null" json:"content"`
	Category    string         `gorm:"index" json:"category"`
	Attachments datatypes.JSON `json:"attachments,omitempty"`
}
