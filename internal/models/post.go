package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post types.
const (
	PostTypeText  = "text"
	PostTypeImage = "image"
	PostTypeVideo = "video"
)

// Post is a feed entry authored by a user.
type Post struct {
	BaseModel
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Type  string `gorm:"not null;default:text" json:"type"`
	Text  string `json:"text"`
	Image string `json:"image"`
	Video string `json:"video"`

	IsHidden bool `gorm:"default:false;index" json:"is_hidden"`

	LikedBy  []User    `gorm:"many2many:post_likes;" json:"liked_by,omitempty"`
	SavedBy  []User    `gorm:"many2many:post_saves;" json:"-"`
	Comments []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
}

// Comment is a reply attached to a post.
type Comment struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	PostID string `gorm:"type:uuid;not null;index" json:"post_id"`
	UserID string `gorm:"type:uuid;not null" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Text   string `gorm:"not null" json:"text"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// BeforeCreate assigns the comment identifier.
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Report states.
const (
	ReportPending   = "pending"
	ReportResolved  = "resolved"
	ReportDismissed = "dismissed"
)

// Report is a user complaint about a post awaiting admin review.
type Report struct {
	BaseModel
	PostID     string `gorm:"type:uuid;not null;index" json:"post_id"`
	Post       *Post  `gorm:"foreignKey:PostID" json:"post,omitempty"`
	ReporterID string `gorm:"type:uuid;not null" json:"reporter_id"`
	Reporter   *User  `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`

	Reason      string `gorm:"not null" json:"reason"`
	Description string `json:"description"`
	Status      string `gorm:"not null;default:pending;index" json:"status"`
}
