package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User describes a member of the university network.
type User struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	USN      string `gorm:"column:usn;index" json:"usn"`
	Password string `gorm:"not null" json:"-"`

	ImageURL string `json:"image_url"`
	BgImage  string `json:"bg_image"`
	About    string `json:"about"`
	Tag      string `gorm:"uniqueIndex" json:"tag"`

	IsPrivate bool `gorm:"default:false" json:"is_private"`
	IsAdmin   bool `gorm:"default:false" json:"is_admin"`

	Followers []User `gorm:"many2many:user_followers;joinForeignKey:UserID;joinReferences:FollowerID" json:"followers,omitempty"`
	Following []User `gorm:"many2many:user_followers;joinForeignKey:FollowerID;joinReferences:UserID" json:"following,omitempty"`

	LikedPosts []Post `gorm:"many2many:post_likes;" json:"-"`
	SavedPosts []Post `gorm:"many2many:post_saves;" json:"saved_posts,omitempty"`

	Sessions []Session `gorm:"foreignKey:UserID" json:"-"`

	ResetToken       string     `gorm:"index" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// FollowRequest tracks a pending follow of a private profile.
type FollowRequest struct {
	BaseModel
	FromUserID string `gorm:"type:uuid;not null;uniqueIndex:idx_follow_request_pair" json:"from_user_id"`
	FromUser   *User  `gorm:"foreignKey:FromUserID" json:"from_user,omitempty"`
	ToUserID   string `gorm:"type:uuid;not null;uniqueIndex:idx_follow_request_pair" json:"to_user_id"`
	ToUser     *User  `gorm:"foreignKey:ToUserID" json:"to_user,omitempty"`
	Status     string `gorm:"not null;default:pending" json:"status"`
}

// Follow request states.
const (
	FollowRequestPending  = "pending"
	FollowRequestAccepted = "accepted"
	FollowRequestRejected = "rejected"
)
