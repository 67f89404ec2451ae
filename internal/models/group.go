package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Group member roles.
const (
	GroupRoleAdmin  = "admin"
	GroupRoleMember = "member"
)

// Group is a named multi-user chat.
type Group struct {
	BaseModel
	Name      string `gorm:"not null" json:"name"`
	ImageURL  string `json:"image_url"`
	CreatedBy string `gorm:"type:uuid;not null" json:"created_by"`

	Members  []GroupMember  `gorm:"foreignKey:GroupID" json:"members,omitempty"`
	Messages []GroupMessage `gorm:"foreignKey:GroupID" json:"messages,omitempty"`
}

// GroupMember ties a user to a group with a role.
type GroupMember struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	GroupID string `gorm:"type:uuid;not null;uniqueIndex:idx_group_member_pair" json:"group_id"`
	UserID  string `gorm:"type:uuid;not null;uniqueIndex:idx_group_member_pair" json:"user_id"`
	User    *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role    string `gorm:"not null;default:member" json:"role"`

	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns the membership identifier.
func (gm *GroupMember) BeforeCreate(tx *gorm.DB) error {
	if gm.ID == "" {
		gm.ID = uuid.NewString()
	}
	return nil
}

// GroupMessage is a single group chat entry.
type GroupMessage struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	GroupID string `gorm:"type:uuid;not null;index" json:"group_id"`
	UserID  string `gorm:"type:uuid;not null" json:"user_id"`
	User    *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Content   string         `json:"content"`
	ImageURL  string         `json:"image_url"`
	VideoURL  string         `json:"video_url"`
	Documents datatypes.JSON `json:"documents,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// BeforeCreate assigns the message identifier.
func (gm *GroupMessage) BeforeCreate(tx *gorm.DB) error {
	if gm.ID == "" {
		gm.ID = uuid.NewString()
	}
	return nil
}
