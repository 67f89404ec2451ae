package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ChatRoom is a direct conversation between two users. UpdatedAt is bumped
// on every message so room lists sort by recency.
type ChatRoom struct {
	BaseModel
	Members  []User    `gorm:"many2many:chat_room_members;" json:"members,omitempty"`
	Messages []Message `gorm:"foreignKey:ChatRoomID" json:"messages,omitempty"`
}

// Message is a single chat room entry.
type Message struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	ChatRoomID string `gorm:"type:uuid;not null;index" json:"chat_room_id"`
	UserID     string `gorm:"type:uuid;not null" json:"user_id"`
	User       *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Text      string         `json:"text"`
	Image     string         `json:"image"`
	Video     string         `json:"video"`
	Documents datatypes.JSON `json:"documents,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// BeforeCreate assigns the message identifier.
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
