package models

// Notification types produced by the service.
const (
	NotificationFollow           = "follow"
	NotificationFollowRequest    = "follow-request"
	NotificationFollowAccept     = "follow-accept"
	NotificationLike             = "like"
	NotificationComment          = "comment"
	NotificationMessage          = "message"
	NotificationCommunityRequest = "community-join-request"
	NotificationCommunityInvite  = "community-member-added"
)

// Notification is a persisted per-user event, pushed over websocket on a
// best-effort basis.
type Notification struct {
	BaseModel
	UserID  string `gorm:"type:uuid;not null;index" json:"user_id"`
	Type    string `gorm:"not null;index" json:"type"`
	Message string `gorm:"not null" json:"message"`
	Link    string `json:"link"`
	IsRead  bool   `gorm:"default:false;index" json:"is_read"`
}
