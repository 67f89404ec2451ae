package models

// Community is an interest group with optional private membership.
type Community struct {
	BaseModel
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	IsPrivate   bool   `gorm:"default:false" json:"is_private"`

	Members []User `gorm:"many2many:community_members;" json:"members,omitempty"`
	Admins  []User `gorm:"many2many:community_admins;" json:"admins,omitempty"`

	Posts        []Post                 `gorm:"many2many:community_posts;" json:"posts,omitempty"`
	JoinRequests []CommunityJoinRequest `gorm:"foreignKey:CommunityID" json:"join_requests,omitempty"`
}

// Join request states.
const (
	JoinRequestPending  = "pending"
	JoinRequestApproved = "approved"
	JoinRequestRejected = "rejected"
)

// CommunityJoinRequest records a user's request to join a private community.
// The composite unique index makes the database the arbiter of concurrent
// duplicate requests.
type CommunityJoinRequest struct {
	BaseModel
	CommunityID string     `gorm:"type:uuid;not null;uniqueIndex:idx_join_request_pair" json:"community_id"`
	Community   *Community `gorm:"foreignKey:CommunityID" json:"community,omitempty"`
	UserID      string     `gorm:"type:uuid;not null;uniqueIndex:idx_join_request_pair" json:"user_id"`
	User        *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Status      string     `gorm:"not null;default:pending" json:"status"`
}
