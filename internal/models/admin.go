package models

// Help message states.
const (
	HelpOpen     = "open"
	HelpResolved = "resolved"
)

// HelpMessage is a support request submitted through the help form.
type HelpMessage struct {
	BaseModel
	Email   string `gorm:"not null;index" json:"email"`
	Message string `gorm:"not null" json:"message"`
	Status  string `gorm:"not null;default:open;index" json:"status"`
}

// PreApprovedStudent allows a student to sign up with a matching email and
// university serial number.
type PreApprovedStudent struct {
	BaseModel
	Email string `gorm:"uniqueIndex;not null" json:"email"`
	USN   string `gorm:"column:usn;uniqueIndex;not null" json:"usn"`
}

// AdminSetting is a singleton row holding dashboard preferences. It is
// created with defaults on first access.
type AdminSetting struct {
	BaseModel
	DarkMode       bool `gorm:"default:false" json:"dark_mode"`
	EmailAlerts    bool `gorm:"default:true" json:"email_alerts"`
	SessionTimeout int  `gorm:"default:60" json:"session_timeout"`
}
