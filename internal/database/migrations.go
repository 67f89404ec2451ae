package database

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/universe-app/universe/internal/models"
	"github.com/universe-app/universe/pkg/crypto"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.FollowRequest{},
		&models.Post{},
		&models.Comment{},
		&models.Report{},
		&models.Community{},
		&models.CommunityJoinRequest{},
		&models.Group{},
		&models.GroupMember{},
		&models.GroupMessage{},
		&models.ChatRoom{},
		&models.Message{},
		&models.Notification{},
		&models.Event{},
		&models.Announcement{},
		&models.HelpMessage{},
		&models.PreApprovedStudent{},
		&models.AdminSetting{},
		&models.EmailVerification{},
		&models.Session{},
	)
}

// SeedData inserts the settings singleton when missing.
func SeedData(db *gorm.DB) error {
	settings := models.AdminSetting{
		BaseModel:      models.BaseModel{ID: "settings"},
		EmailAlerts:    true,
		SessionTimeout: 60,
	}
	return db.Where(models.AdminSetting{BaseModel: models.BaseModel{ID: settings.ID}}).
		Attrs(settings).
		FirstOrCreate(&models.AdminSetting{}).Error
}

// EnsureAdminUser creates the administrator account when it does not exist.
// Called at start-up with the configured admin credentials.
func EnsureAdminUser(db *gorm.DB, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		if existing.IsAdmin {
			return nil
		}
		return db.Model(&existing).Update("is_admin", true).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if password == "" {
		return errors.New("admin password is required to create the admin account")
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return err
	}

	admin := models.User{
		Name:     "Administrator",
		Email:    email,
		Password: hash,
		Tag:      "admin",
		IsAdmin:  true,
	}
	return db.Create(&admin).Error
}
