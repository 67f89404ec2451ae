package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/universe-app/universe/internal/models"
	"github.com/universe-app/universe/pkg/mail"
)

func createTestUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()

	user := models.User{
		Name:     name,
		Email:    name + "@example.edu",
		USN:      "1XX21CS000",
		Password: "hashed-password",
		Tag:      name,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createPrivateTestUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()

	user := models.User{
		Name:      name,
		Email:     name + "@example.edu",
		USN:       "1XX21CS001",
		Password:  "hashed-password",
		Tag:       name,
		IsPrivate: true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// captureMailer records outgoing messages for assertions.
type captureMailer struct {
	mu       sync.Mutex
	messages []mail.Message
}

func (m *captureMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *captureMailer) sent() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]mail.Message, len(m.messages))
	copy(out, m.messages)
	return out
}
