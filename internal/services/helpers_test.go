// internal/services/helpers_test.go
package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sapmusicgroup/sap-backend/internal/config"
	"github.com/sapmusicgroup/sap-backend/internal/database"
	"github.com/sapmusicgroup/sap-backend/internal/models"
	"github.com/sapmusicgroup/sap-backend/internal/realtime"
	"github.com/sapmusicgroup/sap-backend/internal/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps the in-memory database alive and shared.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.RunMigrations(db))
	return db
}

func testConfig() *config.Config {
	utils.SetJWTSecret("test-secret")
	return &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
		Payment: config.PaymentConfig{MinimumPayout: 50},
	}
}

// seedUser creates an account and, unless role is empty, its profile.
func seedUser(t *testing.T, db *gorm.DB, name string, role models.Role) Actor {
	t.Helper()
	acct := models.Account{Email: uuid.NewString()[:8] + "@example.com", Name: name}
	require.NoError(t, acct.SetPassword("secret1"))
	require.NoError(t, db.Create(&acct).Error)
	if role != "" {
		require.NoError(t, db.Create(&models.User{
			ID:     acct.ID,
			Name:   name,
			Email:  acct.Email,
			Role:   role,
			Status: models.UserStatusActive,
		}).Error)
	} else {
		role = models.RoleUser
	}
	return Actor{ID: acct.ID, Email: acct.Email, Name: name, Role: role}
}

func seedSong(t *testing.T, db *gorm.DB, owner Actor, writers ...models.Writer) models.Song {
	t.Helper()
	song := models.Song{
		CreatorID:        owner.ID,
		Title:            "Midnight Tide",
		MainArtist:       "The Sap",
		RegistrationDate: "2024-03-01",
		WritersData:      writers,
		Status:           models.AgreementStatusActive,
		SyncStatus:       models.SyncStatusNone,
	}
	require.NoError(t, db.Create(&song).Error)
	return song
}

// tick returns a clock that advances one second per call.
func tick() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

type published struct {
	owner uuid.UUID
	event realtime.Event
}

// recordingPublisher keeps every event it is given.
type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(_ context.Context, owner uuid.UUID, ev realtime.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{owner: owner, event: ev})
	return nil
}

func (p *recordingPublisher) all() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.events...)
}
