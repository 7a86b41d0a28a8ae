// internal/database/migrations.go
package database

import (
	"fmt"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sapmusicgroup/sap-backend/internal/models"
)

// Models lists every table, in dependency order.
var Models = []interface{}{
	&models.Account{},
	&models.User{},
	&models.ManagedWriter{},
	&models.Song{},
	&models.Earning{},
	&models.PayoutRequest{},
	&models.SyncDeal{},
	&models.ChatSession{},
	&models.ChatMessage{},
	&models.AppSetting{},
	&models.AuditLog{},
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations")

	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if db.Dialector.Name() == "postgres" {
		if err := createConstraints(db); err != nil {
			return fmt.Errorf("failed to create constraints: %w", err)
		}
		createIndexes(db)
	}

	logrus.Info("Database migrations completed")
	return nil
}

// createConstraints adds the checks AutoMigrate cannot express. The
// duration check is what surfaces malformed durations as a database error.
func createConstraints(db *gorm.DB) error {
	checks := []struct {
		table, name, expr string
	}{
		{"songs", models.DurationCheckConstraint, `duration IS NULL OR duration ~ '^\d{1,2}:\d{2}$'`},
		{"earnings", "earnings_amount_positive_chk", "amount > 0"},
		{"payout_requests", "payout_requests_amount_positive_chk", "amount > 0"},
	}

	for _, c := range checks {
		var exists int64
		if err := db.Raw(
			"SELECT count(*) FROM pg_constraint WHERE conname = ?", c.name,
		).Scan(&exists).Error; err != nil {
			return err
		}
		if exists > 0 {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s)",
			pq.QuoteIdentifier(c.table), pq.QuoteIdentifier(c.name), c.expr)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("%s: %w", c.name, err)
		}
	}
	return nil
}

func createIndexes(db *gorm.DB) {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_songs_creator_created ON songs(creator_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_songs_writers ON songs USING GIN(writers_data jsonb_path_ops)",
		"CREATE INDEX IF NOT EXISTS idx_earnings_song_date ON earnings(song_id, earning_date DESC)",
		"CREATE INDEX IF NOT EXISTS idx_payout_requests_user_status ON payout_requests(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_chat_messages_session_ts ON chat_messages(session_id, timestamp)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			logrus.WithError(err).WithField("statement", index).Warn("Failed to create index")
		}
	}
}
