// internal/database/seed.go
package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sapmusicgroup/sap-backend/internal/agreement"
	"github.com/sapmusicgroup/sap-backend/internal/config"
	"github.com/sapmusicgroup/sap-backend/internal/models"
)

// SeedInitialData creates the first admin and the default agreement
// template. It is safe to run repeatedly.
func SeedInitialData(db *gorm.DB, cfg config.SeedConfig) error {
	logrus.Info("Seeding initial data")

	return WithTransaction(db, func(tx *gorm.DB) error {
		var acct models.Account
		err := tx.Where("email = ?", cfg.AdminEmail).First(&acct).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			now := time.Now()
			acct = models.Account{Email: cfg.AdminEmail, Name: cfg.AdminName, EmailConfirmedAt: &now}
			if err := acct.SetPassword(cfg.AdminPassword); err != nil {
				return fmt.Errorf("failed to set admin password: %w", err)
			}
			if err := tx.Create(&acct).Error; err != nil {
				return fmt.Errorf("failed to create admin account: %w", err)
			}
			logrus.WithField("email", cfg.AdminEmail).Info("Default admin account created")
		} else if err != nil {
			return err
		}

		var profiles int64
		if err := tx.Model(&models.User{}).Where("id = ?", acct.ID).Count(&profiles).Error; err != nil {
			return err
		}
		if profiles == 0 {
			admin := models.User{
				ID:     acct.ID,
				Name:   cfg.AdminName,
				Email:  cfg.AdminEmail,
				Role:   models.RoleAdmin,
				Status: models.UserStatusActive,
			}
			if err := tx.Create(&admin).Error; err != nil {
				return fmt.Errorf("failed to create admin profile: %w", err)
			}
		}

		var settings int64
		if err := tx.Model(&models.AppSetting{}).Where("key = ?", models.SettingAgreementTemplate).Count(&settings).Error; err != nil {
			return err
		}
		if settings == 0 {
			setting := models.AppSetting{
				Key:       models.SettingAgreementTemplate,
				Value:     agreement.DefaultTemplate,
				UpdatedBy: &acct.ID,
			}
			if err := tx.Create(&setting).Error; err != nil {
				return fmt.Errorf("failed to create agreement template: %w", err)
			}
		}
		return nil
	})
}
