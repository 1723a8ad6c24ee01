package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/sargasolutions/campaign-engine/internal/repository"
	"gorm.io/gorm"
)

func createEmailLogTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000004_create_email_log",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.EmailLogModel{}); err != nil {
				return err
			}
			return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_email_log_recipient_created ON email_log (recipient, created_at)`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.EmailLogModel{})
		},
	}
}
