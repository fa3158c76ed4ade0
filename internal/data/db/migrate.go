package db

import (
	"gorm.io/gorm"

	"github.com/yungbote/mockview-backend/internal/domain/interview"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Durable interview audit tables. Live session state is Redis-only.
		&interview.FinalRecord{},
		&interview.EvaluationResult{},
	)
}
