package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/mockview-backend/internal/data/db"
	types "github.com/yungbote/mockview-backend/internal/domain/interview"
)

// OpenTestDB opens an isolated in-memory SQLite database with the full
// schema migrated. Each call gets its own database.
func OpenTestDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	g, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrateAll(g); err != nil {
		tb.Fatalf("automigrate: %v", err)
	}
	return g
}

// SeedFinalRecord inserts a completed-session snapshot directly.
func SeedFinalRecord(tb testing.TB, g *gorm.DB, sessionID string) *types.FinalRecord {
	tb.Helper()
	now := time.Now().UTC()
	rec := &types.FinalRecord{
		ID:            uuid.New(),
		SessionID:     sessionID,
		Role:          "Software Engineer",
		Seniority:     "Senior",
		Skill:         "System Design",
		FinalStage:    string(types.StageCompleted),
		FinalProgress: string(types.ProgressAdvanced),
		History:       datatypes.JSON([]byte(`[]`)),
		TurnCount:     7,
		ElapsedMs:     120000,
		CompletedAt:   now,
		CreatedAt:     now,
	}
	if err := g.Create(rec).Error; err != nil {
		tb.Fatalf("seed final record: %v", err)
	}
	return rec
}
