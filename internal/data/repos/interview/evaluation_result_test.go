package interview

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"gorm.io/datatypes"

	"github.com/yungbote/mockview-backend/internal/data/repos/testutil"
	types "github.com/yungbote/mockview-backend/internal/domain/interview"
	"github.com/yungbote/mockview-backend/internal/platform/dbctx"
	"github.com/yungbote/mockview-backend/internal/platform/logger"
)

func newEvaluation(sessionID string, score float64) *types.EvaluationResult {
	dims, _ := json.Marshal([]types.DimensionScore{
		{Dimension: "problem_solving", Score: score, Feedback: "solid"},
		{Dimension: "communication", Score: score, Feedback: "clear"},
	})
	return &types.EvaluationResult{
		SessionID:    sessionID,
		Dimensions:   datatypes.JSON(dims),
		OverallScore: score,
		Summary:      "summary",
	}
}

func TestEvaluationInsertRejectsSecondWrite(t *testing.T) {
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	g := testutil.OpenTestDB(t)
	repo := NewEvaluationResultRepo(g, log)
	dbc := dbctx.Context{Ctx: context.Background()}

	if err := repo.Insert(dbc, newEvaluation("sess-1", 4)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	err = repo.Insert(dbc, newEvaluation("sess-1", 2))
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("want ErrDuplicate got %v", err)
	}

	got, err := repo.GetBySessionID(dbc, "sess-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.OverallScore != 4 {
		t.Fatalf("first write must win: got score %v", got.OverallScore)
	}
}

func TestEvaluationOverwriteReplacesExisting(t *testing.T) {
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	g := testutil.OpenTestDB(t)
	repo := NewEvaluationResultRepo(g, log)
	dbc := dbctx.Context{Ctx: context.Background()}

	if err := repo.Insert(dbc, newEvaluation("sess-1", 3)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.Overwrite(dbc, newEvaluation("sess-1", 5)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err := repo.GetBySessionID(dbc, "sess-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.OverallScore != 5 {
		t.Fatalf("overwrite should win: got score %v", got.OverallScore)
	}

	var count int64
	if err := g.Model(&types.EvaluationResult{}).Where("session_id = ?", "sess-1").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("exactly one row expected, got %d", count)
	}
}
