package interview

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/mockview-backend/internal/domain/interview"
	"github.com/yungbote/mockview-backend/internal/platform/dbctx"
	"github.com/yungbote/mockview-backend/internal/platform/logger"
)

type EvaluationResultRepo interface {
	// Insert writes a new result; ErrDuplicate when the session already has
	// one. Use Overwrite for an explicitly requested re-evaluation.
	Insert(dbc dbctx.Context, rec *types.EvaluationResult) error
	Overwrite(dbc dbctx.Context, rec *types.EvaluationResult) error
	GetBySessionID(dbc dbctx.Context, sessionID string) (*types.EvaluationResult, error)
}

type evaluationResultRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEvaluationResultRepo(db *gorm.DB, baseLog *logger.Logger) EvaluationResultRepo {
	return &evaluationResultRepo{
		db:  db,
		log: baseLog.With("repo", "EvaluationResultRepo"),
	}
}

func (r *evaluationResultRepo) Insert(dbc dbctx.Context, rec *types.EvaluationResult) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	stamp(rec)
	if err := t.WithContext(dbc.Ctx).Create(rec).Error; err != nil {
		if isDuplicateErr(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *evaluationResultRepo) Overwrite(dbc dbctx.Context, rec *types.EvaluationResult) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	stamp(rec)
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"dimensions", "overall_score", "summary", "updated_at",
			}),
		}).
		Create(rec).Error
}

func (r *evaluationResultRepo) GetBySessionID(dbc dbctx.Context, sessionID string) (*types.EvaluationResult, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.EvaluationResult
	if err := t.WithContext(dbc.Ctx).
		Where("session_id = ?", sessionID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.SessionID == "" {
		return nil, nil
	}
	return &row, nil
}

func stamp(rec *types.EvaluationResult) {
	now := time.Now().UTC()
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
}
