package interview

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/mockview-backend/internal/domain/interview"
	"github.com/yungbote/mockview-backend/internal/platform/dbctx"
	"github.com/yungbote/mockview-backend/internal/platform/logger"
)

type FinalRecordRepo interface {
	// Insert writes the record; ErrDuplicate when a row for the session
	// already exists. The unique index makes concurrent finalize attempts
	// collapse into exactly one row.
	Insert(dbc dbctx.Context, rec *types.FinalRecord) error
	GetBySessionID(dbc dbctx.Context, sessionID string) (*types.FinalRecord, error)
	ExistsBySessionID(dbc dbctx.Context, sessionID string) (bool, error)
}

type finalRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFinalRecordRepo(db *gorm.DB, baseLog *logger.Logger) FinalRecordRepo {
	return &finalRecordRepo{
		db:  db,
		log: baseLog.With("repo", "FinalRecordRepo"),
	}
}

func (r *finalRecordRepo) Insert(dbc dbctx.Context, rec *types.FinalRecord) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if err := t.WithContext(dbc.Ctx).Create(rec).Error; err != nil {
		if isDuplicateErr(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *finalRecordRepo) GetBySessionID(dbc dbctx.Context, sessionID string) (*types.FinalRecord, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.FinalRecord
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

func (r *finalRecordRepo) ExistsBySessionID(dbc dbctx.Context, sessionID string) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var count int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.FinalRecord{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
