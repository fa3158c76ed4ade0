package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"

	repos "github.com/yungbote/mockview-backend/internal/data/repos/interview"
	"github.com/yungbote/mockview-backend/internal/domain/interview"
	"github.com/yungbote/mockview-backend/internal/platform/dbctx"
	"github.com/yungbote/mockview-backend/internal/platform/logger"
	"github.com/yungbote/mockview-backend/internal/sessionstore"
)

// Completion reasons recorded on the final snapshot.
const (
	ReasonStageFlow = "stage_flow"
	ReasonTurnCap   = "turn_cap_exceeded"
	ReasonUserExit  = "user_exit"
)

type FinalizeOutcome string

const (
	OutcomeFinalized        FinalizeOutcome = "finalized"
	OutcomeAlreadyFinalized FinalizeOutcome = "already_finalized"
)

// FinalizeService moves a session's final state from the ephemeral store
// into durable storage exactly once. Ordering is write-then-mark: the
// durable insert must succeed before the ephemeral entry is flagged
// completed, so a failed insert leaves finalize retryable.
type FinalizeService interface {
	Finalize(ctx context.Context, sessionID, reason string) (FinalizeOutcome, error)
}

type finalizeService struct {
	log          *logger.Logger
	store        sessionstore.Store
	records      repos.FinalRecordRepo
	storeTimeout time.Duration
}

func NewFinalizeService(baseLog *logger.Logger, store sessionstore.Store, records repos.FinalRecordRepo, storeTimeout time.Duration) FinalizeService {
	if storeTimeout <= 0 {
		storeTimeout = time.Second
	}
	return &finalizeService{
		log:          baseLog.With("service", "FinalizeService"),
		store:        store,
		records:      records,
		storeTimeout: storeTimeout,
	}
}

func (s *finalizeService) Finalize(ctx context.Context, sessionID, reason string) (FinalizeOutcome, error) {
	dbc := dbctx.Context{Ctx: ctx}

	exists, err := s.records.ExistsBySessionID(dbc, sessionID)
	if err != nil {
		return "", fmt.Errorf("%w: final record lookup: %v", ErrStoreUnavailable, err)
	}
	if exists {
		return OutcomeAlreadyFinalized, nil
	}

	getCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	sess, err := s.store.Get(getCtx, sessionID)
	cancel()
	switch {
	case errors.Is(err, sessionstore.ErrNotFound):
		return "", ErrSourceMissing
	case errors.Is(err, sessionstore.ErrMalformed):
		s.log.Error("refusing to finalize malformed session", "session_id", sessionID, "error", err)
		return "", ErrSourceMissing
	case err != nil:
		return "", fmt.Errorf("%w: session load: %v", ErrStoreUnavailable, err)
	}

	now := time.Now().UTC()
	if sess.CompletionReason == "" {
		sess.CompletionReason = reason
	}

	history, err := json.Marshal(sess.Turns)
	if err != nil {
		return "", fmt.Errorf("encode history: %w", err)
	}
	rec := &interview.FinalRecord{
		SessionID:        sess.ID,
		Role:             sess.Role,
		Seniority:        sess.Seniority,
		Skill:            sess.Skill,
		FinalStage:       string(sess.CurrentStage),
		FinalProgress:    string(sess.Progress),
		History:          datatypes.JSON(history),
		TurnCount:        sess.TurnCount,
		ElapsedMs:        sess.Elapsed(now).Milliseconds(),
		CompletionReason: sess.CompletionReason,
		CompletedAt:      now,
	}

	outcome := OutcomeFinalized
	if err := s.records.Insert(dbc, rec); err != nil {
		if errors.Is(err, repos.ErrDuplicate) {
			// A concurrent finalize won the insert; fall through to mark.
			outcome = OutcomeAlreadyFinalized
		} else {
			return "", fmt.Errorf("%w: final record insert: %v", ErrStoreUnavailable, err)
		}
	}

	// Mark, not delete: the entry absorbs late duplicate finalize calls
	// until its TTL runs out.
	sess.Status = interview.StatusCompleted
	sess.LastUpdatedAt = now
	putCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	err = s.store.Put(putCtx, sess)
	cancel()
	if err != nil && !errors.Is(err, sessionstore.ErrNotFound) {
		// Durable write already landed; the stale active flag only costs a
		// duplicate-insert no-op on a retried finalize.
		s.log.Warn("failed to mark ephemeral session completed", "session_id", sessionID, "error", err)
	}

	return outcome, nil
}
