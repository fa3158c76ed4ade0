package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/mockview-backend/internal/domain/interview"
	"github.com/yungbote/mockview-backend/internal/platform/keylock"
	"github.com/yungbote/mockview-backend/internal/platform/logger"
	"github.com/yungbote/mockview-backend/internal/sessionstore"
)

type InterviewOptions struct {
	HistoryBound  int
	Caps          interview.Caps
	StoreTimeout  time.Duration
	DecideTimeout time.Duration
}

func (o InterviewOptions) withDefaults() InterviewOptions {
	if o.HistoryBound <= 0 {
		o.HistoryBound = interview.DefaultHistoryBound
	}
	if o.Caps.PerStage == nil {
		o.Caps = interview.DefaultCaps()
	}
	if o.StoreTimeout <= 0 {
		o.StoreTimeout = time.Second
	}
	if o.DecideTimeout <= 0 {
		o.DecideTimeout = 8 * time.Second
	}
	return o
}

type StartResult struct {
	SessionID string
	Question  string
	Stage     interview.Stage
}

type TurnResult struct {
	Question  string
	Stage     interview.Stage
	Completed bool
	Reason    string
}

type StatusResult struct {
	Stage     interview.Stage
	Progress  interview.Progress
	TurnCount int
	Status    string
}

// InterviewService is the turn orchestrator. Many sessions run in parallel;
// turns within one session are strictly serialized by a per-session
// try-lock, and a successful SubmitAnswer performs exactly one ephemeral
// write.
type InterviewService interface {
	Start(ctx context.Context, role, seniority, skill string) (*StartResult, error)
	SubmitAnswer(ctx context.Context, sessionID, answer string) (*TurnResult, error)
	Status(ctx context.Context, sessionID string) (*StatusResult, error)
	Complete(ctx context.Context, sessionID string) (FinalizeOutcome, error)
}

type interviewService struct {
	log       *logger.Logger
	store     sessionstore.Store
	decider   Decider
	finalizer FinalizeService
	locks     *keylock.KeyLock
	opts      InterviewOptions
}

func NewInterviewService(baseLog *logger.Logger, store sessionstore.Store, decider Decider, finalizer FinalizeService, opts InterviewOptions) InterviewService {
	return &interviewService{
		log:       baseLog.With("service", "InterviewService"),
		store:     store,
		decider:   decider,
		finalizer: finalizer,
		locks:     keylock.New(),
		opts:      opts.withDefaults(),
	}
}

func (s *interviewService) Start(ctx context.Context, role, seniority, skill string) (*StartResult, error) {
	role = strings.TrimSpace(role)
	seniority = strings.TrimSpace(seniority)
	skill = strings.TrimSpace(skill)
	if role == "" || seniority == "" || skill == "" {
		return nil, fmt.Errorf("role, seniority and skill are required")
	}

	openCtx, cancel := context.WithTimeout(ctx, s.opts.DecideTimeout)
	decision, err := s.decider.Open(openCtx, OpenInput{Role: role, Seniority: seniority, Skill: skill})
	cancel()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAgentUnavailable, err)
	}

	now := time.Now()
	sess := interview.NewSession(uuid.NewString(), role, seniority, skill, s.opts.HistoryBound, now)
	sess.NextFocus = decision.NextFocus
	sess.AppendQuestion(decision.Text, now)

	createCtx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	err = s.store.Create(createCtx, sess)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("%w: session create: %v", ErrStoreUnavailable, err)
	}

	s.log.Info("interview started",
		"session_id", sess.ID, "role", role, "seniority", seniority, "skill", skill)
	return &StartResult{
		SessionID: sess.ID,
		Question:  decision.Text,
		Stage:     sess.CurrentStage,
	}, nil
}

func (s *interviewService) SubmitAnswer(ctx context.Context, sessionID, answer string) (*TurnResult, error) {
	if !s.locks.TryAcquire(sessionID) {
		return nil, ErrConflict
	}
	defer s.locks.Release(sessionID)

	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status == interview.StatusCompleted {
		return &TurnResult{Completed: true, Stage: sess.CurrentStage, Reason: sess.CompletionReason}, nil
	}

	// Everything below mutates a clone; the loaded state stays pristine so
	// an agent failure commits nothing and the client can resubmit.
	work := sess.Clone()
	now := time.Now()
	if err := work.AnswerLatest(answer, now); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConflict, err)
	}

	if interview.ForceComplete(work.TurnCount, s.opts.Caps) {
		work.CompletionReason = ReasonTurnCap
		work.AdvanceStage(interview.StageCompleted)
		return s.completeTurn(ctx, work)
	}

	decideCtx, cancel := context.WithTimeout(ctx, s.opts.DecideTimeout)
	decision, err := s.decider.Decide(decideCtx, DecideInput{
		Role:      work.Role,
		Seniority: work.Seniority,
		Skill:     work.Skill,
		Stage:     work.CurrentStage,
		Progress:  work.Progress,
		NextFocus: work.NextFocus,
		Turns:     work.Turns,
	})
	cancel()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAgentUnavailable, err)
	}

	next := interview.NextStage(work.CurrentStage, decision.Progress, work.TurnsInStage, s.opts.Caps)
	work.Progress = interview.MaxProgress(work.Progress, decision.Progress)

	if next.Terminal() {
		work.CompletionReason = ReasonStageFlow
		work.AdvanceStage(next)
		return s.completeTurn(ctx, work)
	}

	work.AdvanceStage(next)
	work.NextFocus = decision.NextFocus
	work.AppendQuestion(decision.Text, now)

	if err := s.put(ctx, work); err != nil {
		return nil, err
	}
	return &TurnResult{Question: decision.Text, Stage: work.CurrentStage}, nil
}

// completeTurn commits the final answered turn and hands off to the
// synchronizer. A durable-write failure is logged, not surfaced: the
// interview is over for the candidate either way and finalize stays
// retryable via the complete endpoint.
func (s *interviewService) completeTurn(ctx context.Context, work *interview.Session) (*TurnResult, error) {
	if err := s.put(ctx, work); err != nil {
		return nil, err
	}
	if _, err := s.finalizer.Finalize(ctx, work.ID, work.CompletionReason); err != nil {
		s.log.Warn("finalize after terminal turn failed",
			"session_id", work.ID, "error", err)
	}
	return &TurnResult{Completed: true, Stage: work.CurrentStage, Reason: work.CompletionReason}, nil
}

func (s *interviewService) Status(ctx context.Context, sessionID string) (*StatusResult, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &StatusResult{
		Stage:     sess.CurrentStage,
		Progress:  sess.Progress,
		TurnCount: sess.TurnCount,
		Status:    sess.Status,
	}, nil
}

func (s *interviewService) Complete(ctx context.Context, sessionID string) (FinalizeOutcome, error) {
	if !s.locks.TryAcquire(sessionID) {
		return "", ErrConflict
	}
	defer s.locks.Release(sessionID)
	return s.finalizer.Finalize(ctx, sessionID, ReasonUserExit)
}

func (s *interviewService) load(ctx context.Context, sessionID string) (*interview.Session, error) {
	getCtx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	sess, err := s.store.Get(getCtx, sessionID)
	cancel()
	switch {
	case errors.Is(err, sessionstore.ErrNotFound):
		return nil, ErrSessionNotFound
	case errors.Is(err, sessionstore.ErrMalformed):
		s.log.Error("quarantining malformed session entry", "session_id", sessionID, "error", err)
		return nil, ErrSessionNotFound
	case err != nil:
		return nil, fmt.Errorf("%w: session load: %v", ErrStoreUnavailable, err)
	}
	return sess, nil
}

func (s *interviewService) put(ctx context.Context, sess *interview.Session) error {
	putCtx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	err := s.store.Put(putCtx, sess)
	cancel()
	switch {
	case errors.Is(err, sessionstore.ErrNotFound):
		// TTL fired between load and write.
		return ErrSessionNotFound
	case err != nil:
		return fmt.Errorf("%w: session write: %v", ErrStoreUnavailable, err)
	}
	return nil
}
