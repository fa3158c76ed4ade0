package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	repos "github.com/yungbote/mockview-backend/internal/data/repos/interview"
	"github.com/yungbote/mockview-backend/internal/data/repos/testutil"
	"github.com/yungbote/mockview-backend/internal/domain/interview"
	"github.com/yungbote/mockview-backend/internal/platform/logger"
	"github.com/yungbote/mockview-backend/internal/sessionstore"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

// stubDecider answers every call with a fixed progress signal. Decide fails
// with err when set, and optionally blocks on gate to force overlap in
// concurrency tests.
type stubDecider struct {
	mu       sync.Mutex
	progress interview.Progress
	err      error
	decides  int

	gate    chan struct{}
	entered chan struct{}
}

func (d *stubDecider) Open(ctx context.Context, in OpenInput) (*Decision, error) {
	d.mu.Lock()
	err := d.err
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &Decision{
		Text:      "Welcome. Describe the problem in your own words.",
		Progress:  interview.ProgressNotStarted,
		NextFocus: "problem framing",
	}, nil
}

func (d *stubDecider) Decide(ctx context.Context, in DecideInput) (*Decision, error) {
	d.mu.Lock()
	d.decides++
	n := d.decides
	err := d.err
	progress := d.progress
	gate, entered := d.gate, d.entered
	d.mu.Unlock()

	if entered != nil {
		close(entered)
		d.mu.Lock()
		d.entered = nil
		d.mu.Unlock()
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &Decision{
		Text:      fmt.Sprintf("Follow-up question %d.", n),
		Progress:  progress,
		NextFocus: "next angle",
	}, nil
}

func (d *stubDecider) setErr(err error) {
	d.mu.Lock()
	d.err = err
	d.mu.Unlock()
}

func (d *stubDecider) decideCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.decides
}

// stubScorer returns a fixed score per dimension, or fails dimensions listed
// in failOn.
type stubScorer struct {
	mu     sync.Mutex
	scores map[string]float64
	failOn map[string]bool
	calls  int
}

func (s *stubScorer) Score(ctx context.Context, in ScoreInput) (*interview.DimensionScore, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.failOn[in.Dimension] {
		return nil, fmt.Errorf("scorer down for %s", in.Dimension)
	}
	score, ok := s.scores[in.Dimension]
	if !ok {
		score = 3
	}
	return &interview.DimensionScore{
		Dimension: in.Dimension,
		Score:     score,
		Feedback:  "feedback for " + in.Dimension,
	}, nil
}

type testEnv struct {
	store     sessionstore.Store
	db        *gorm.DB
	finals    repos.FinalRecordRepo
	evals     repos.EvaluationResultRepo
	decider   *stubDecider
	finalizer FinalizeService
	svc       InterviewService
}

func newTestEnv(t *testing.T, opts InterviewOptions) *testEnv {
	t.Helper()
	log := testLogger(t)
	g := testutil.OpenTestDB(t)
	store := sessionstore.NewMemoryStore(time.Hour)
	finals := repos.NewFinalRecordRepo(g, log)
	evals := repos.NewEvaluationResultRepo(g, log)
	decider := &stubDecider{progress: interview.ProgressIntermediate}
	finalizer := NewFinalizeService(log, store, finals, time.Second)
	svc := NewInterviewService(log, store, decider, finalizer, opts)
	return &testEnv{
		store:     store,
		db:        g,
		finals:    finals,
		evals:     evals,
		decider:   decider,
		finalizer: finalizer,
		svc:       svc,
	}
}
