package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/yungbote/mockview-backend/internal/domain/interview"
	"github.com/yungbote/mockview-backend/internal/platform/dbctx"
)

func TestExpertRunCompletesThroughAllStages(t *testing.T) {
	env := newTestEnv(t, InterviewOptions{})
	env.decider.progress = interview.ProgressExpert
	ctx := context.Background()

	start, err := env.svc.Start(ctx, "Software Engineer", "Senior", "System Design")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if start.Question == "" {
		t.Fatalf("expected an opening question")
	}
	if start.Stage != interview.StageProblemUnderstanding {
		t.Fatalf("stage = %s, want %s", start.Stage, interview.StageProblemUnderstanding)
	}

	wantStages := []interview.Stage{
		interview.StageSolutionDesign,
		interview.StageTechnicalDepth,
		interview.StageTradeOffs,
		interview.StageImplementation,
		interview.StageAdaptation,
	}
	for i, want := range wantStages {
		res, err := env.svc.SubmitAnswer(ctx, start.SessionID, fmt.Sprintf("expert answer %d", i+1))
		if err != nil {
			t.Fatalf("answer %d: %v", i+1, err)
		}
		if res.Completed {
			t.Fatalf("answer %d: completed early at stage %s", i+1, res.Stage)
		}
		if res.Stage != want {
			t.Fatalf("answer %d: stage = %s, want %s", i+1, res.Stage, want)
		}
		if res.Question == "" {
			t.Fatalf("answer %d: no follow-up question", i+1)
		}
	}

	res, err := env.svc.SubmitAnswer(ctx, start.SessionID, "final expert answer")
	if err != nil {
		t.Fatalf("final answer: %v", err)
	}
	if !res.Completed {
		t.Fatalf("expected completion after the adaptation stage")
	}
	if res.Reason != ReasonStageFlow {
		t.Fatalf("reason = %q, want %q", res.Reason, ReasonStageFlow)
	}

	// One more answer after completion still reports completed.
	late, err := env.svc.SubmitAnswer(ctx, start.SessionID, "anything")
	if err != nil {
		t.Fatalf("post-completion answer: %v", err)
	}
	if !late.Completed {
		t.Fatalf("post-completion answer should report completed")
	}

	rec, err := env.finals.GetBySessionID(dbctx.Context{Ctx: ctx}, start.SessionID)
	if err != nil {
		t.Fatalf("final record: %v", err)
	}
	if rec == nil {
		t.Fatalf("expected a durable final record")
	}
	if rec.CompletionReason != ReasonStageFlow {
		t.Fatalf("record reason = %q, want %q", rec.CompletionReason, ReasonStageFlow)
	}
	if rec.FinalStage != string(interview.StageCompleted) {
		t.Fatalf("final stage = %q, want completed", rec.FinalStage)
	}
	if rec.TurnCount != 6 {
		t.Fatalf("turn count = %d, want 6", rec.TurnCount)
	}
}

func TestAgentFailureCommitsNothing(t *testing.T) {
	env := newTestEnv(t, InterviewOptions{})
	ctx := context.Background()

	start, err := env.svc.Start(ctx, "Backend Engineer", "Mid", "Concurrency")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	env.decider.setErr(errors.New("model overloaded"))
	if _, err := env.svc.SubmitAnswer(ctx, start.SessionID, "an answer"); !errors.Is(err, ErrAgentUnavailable) {
		t.Fatalf("err = %v, want ErrAgentUnavailable", err)
	}

	st, err := env.svc.Status(ctx, start.SessionID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.TurnCount != 1 {
		t.Fatalf("turn count after failed turn = %d, want 1", st.TurnCount)
	}
	if st.Stage != interview.StageProblemUnderstanding {
		t.Fatalf("stage changed on failed turn: %s", st.Stage)
	}

	// The answer was never committed, so the same turn is resubmittable.
	env.decider.setErr(nil)
	res, err := env.svc.SubmitAnswer(ctx, start.SessionID, "an answer")
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if res.Completed || res.Question == "" {
		t.Fatalf("expected a normal follow-up turn, got %+v", res)
	}
}

func TestConcurrentSubmitOneWinsOneConflicts(t *testing.T) {
	env := newTestEnv(t, InterviewOptions{})
	ctx := context.Background()

	start, err := env.svc.Start(ctx, "Software Engineer", "Junior", "APIs")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	gate := make(chan struct{})
	entered := make(chan struct{})
	env.decider.mu.Lock()
	env.decider.gate = gate
	env.decider.entered = entered
	env.decider.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(1)
	var firstRes *TurnResult
	var firstErr error
	go func() {
		defer wg.Done()
		firstRes, firstErr = env.svc.SubmitAnswer(ctx, start.SessionID, "first writer")
	}()

	<-entered
	_, secondErr := env.svc.SubmitAnswer(ctx, start.SessionID, "second writer")
	if !errors.Is(secondErr, ErrConflict) {
		t.Fatalf("second submit err = %v, want ErrConflict", secondErr)
	}

	close(gate)
	wg.Wait()
	if firstErr != nil {
		t.Fatalf("first submit: %v", firstErr)
	}
	if firstRes.Question == "" {
		t.Fatalf("first submit got no question")
	}

	st, err := env.svc.Status(ctx, start.SessionID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.TurnCount != 2 {
		t.Fatalf("turn count = %d, want 2 (exactly one turn committed)", st.TurnCount)
	}
}

func TestWeakAnswersAdvanceOnlyAtDwellCap(t *testing.T) {
	caps := interview.DefaultCaps()
	caps.PerStage = map[interview.Stage]int{interview.StageProblemUnderstanding: 2}
	env := newTestEnv(t, InterviewOptions{Caps: caps})
	env.decider.progress = interview.ProgressBeginner
	ctx := context.Background()

	start, err := env.svc.Start(ctx, "Software Engineer", "Junior", "Caching")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	res, err := env.svc.SubmitAnswer(ctx, start.SessionID, "weak answer one")
	if err != nil {
		t.Fatalf("answer 1: %v", err)
	}
	if res.Stage != interview.StageProblemUnderstanding {
		t.Fatalf("stage advanced on a weak answer below the dwell cap: %s", res.Stage)
	}

	res, err = env.svc.SubmitAnswer(ctx, start.SessionID, "weak answer two")
	if err != nil {
		t.Fatalf("answer 2: %v", err)
	}
	if res.Stage != interview.StageSolutionDesign {
		t.Fatalf("stage = %s, want advance at dwell cap", res.Stage)
	}
}

func TestHardTurnCapForcesCompletion(t *testing.T) {
	caps := interview.DefaultCaps()
	caps.HardTurnCap = 3
	env := newTestEnv(t, InterviewOptions{Caps: caps})
	ctx := context.Background()

	start, err := env.svc.Start(ctx, "Software Engineer", "Senior", "Databases")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	for i := 0; i < 2; i++ {
		res, err := env.svc.SubmitAnswer(ctx, start.SessionID, "answer")
		if err != nil {
			t.Fatalf("answer %d: %v", i+1, err)
		}
		if res.Completed {
			t.Fatalf("completed before the cap on answer %d", i+1)
		}
	}

	res, err := env.svc.SubmitAnswer(ctx, start.SessionID, "answer at cap")
	if err != nil {
		t.Fatalf("capped answer: %v", err)
	}
	if !res.Completed {
		t.Fatalf("expected forced completion at the hard turn cap")
	}
	if res.Reason != ReasonTurnCap {
		t.Fatalf("reason = %q, want %q", res.Reason, ReasonTurnCap)
	}
	if env.decider.decideCalls() != 2 {
		t.Fatalf("decide calls = %d, want 2 (no agent call on the capped turn)", env.decider.decideCalls())
	}
}

func TestSubmitToCompletedSessionIsTerminalNoop(t *testing.T) {
	caps := interview.DefaultCaps()
	caps.HardTurnCap = 1
	env := newTestEnv(t, InterviewOptions{Caps: caps})
	ctx := context.Background()

	start, err := env.svc.Start(ctx, "Software Engineer", "Senior", "Testing")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	res, err := env.svc.SubmitAnswer(ctx, start.SessionID, "only answer")
	if err != nil || !res.Completed {
		t.Fatalf("expected immediate completion, got res=%+v err=%v", res, err)
	}

	again, err := env.svc.SubmitAnswer(ctx, start.SessionID, "late answer")
	if err != nil {
		t.Fatalf("submit after completion: %v", err)
	}
	if !again.Completed {
		t.Fatalf("expected a terminal no-op response")
	}

	st, err := env.svc.Status(ctx, start.SessionID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.TurnCount != 1 {
		t.Fatalf("turn count = %d after late submit, want 1", st.TurnCount)
	}
	if st.Status != interview.StatusCompleted {
		t.Fatalf("status = %q, want completed", st.Status)
	}
}

func TestHistoryStaysBounded(t *testing.T) {
	caps := interview.DefaultCaps()
	caps.HardTurnCap = 0
	env := newTestEnv(t, InterviewOptions{HistoryBound: 3, Caps: caps})
	env.decider.progress = interview.ProgressBeginner
	ctx := context.Background()

	start, err := env.svc.Start(ctx, "Software Engineer", "Mid", "Networking")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 8; i++ {
		if _, err := env.svc.SubmitAnswer(ctx, start.SessionID, "answer"); err != nil {
			t.Fatalf("answer %d: %v", i+1, err)
		}
	}

	sess, err := env.store.Get(ctx, start.SessionID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if len(sess.Turns) > 3 {
		t.Fatalf("history length = %d, exceeds bound 3", len(sess.Turns))
	}
	if sess.TurnCount != 9 {
		t.Fatalf("turn count = %d, want 9 (monotonic despite trimming)", sess.TurnCount)
	}
}

func TestStartFailsWithoutAgent(t *testing.T) {
	env := newTestEnv(t, InterviewOptions{})
	env.decider.setErr(errors.New("quota exhausted"))

	if _, err := env.svc.Start(context.Background(), "SE", "Senior", "Go"); !errors.Is(err, ErrAgentUnavailable) {
		t.Fatalf("err = %v, want ErrAgentUnavailable", err)
	}
}

func TestStartRejectsBlankInputs(t *testing.T) {
	env := newTestEnv(t, InterviewOptions{})
	if _, err := env.svc.Start(context.Background(), "  ", "Senior", "Go"); err == nil {
		t.Fatalf("expected validation error for blank role")
	}
}

func TestSubmitUnknownSession(t *testing.T) {
	env := newTestEnv(t, InterviewOptions{})
	if _, err := env.svc.SubmitAnswer(context.Background(), "no-such-id", "hello"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestUserExitCompleteIsIdempotent(t *testing.T) {
	env := newTestEnv(t, InterviewOptions{})
	ctx := context.Background()

	start, err := env.svc.Start(ctx, "Software Engineer", "Senior", "Streaming")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	out, err := env.svc.Complete(ctx, start.SessionID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != OutcomeFinalized {
		t.Fatalf("outcome = %q, want %q", out, OutcomeFinalized)
	}

	out, err = env.svc.Complete(ctx, start.SessionID)
	if err != nil {
		t.Fatalf("second complete: %v", err)
	}
	if out != OutcomeAlreadyFinalized {
		t.Fatalf("outcome = %q, want %q", out, OutcomeAlreadyFinalized)
	}

	rec, err := env.finals.GetBySessionID(dbctx.Context{Ctx: ctx}, start.SessionID)
	if err != nil || rec == nil {
		t.Fatalf("final record missing: rec=%v err=%v", rec, err)
	}
	if rec.CompletionReason != ReasonUserExit {
		t.Fatalf("reason = %q, want %q", rec.CompletionReason, ReasonUserExit)
	}
}
