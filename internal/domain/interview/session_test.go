package interview

import (
	"testing"
	"time"
)

func TestAppendQuestionBoundsHistory(t *testing.T) {
	now := time.Now()
	s := NewSession("sess-1", "Software Engineer", "Senior", "System Design", 3, now)
	for i := 0; i < 10; i++ {
		s.AppendQuestion("q", now)
		if err := s.AnswerLatest("a", now); err != nil {
			t.Fatalf("answer turn %d: %v", i, err)
		}
		if len(s.Turns) > 3 {
			t.Fatalf("history exceeded bound: %d", len(s.Turns))
		}
	}
	if s.TurnCount != 10 {
		t.Fatalf("turn count: want=10 got=%d", s.TurnCount)
	}
}

func TestAnswerLatestRejectsDoubleAnswer(t *testing.T) {
	now := time.Now()
	s := NewSession("sess-1", "r", "s", "k", 0, now)
	if err := s.AnswerLatest("a", now); err == nil {
		t.Fatalf("answer with no pending question should fail")
	}
	s.AppendQuestion("q1", now)
	if err := s.AnswerLatest("a1", now); err != nil {
		t.Fatalf("first answer: %v", err)
	}
	if err := s.AnswerLatest("a1-again", now); err == nil {
		t.Fatalf("second answer on same turn should fail")
	}
}

func TestAdvanceStageResetsDwellCounter(t *testing.T) {
	now := time.Now()
	s := NewSession("sess-1", "r", "s", "k", 0, now)
	s.AppendQuestion("q1", now)
	s.AppendQuestion("q2", now)
	if s.TurnsInStage != 2 {
		t.Fatalf("turns in stage: want=2 got=%d", s.TurnsInStage)
	}
	s.AdvanceStage(StageSolutionDesign)
	if s.TurnsInStage != 0 {
		t.Fatalf("turns in stage after advance: want=0 got=%d", s.TurnsInStage)
	}
	s.AdvanceStage(StageSolutionDesign)
	if s.CurrentStage != StageSolutionDesign {
		t.Fatalf("same-stage advance must be a no-op")
	}
}

func TestCloneIsDeep(t *testing.T) {
	now := time.Now()
	s := NewSession("sess-1", "r", "s", "k", 0, now)
	s.AppendQuestion("q1", now)
	cp := s.Clone()
	if err := cp.AnswerLatest("mutated", now); err != nil {
		t.Fatalf("answer clone: %v", err)
	}
	if s.Turns[0].Answered() {
		t.Fatalf("mutating the clone leaked into the original")
	}
}

func TestValidateRejectsMalformedSessions(t *testing.T) {
	now := time.Now()
	good := NewSession("sess-1", "r", "s", "k", 0, now)
	if err := good.Validate(); err != nil {
		t.Fatalf("valid session rejected: %v", err)
	}

	cases := map[string]func(*Session){
		"empty id":      func(s *Session) { s.ID = " " },
		"bad stage":     func(s *Session) { s.CurrentStage = "warmup" },
		"bad progress":  func(s *Session) { s.Progress = "great" },
		"bad status":    func(s *Session) { s.Status = "paused" },
		"negative turn": func(s *Session) { s.TurnCount = -1 },
		"zero bound":    func(s *Session) { s.HistoryBound = 0 },
	}
	for name, mutate := range cases {
		s := NewSession("sess-1", "r", "s", "k", 0, now)
		mutate(s)
		if err := s.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}
