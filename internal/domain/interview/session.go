package interview

import (
	"fmt"
	"strings"
	"time"
)

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// DefaultHistoryBound is how many turns of conversation the ephemeral
// session keeps. Older turns are dropped from the live session; the durable
// record snapshots whatever is left at finalization.
const DefaultHistoryBound = 8

// Turn is one question/answer exchange. Owned by its Session only.
type Turn struct {
	Question   string     `json:"question"`
	Answer     string     `json:"answer,omitempty"`
	AskedAt    time.Time  `json:"asked_at"`
	AnsweredAt *time.Time `json:"answered_at,omitempty"`
}

func (t Turn) Answered() bool {
	return t.AnsweredAt != nil
}

// Session is the live interview state held in the ephemeral store. It is
// mutated by read-modify-write only; the orchestrator serializes access per
// session id.
type Session struct {
	ID        string `json:"session_id"`
	Role      string `json:"role"`
	Seniority string `json:"seniority"`
	Skill     string `json:"skill"`

	CurrentStage Stage    `json:"current_stage"`
	Progress     Progress `json:"progress"`
	NextFocus    string   `json:"next_focus,omitempty"`

	Turns        []Turn `json:"turns"`
	TurnCount    int    `json:"turn_count"`
	TurnsInStage int    `json:"turns_in_stage"`
	HistoryBound int    `json:"history_bound"`

	Status           string `json:"status"`
	CompletionReason string `json:"completion_reason,omitempty"`

	CreatedAt     time.Time `json:"created_at"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
}

func NewSession(id, role, seniority, skill string, historyBound int, now time.Time) *Session {
	if historyBound <= 0 {
		historyBound = DefaultHistoryBound
	}
	return &Session{
		ID:            id,
		Role:          role,
		Seniority:     seniority,
		Skill:         skill,
		CurrentStage:  StageProblemUnderstanding,
		Progress:      ProgressNotStarted,
		Turns:         []Turn{},
		HistoryBound:  historyBound,
		Status:        StatusActive,
		CreatedAt:     now.UTC(),
		LastUpdatedAt: now.UTC(),
	}
}

// Validate rejects malformed ephemeral entries before they reach the
// orchestrator. A session that fails validation is treated as absent.
func (s *Session) Validate() error {
	if s == nil {
		return fmt.Errorf("session is nil")
	}
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("session id is empty")
	}
	if !s.CurrentStage.Valid() {
		return fmt.Errorf("unknown stage %q", s.CurrentStage)
	}
	if !s.Progress.Valid() {
		return fmt.Errorf("unknown progress %q", s.Progress)
	}
	if s.Status != StatusActive && s.Status != StatusCompleted {
		return fmt.Errorf("unknown status %q", s.Status)
	}
	if s.TurnCount < 0 {
		return fmt.Errorf("negative turn count")
	}
	if s.HistoryBound <= 0 {
		return fmt.Errorf("history bound must be positive")
	}
	if len(s.Turns) > s.HistoryBound {
		return fmt.Errorf("history length %d exceeds bound %d", len(s.Turns), s.HistoryBound)
	}
	return nil
}

// AppendQuestion adds a new unanswered turn, bumps the monotonic turn count,
// and trims history to the bound.
func (s *Session) AppendQuestion(question string, now time.Time) {
	s.Turns = append(s.Turns, Turn{Question: question, AskedAt: now.UTC()})
	if excess := len(s.Turns) - s.HistoryBound; excess > 0 {
		s.Turns = s.Turns[excess:]
	}
	s.TurnCount++
	s.TurnsInStage++
	s.LastUpdatedAt = now.UTC()
}

// AnswerLatest records the candidate's answer on the most recent unanswered
// turn. It fails when there is no open question so a duplicate submission
// cannot double-append.
func (s *Session) AnswerLatest(answer string, now time.Time) error {
	if len(s.Turns) == 0 {
		return fmt.Errorf("no question pending")
	}
	last := &s.Turns[len(s.Turns)-1]
	if last.Answered() {
		return fmt.Errorf("latest turn already answered")
	}
	ts := now.UTC()
	last.Answer = answer
	last.AnsweredAt = &ts
	s.LastUpdatedAt = ts
	return nil
}

// AdvanceStage moves the session to next and resets the per-stage dwell
// counter. No-op when the stage is unchanged.
func (s *Session) AdvanceStage(next Stage) {
	if next == s.CurrentStage {
		return
	}
	s.CurrentStage = next
	s.TurnsInStage = 0
}

// Clone returns a deep copy. The orchestrator mutates a clone so a failed
// agent call leaves the loaded state untouched.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Turns = make([]Turn, len(s.Turns))
	copy(cp.Turns, s.Turns)
	for i := range cp.Turns {
		if s.Turns[i].AnsweredAt != nil {
			ts := *s.Turns[i].AnsweredAt
			cp.Turns[i].AnsweredAt = &ts
		}
	}
	return &cp
}

func (s *Session) Elapsed(now time.Time) time.Duration {
	return now.UTC().Sub(s.CreatedAt)
}
