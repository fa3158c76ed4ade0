package services

import (
	"context"

	"github.com/yungbote/mockview-backend/internal/domain/interview"
)

// OpenInput asks the decision agent for the opening question of a fresh
// session.
type OpenInput struct {
	Role      string
	Seniority string
	Skill     string
}

// DecideInput is the bounded context handed to the decision agent for one
// turn: session attributes plus the trimmed history window only.
type DecideInput struct {
	Role      string
	Seniority string
	Skill     string
	Stage     interview.Stage
	Progress  interview.Progress
	NextFocus string
	Turns     []interview.Turn
}

// Decision is what the agent produced: the words to say next, its depth
// signal for the current stage, and what it plans to probe next. Stage
// progression stays with the state machine; the agent only signals depth.
type Decision struct {
	Text      string
	Progress  interview.Progress
	NextFocus string
}

// Decider is the opaque next-question collaborator. Implementations must
// honor ctx deadlines and keep retries bounded so a failed call can be
// treated as if it never happened.
type Decider interface {
	Open(ctx context.Context, in OpenInput) (*Decision, error)
	Decide(ctx context.Context, in DecideInput) (*Decision, error)
}

// ScoreInput asks the scoring agent to grade one dimension over the
// finalized transcript.
type ScoreInput struct {
	Role      string
	Seniority string
	Skill     string
	Dimension string
	Turns     []interview.Turn
}

// Scorer is the opaque post-interview grading collaborator.
type Scorer interface {
	Score(ctx context.Context, in ScoreInput) (*interview.DimensionScore, error)
}
