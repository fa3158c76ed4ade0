package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	repos "github.com/yungbote/mockview-backend/internal/data/repos/interview"
	"github.com/yungbote/mockview-backend/internal/domain/interview"
	"github.com/yungbote/mockview-backend/internal/platform/dbctx"
	"github.com/yungbote/mockview-backend/internal/platform/logger"
)

// DefaultDimensions mirrors the rubric the interview is graded against.
var DefaultDimensions = []string{
	"problem_solving",
	"communication",
	"technical_depth",
	"adaptability",
}

type EvaluationOptions struct {
	Dimensions   []string
	ScoreTimeout time.Duration
	// MaxConcurrent bounds parallel scoring calls per evaluation.
	MaxConcurrent int
}

func (o EvaluationOptions) withDefaults() EvaluationOptions {
	if len(o.Dimensions) == 0 {
		o.Dimensions = DefaultDimensions
	}
	if o.ScoreTimeout <= 0 {
		o.ScoreTimeout = 30 * time.Second
	}
	if o.MaxConcurrent <= 0 {
		o.MaxConcurrent = 2
	}
	return o
}

// EvaluationService grades a finalized transcript once. Re-evaluation must
// be requested explicitly; otherwise an existing result is returned with
// ErrAlreadyEvaluated so prior feedback is never silently replaced.
type EvaluationService interface {
	Evaluate(ctx context.Context, sessionID string, force bool) (*interview.EvaluationResult, error)
}

type evaluationService struct {
	log     *logger.Logger
	records repos.FinalRecordRepo
	results repos.EvaluationResultRepo
	scorer  Scorer
	opts    EvaluationOptions
}

func NewEvaluationService(baseLog *logger.Logger, records repos.FinalRecordRepo, results repos.EvaluationResultRepo, scorer Scorer, opts EvaluationOptions) EvaluationService {
	return &evaluationService{
		log:     baseLog.With("service", "EvaluationService"),
		records: records,
		results: results,
		scorer:  scorer,
		opts:    opts.withDefaults(),
	}
}

func (s *evaluationService) Evaluate(ctx context.Context, sessionID string, force bool) (*interview.EvaluationResult, error) {
	dbc := dbctx.Context{Ctx: ctx}

	rec, err := s.records.GetBySessionID(dbc, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: final record lookup: %v", ErrStoreUnavailable, err)
	}
	if rec == nil {
		return nil, ErrSourceMissing
	}

	if existing, err := s.results.GetBySessionID(dbc, sessionID); err != nil {
		return nil, fmt.Errorf("%w: evaluation lookup: %v", ErrStoreUnavailable, err)
	} else if existing != nil && !force {
		return existing, ErrAlreadyEvaluated
	}

	var turns []interview.Turn
	if len(rec.History) > 0 {
		if err := json.Unmarshal(rec.History, &turns); err != nil {
			return nil, fmt.Errorf("decode transcript: %w", err)
		}
	}

	scores, err := s.scoreAll(ctx, rec, turns)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAgentUnavailable, err)
	}

	var total float64
	for _, ds := range scores {
		total += ds.Score
	}
	overall := 0.0
	if len(scores) > 0 {
		overall = total / float64(len(scores))
	}

	dims, err := json.Marshal(scores)
	if err != nil {
		return nil, fmt.Errorf("encode dimensions: %w", err)
	}
	result := &interview.EvaluationResult{
		SessionID:    sessionID,
		Dimensions:   datatypes.JSON(dims),
		OverallScore: overall,
		Summary:      summarize(scores),
	}

	if force {
		if err := s.results.Overwrite(dbc, result); err != nil {
			return nil, fmt.Errorf("%w: evaluation overwrite: %v", ErrStoreUnavailable, err)
		}
		return result, nil
	}
	if err := s.results.Insert(dbc, result); err != nil {
		if errors.Is(err, repos.ErrDuplicate) {
			// Concurrent evaluation won; hand back the stored one.
			existing, gErr := s.results.GetBySessionID(dbc, sessionID)
			if gErr == nil && existing != nil {
				return existing, ErrAlreadyEvaluated
			}
			return nil, ErrAlreadyEvaluated
		}
		return nil, fmt.Errorf("%w: evaluation insert: %v", ErrStoreUnavailable, err)
	}
	return result, nil
}

func (s *evaluationService) scoreAll(ctx context.Context, rec *interview.FinalRecord, turns []interview.Turn) ([]interview.DimensionScore, error) {
	scoreCtx, cancel := context.WithTimeout(ctx, s.opts.ScoreTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(scoreCtx)
	g.SetLimit(s.opts.MaxConcurrent)

	var mu sync.Mutex
	scores := make([]interview.DimensionScore, 0, len(s.opts.Dimensions))
	for _, dim := range s.opts.Dimensions {
		g.Go(func() error {
			ds, err := s.scorer.Score(gctx, ScoreInput{
				Role:      rec.Role,
				Seniority: rec.Seniority,
				Skill:     rec.Skill,
				Dimension: dim,
				Turns:     turns,
			})
			if err != nil {
				return err
			}
			mu.Lock()
			scores = append(scores, *ds)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Stable order for storage regardless of completion order.
	ordered := make([]interview.DimensionScore, 0, len(scores))
	for _, dim := range s.opts.Dimensions {
		for _, ds := range scores {
			if ds.Dimension == dim {
				ordered = append(ordered, ds)
				break
			}
		}
	}
	return ordered, nil
}

func summarize(scores []interview.DimensionScore) string {
	if len(scores) == 0 {
		return ""
	}
	best, worst := scores[0], scores[0]
	for _, ds := range scores[1:] {
		if ds.Score > best.Score {
			best = ds
		}
		if ds.Score < worst.Score {
			worst = ds
		}
	}
	if best.Dimension == worst.Dimension {
		return fmt.Sprintf("Consistent performance across dimensions; strongest signal on %s.", best.Dimension)
	}
	return fmt.Sprintf("Strongest on %s; most room to grow on %s.", best.Dimension, worst.Dimension)
}
