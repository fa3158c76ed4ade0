package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/yungbote/mockview-backend/internal/platform/gemini"
	"github.com/yungbote/mockview-backend/internal/platform/logger"
	"github.com/yungbote/mockview-backend/internal/services"
	"github.com/yungbote/mockview-backend/internal/sessionstore"
)

type Services struct {
	Interview  services.InterviewService
	Finalize   services.FinalizeService
	Evaluation services.EvaluationService
}

func wireStore(log *logger.Logger, cfg Config) (sessionstore.Store, error) {
	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) == "" {
		// Local runs without Redis fall back to the in-process store.
		log.Warn("REDIS_ADDR not set, using in-memory session store")
		return sessionstore.NewMemoryStore(cfg.SessionTTL), nil
	}
	store, err := sessionstore.NewRedisStore(log, cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("init redis store: %w", err)
	}
	return store, nil
}

func wireServices(log *logger.Logger, cfg Config, store sessionstore.Store, reposet Repos) (Services, error) {
	llm, err := gemini.NewClient(log)
	if err != nil {
		return Services{}, fmt.Errorf("init gemini client: %w", err)
	}

	decider := services.NewGeminiDecider(log, llm)
	scorer := services.NewGeminiScorer(log, llm)

	finalize := services.NewFinalizeService(log, store, reposet.FinalRecords, cfg.StoreTimeout)
	interviewSvc := services.NewInterviewService(log, store, decider, finalize, services.InterviewOptions{
		HistoryBound:  cfg.HistoryBound,
		Caps:          cfg.Caps,
		StoreTimeout:  cfg.StoreTimeout,
		DecideTimeout: cfg.DecideTimeout,
	})
	evaluation := services.NewEvaluationService(log, reposet.FinalRecords, reposet.Evaluations, scorer, services.EvaluationOptions{})

	return Services{
		Interview:  interviewSvc,
		Finalize:   finalize,
		Evaluation: evaluation,
	}, nil
}
