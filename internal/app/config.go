package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/mockview-backend/internal/domain/interview"
	"github.com/yungbote/mockview-backend/internal/platform/envutil"
	"github.com/yungbote/mockview-backend/internal/platform/logger"
	"github.com/yungbote/mockview-backend/internal/sessionstore"
)

type Config struct {
	Port string

	SessionTTL    time.Duration
	HistoryBound  int
	StoreTimeout  time.Duration
	DecideTimeout time.Duration
	Caps          interview.Caps

	Environment string
	Version     string
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:          envutil.String("PORT", "8080"),
		SessionTTL:    envutil.DurationSeconds("SESSION_TTL_SECONDS", sessionstore.DefaultTTL),
		HistoryBound:  envutil.Int("HISTORY_BOUND", interview.DefaultHistoryBound),
		StoreTimeout:  envutil.DurationSeconds("STORE_TIMEOUT_SECONDS", time.Second),
		DecideTimeout: envutil.DurationSeconds("DECIDE_TIMEOUT_SECONDS", 8*time.Second),
		Caps:          interview.DefaultCaps(),
		Environment:   envutil.String("ENVIRONMENT", "development"),
		Version:       envutil.String("SERVICE_VERSION", "dev"),
	}

	if path := envutil.String("STAGE_CAPS_FILE", ""); path != "" {
		caps, err := loadCapsFile(path, cfg.Caps)
		if err != nil {
			log.Warn("stage caps file ignored", "path", path, "error", err)
		} else {
			cfg.Caps = caps
			log.Info("stage caps loaded", "path", path)
		}
	}

	return cfg
}

// loadCapsFile overlays a YAML caps file onto the defaults. Omitted fields
// keep their default values.
func loadCapsFile(path string, base interview.Caps) (interview.Caps, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return base, err
	}
	overlay := interview.Caps{}
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return base, fmt.Errorf("parse caps yaml: %w", err)
	}
	merged := base
	if len(overlay.PerStage) > 0 {
		merged.PerStage = map[interview.Stage]int{}
		for k, v := range base.PerStage {
			merged.PerStage[k] = v
		}
		for stage, n := range overlay.PerStage {
			if !stage.Valid() || stage.Terminal() {
				return base, fmt.Errorf("caps yaml names unknown stage %q", stage)
			}
			if n <= 0 {
				return base, fmt.Errorf("caps yaml: non-positive cap for %q", stage)
			}
			merged.PerStage[stage] = n
		}
	}
	if overlay.HardTurnCap != 0 {
		merged.HardTurnCap = overlay.HardTurnCap
	}
	if overlay.AdvanceAt != "" {
		if !overlay.AdvanceAt.Valid() {
			return base, fmt.Errorf("caps yaml: unknown advance_at %q", overlay.AdvanceAt)
		}
		merged.AdvanceAt = overlay.AdvanceAt
	}
	return merged, nil
}
