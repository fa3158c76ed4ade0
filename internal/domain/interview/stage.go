package interview

// Stage is a named phase of interview progression. Stages only move forward
// through stageOrder; Completed is terminal.
type Stage string

const (
	StageProblemUnderstanding Stage = "problem_understanding"
	StageSolutionDesign       Stage = "solution_design"
	StageTechnicalDepth       Stage = "technical_depth"
	StageTradeOffs            Stage = "trade_offs_and_constraints"
	StageImplementation       Stage = "implementation"
	StageAdaptation           Stage = "adaptation"
	StageCompleted            Stage = "completed"
)

var stageOrder = []Stage{
	StageProblemUnderstanding,
	StageSolutionDesign,
	StageTechnicalDepth,
	StageTradeOffs,
	StageImplementation,
	StageAdaptation,
	StageCompleted,
}

func (s Stage) Valid() bool {
	return s.index() >= 0
}

func (s Stage) Terminal() bool {
	return s == StageCompleted
}

func (s Stage) index() int {
	for i, st := range stageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// next returns the stage one step forward, or Completed when already terminal.
func (s Stage) next() Stage {
	i := s.index()
	if i < 0 || i >= len(stageOrder)-1 {
		return StageCompleted
	}
	return stageOrder[i+1]
}

// Progress is the qualitative depth signal reported by the decision agent
// for the current stage.
type Progress string

const (
	ProgressNotStarted   Progress = "not_started"
	ProgressBeginner     Progress = "beginner"
	ProgressIntermediate Progress = "intermediate"
	ProgressAdvanced     Progress = "advanced"
	ProgressExpert       Progress = "expert"
)

var progressRank = map[Progress]int{
	ProgressNotStarted:   0,
	ProgressBeginner:     1,
	ProgressIntermediate: 2,
	ProgressAdvanced:     3,
	ProgressExpert:       4,
}

func (p Progress) Valid() bool {
	_, ok := progressRank[p]
	return ok
}

func (p Progress) AtLeast(min Progress) bool {
	return progressRank[p] >= progressRank[min]
}

// MaxProgress keeps the stronger of two signals so a weak late answer does
// not erase depth the candidate already demonstrated.
func MaxProgress(a, b Progress) Progress {
	if progressRank[b] > progressRank[a] {
		return b
	}
	return a
}

// Caps holds the tunable stage-dwell limits. The values are configuration,
// not behavior: callers load them from env/yaml and the machine just applies
// them.
type Caps struct {
	// PerStage caps how many turns a session may dwell in one stage before
	// it is advanced regardless of progress.
	PerStage map[Stage]int `yaml:"per_stage"`
	// HardTurnCap force-completes the whole session past this total turn
	// count, whatever stage it is in.
	HardTurnCap int `yaml:"hard_turn_cap"`
	// AdvanceAt is the minimum progress signal that advances a stage.
	AdvanceAt Progress `yaml:"advance_at"`
}

func DefaultCaps() Caps {
	return Caps{
		PerStage: map[Stage]int{
			StageProblemUnderstanding: 3,
			StageSolutionDesign:       3,
			StageTechnicalDepth:       4,
			StageTradeOffs:            3,
			StageImplementation:       3,
			StageAdaptation:           2,
		},
		HardTurnCap: 24,
		AdvanceAt:   ProgressAdvanced,
	}
}

func (c Caps) stageCap(s Stage) int {
	if n, ok := c.PerStage[s]; ok && n > 0 {
		return n
	}
	return 3
}

// NextStage decides the stage for the upcoming turn. It advances at most one
// stage forward when the agent signals enough depth or the per-stage dwell
// cap is hit, and never moves backward.
func NextStage(cur Stage, progress Progress, turnsInStage int, caps Caps) Stage {
	if cur.Terminal() {
		return StageCompleted
	}
	if !cur.Valid() {
		return StageProblemUnderstanding
	}
	if progress.AtLeast(caps.AdvanceAt) || turnsInStage >= caps.stageCap(cur) {
		return cur.next()
	}
	return cur
}

// ForceComplete reports whether the hard session cap has been exceeded.
func ForceComplete(totalTurns int, caps Caps) bool {
	return caps.HardTurnCap > 0 && totalTurns >= caps.HardTurnCap
}
