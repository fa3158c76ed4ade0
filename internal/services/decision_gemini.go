package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/mockview-backend/internal/domain/interview"
	"github.com/yungbote/mockview-backend/internal/platform/gemini"
	"github.com/yungbote/mockview-backend/internal/platform/logger"
)

// geminiDecider drives the interview with a single autonomous model call
// per turn: analyze the latest answer, signal depth, produce the next
// question.
type geminiDecider struct {
	log *logger.Logger
	llm gemini.Client
}

func NewGeminiDecider(baseLog *logger.Logger, llm gemini.Client) Decider {
	return &geminiDecider{
		log: baseLog.With("service", "GeminiDecider"),
		llm: llm,
	}
}

type decisionPayload struct {
	ResponseText   string `json:"response_text"`
	InterviewState struct {
		SkillProgress string `json:"skill_progress"`
		NextFocus     string `json:"next_focus"`
	} `json:"interview_state"`
}

func (d *geminiDecider) Open(ctx context.Context, in OpenInput) (*Decision, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert %s %s interviewer starting an interview to test %s.\n\n", in.Seniority, in.Role, in.Skill)
	b.WriteString(strings.Join([]string{
		"TASK: Generate the opening of the interview.",
		"- Greet the candidate briefly and professionally.",
		"- Present one clear problem or scenario that exercises the target skill.",
		fmt.Sprintf("- Calibrate difficulty to a %s candidate.", in.Seniority),
		"",
		"OUTPUT: Return ONLY a JSON object with this exact shape:",
		`{"response_text": "your full opening statement and first question",`,
		` "interview_state": {"skill_progress": "not_started", "next_focus": "initial_problem_presentation"}}`,
	}, "\n"))

	var payload decisionPayload
	if err := d.llm.GenerateJSON(ctx, b.String(), &payload); err != nil {
		return nil, fmt.Errorf("gemini open: %w", err)
	}
	if strings.TrimSpace(payload.ResponseText) == "" {
		return nil, fmt.Errorf("gemini open: empty response_text")
	}
	return &Decision{
		Text:      payload.ResponseText,
		Progress:  interview.ProgressNotStarted,
		NextFocus: payload.InterviewState.NextFocus,
	}, nil
}

func (d *geminiDecider) Decide(ctx context.Context, in DecideInput) (*Decision, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert %s %s interviewer testing %s.\n\n", in.Seniority, in.Role, in.Skill)
	fmt.Fprintf(&b, "CURRENT STAGE: %s\nCURRENT PROGRESS: %s\n", in.Stage, in.Progress)
	if strings.TrimSpace(in.NextFocus) != "" {
		fmt.Fprintf(&b, "PLANNED FOCUS: %s\n", in.NextFocus)
	}
	b.WriteString("\nCONVERSATION SO FAR:\n")
	b.WriteString(formatTurns(in.Turns))
	b.WriteString("\n\n")
	b.WriteString(strings.Join([]string{
		"TASK:",
		"- Analyze the candidate's latest answer.",
		"- Rate their demonstrated depth at the current stage as one of:",
		"  beginner, intermediate, advanced, expert.",
		"- Produce the next question or statement. Probe for the why and the",
		"  how, not just the what. Challenge strong candidates, guide weak ones.",
		"",
		"OUTPUT: Return ONLY a JSON object with this exact shape:",
		`{"response_text": "the exact words you will say next",`,
		` "interview_state": {"skill_progress": "beginner|intermediate|advanced|expert", "next_focus": "what you plan to explore next"}}`,
	}, "\n"))

	var payload decisionPayload
	if err := d.llm.GenerateJSON(ctx, b.String(), &payload); err != nil {
		return nil, fmt.Errorf("gemini decide: %w", err)
	}
	if strings.TrimSpace(payload.ResponseText) == "" {
		return nil, fmt.Errorf("gemini decide: empty response_text")
	}
	return &Decision{
		Text:      payload.ResponseText,
		Progress:  normalizeProgress(d.log, payload.InterviewState.SkillProgress),
		NextFocus: payload.InterviewState.NextFocus,
	}, nil
}

// normalizeProgress clamps agent output onto the known scale rather than
// failing the whole turn over a creative label.
func normalizeProgress(log *logger.Logger, raw string) interview.Progress {
	p := interview.Progress(strings.ToLower(strings.TrimSpace(raw)))
	if p.Valid() {
		return p
	}
	log.Warn("unknown skill_progress from agent, clamping", "value", raw)
	return interview.ProgressIntermediate
}

func formatTurns(turns []interview.Turn) string {
	if len(turns) == 0 {
		return "No previous conversation."
	}
	lines := make([]string, 0, len(turns)*2)
	for i, t := range turns {
		lines = append(lines, fmt.Sprintf("Turn %d - Interviewer: %s", i+1, t.Question))
		if t.Answered() {
			lines = append(lines, fmt.Sprintf("Turn %d - Candidate: %s", i+1, t.Answer))
		}
	}
	return strings.Join(lines, "\n")
}

// geminiScorer grades one evaluation dimension per call over the finalized
// transcript.
type geminiScorer struct {
	log *logger.Logger
	llm gemini.Client
}

func NewGeminiScorer(baseLog *logger.Logger, llm gemini.Client) Scorer {
	return &geminiScorer{
		log: baseLog.With("service", "GeminiScorer"),
		llm: llm,
	}
}

type scorePayload struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

func (s *geminiScorer) Score(ctx context.Context, in ScoreInput) (*interview.DimensionScore, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "You are evaluating a completed %s %s interview focused on %s.\n\n", in.Seniority, in.Role, in.Skill)
	b.WriteString("TRANSCRIPT:\n")
	b.WriteString(formatTurns(in.Turns))
	b.WriteString("\n\n")
	b.WriteString(strings.Join([]string{
		fmt.Sprintf("TASK: Grade the candidate on exactly one dimension: %s.", in.Dimension),
		"- Score 1 (poor) to 5 (exceptional), halves allowed.",
		"- Cite concrete evidence from the transcript in the feedback.",
		"",
		"OUTPUT: Return ONLY a JSON object with this exact shape:",
		`{"score": 3.5, "feedback": "evidence-based feedback for this dimension"}`,
	}, "\n"))

	var payload scorePayload
	if err := s.llm.GenerateJSON(ctx, b.String(), &payload); err != nil {
		return nil, fmt.Errorf("gemini score %s: %w", in.Dimension, err)
	}
	if payload.Score < 1 {
		payload.Score = 1
	}
	if payload.Score > 5 {
		payload.Score = 5
	}
	return &interview.DimensionScore{
		Dimension: in.Dimension,
		Score:     payload.Score,
		Feedback:  payload.Feedback,
	}, nil
}
