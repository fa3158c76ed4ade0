package interview

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// FinalRecord is the write-once durable snapshot taken when a session
// finalizes. session_id carries a uniqueness constraint so duplicate
// finalize attempts collapse into one row.
type FinalRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID string    `gorm:"uniqueIndex;not null;column:session_id" json:"session_id"`

	Role      string `gorm:"not null;column:role" json:"role"`
	Seniority string `gorm:"not null;column:seniority" json:"seniority"`
	Skill     string `gorm:"not null;column:skill" json:"skill"`

	FinalStage       string         `gorm:"not null;column:final_stage" json:"final_stage"`
	FinalProgress    string         `gorm:"not null;column:final_progress" json:"final_progress"`
	History          datatypes.JSON `gorm:"column:history" json:"history"`
	TurnCount        int            `gorm:"not null;column:turn_count" json:"turn_count"`
	ElapsedMs        int64          `gorm:"not null;column:elapsed_ms" json:"elapsed_ms"`
	CompletionReason string         `gorm:"column:completion_reason" json:"completion_reason"`

	CompletedAt time.Time `gorm:"not null;column:completed_at" json:"completed_at"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (FinalRecord) TableName() string { return "interview_final_records" }

// DimensionScore is one scored evaluation dimension, stored inside
// EvaluationResult.Dimensions as JSON.
type DimensionScore struct {
	Dimension string  `json:"dimension"`
	Score     float64 `json:"score"`
	Feedback  string  `json:"feedback"`
}

// EvaluationResult holds the post-interview per-dimension scores. One row
// per session; re-evaluation overwrites only when explicitly requested.
type EvaluationResult struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID string    `gorm:"uniqueIndex;not null;column:session_id" json:"session_id"`

	Dimensions   datatypes.JSON `gorm:"not null;column:dimensions" json:"dimensions"`
	OverallScore float64        `gorm:"not null;column:overall_score" json:"overall_score"`
	Summary      string         `gorm:"column:summary" json:"summary"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (EvaluationResult) TableName() string { return "interview_evaluations" }
