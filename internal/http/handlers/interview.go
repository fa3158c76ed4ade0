package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/mockview-backend/internal/http/response"
	"github.com/yungbote/mockview-backend/internal/platform/apierr"
	"github.com/yungbote/mockview-backend/internal/platform/logger"
	"github.com/yungbote/mockview-backend/internal/services"
)

type InterviewHandler struct {
	interviews  services.InterviewService
	evaluations services.EvaluationService
	log         *logger.Logger
}

func NewInterviewHandler(log *logger.Logger, interviews services.InterviewService, evaluations services.EvaluationService) *InterviewHandler {
	return &InterviewHandler{
		interviews:  interviews,
		evaluations: evaluations,
		log:         log.With("handler", "InterviewHandler"),
	}
}

type startRequest struct {
	Role      string `json:"role" binding:"required"`
	Seniority string `json:"seniority" binding:"required"`
	Skill     string `json:"skill" binding:"required"`
}

type answerRequest struct {
	Answer string `json:"answer" binding:"required"`
}

// POST /api/interviews
func (h *InterviewHandler) Start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.interviews.Start(c.Request.Context(), req.Role, req.Seniority, req.Skill)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"session_id": res.SessionID,
		"question":   res.Question,
		"stage":      res.Stage,
	})
}

// POST /api/interviews/:id/answers
func (h *InterviewHandler) SubmitAnswer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.interviews.SubmitAnswer(c.Request.Context(), c.Param("id"), req.Answer)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if res.Completed {
		response.RespondOK(c, gin.H{
			"completed": true,
			"stage":     res.Stage,
			"reason":    res.Reason,
		})
		return
	}
	response.RespondOK(c, gin.H{
		"question": res.Question,
		"stage":    res.Stage,
	})
}

// GET /api/interviews/:id
func (h *InterviewHandler) Status(c *gin.Context) {
	res, err := h.interviews.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"stage":      res.Stage,
		"progress":   res.Progress,
		"turn_count": res.TurnCount,
		"status":     res.Status,
	})
}

// POST /api/interviews/:id/complete
func (h *InterviewHandler) Complete(c *gin.Context) {
	sessionID := c.Param("id")
	outcome, err := h.interviews.Complete(c.Request.Context(), sessionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	payload := gin.H{
		"finalized":         true,
		"already_finalized": outcome == services.OutcomeAlreadyFinalized,
	}

	// Evaluation is best-effort: a scoring outage never un-finalizes the
	// interview, the client just gets the snapshot without grades.
	evalCtx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()
	eval, evalErr := h.evaluations.Evaluate(evalCtx, sessionID, false)
	switch {
	case (evalErr == nil || errors.Is(evalErr, services.ErrAlreadyEvaluated)) && eval != nil:
		payload["evaluation"] = gin.H{
			"dimensions":    eval.Dimensions,
			"overall_score": eval.OverallScore,
			"summary":       eval.Summary,
		}
	default:
		h.log.Warn("evaluation unavailable after finalize",
			"session_id", sessionID, "error", evalErr)
	}

	response.RespondOK(c, payload)
}

func respondServiceError(c *gin.Context, err error) {
	ae := toAPIError(err)
	response.RespondError(c, ae.Status, ae.Code, ae.Err)
}

func toAPIError(err error) *apierr.Error {
	switch {
	case errors.Is(err, services.ErrSessionNotFound), errors.Is(err, services.ErrSourceMissing):
		return apierr.New(http.StatusNotFound, "not_found", err)
	case errors.Is(err, services.ErrConflict):
		return apierr.New(http.StatusConflict, "turn_in_progress", err)
	case errors.Is(err, services.ErrAgentUnavailable):
		return apierr.New(http.StatusServiceUnavailable, "agent_unavailable", err)
	case errors.Is(err, services.ErrStoreUnavailable):
		return apierr.New(http.StatusServiceUnavailable, "store_unavailable", err)
	default:
		return apierr.New(http.StatusBadRequest, "invalid_request", err)
	}
}
