package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/roksva123/go-matrix-tasks/internal/model"
	"github.com/roksva123/go-matrix-tasks/internal/service"
)

type WorkloadHandler struct {
	Workload    *service.WorkloadService
	Evaluations *service.EvaluationService
}

func NewWorkloadHandler(workload *service.WorkloadService, evals *service.EvaluationService) *WorkloadHandler {
	return &WorkloadHandler{Workload: workload, Evaluations: evals}
}

// GetWorkload summarises task counts per member over 7, 14 or 30 days.
// GET /api/v1/workload?period=7
func (h *WorkloadHandler) GetWorkload(c *gin.Context) {
	period, ok := periodParam(c)
	if !ok {
		return
	}
	resp, err := h.Workload.Summary(actor(c), period)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "OK", resp)
}

// GET /api/v1/evaluations?period=7
func (h *WorkloadHandler) ListEvaluations(c *gin.Context) {
	period, ok := periodParam(c)
	if !ok {
		return
	}
	evals, err := h.Evaluations.List(period)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "OK", evals)
}

type evaluationRequest struct {
	UserID string              `json:"userId" binding:"required"`
	Period int                 `json:"period" binding:"required"`
	Tag    model.EvaluationTag `json:"tag"`
}

// PUT /api/v1/evaluations
func (h *WorkloadHandler) SetEvaluation(c *gin.Context) {
	var req evaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	e, err := h.Evaluations.Set(c.Request.Context(), actor(c), req.UserID, req.Period, req.Tag)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Evaluation saved", e)
}

func periodParam(c *gin.Context) (int, bool) {
	period, err := strconv.Atoi(c.DefaultQuery("period", "7"))
	if err != nil || !model.ValidPeriod(period) {
		respond(c, http.StatusBadRequest, model.ErrInvalidPeriod.Error(), nil)
		return 0, false
	}
	return period, true
}
