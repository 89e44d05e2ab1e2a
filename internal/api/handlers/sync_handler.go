package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/roksva123/go-matrix-tasks/internal/model"
	"github.com/roksva123/go-matrix-tasks/internal/service"
)

// HistoryReader reads the durable sync archive. *repository.HistoryRepo
// satisfies it.
type HistoryReader interface {
	Recent(ctx context.Context, entity model.EntityKind, limit int) ([]model.SyncHistory, error)
}

type SyncHandler struct {
	Sync    *service.SyncService
	History HistoryReader
}

// NewSyncHandler accepts a nil history when no database is configured.
func NewSyncHandler(sync *service.SyncService, history HistoryReader) *SyncHandler {
	return &SyncHandler{Sync: sync, History: history}
}

// SyncEntity returns the handler for POST /api/v1/sync/<entity>.
func (h *SyncHandler) SyncEntity(kind model.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := h.Sync.Sync(c.Request.Context(), kind, actor(c))
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, "Sync completed", result)
	}
}

// SyncAll runs every entity sync. A partial failure still returns the
// results that did succeed.
// POST /api/v1/sync/all
func (h *SyncHandler) SyncAll(c *gin.Context) {
	full, err := h.Sync.SyncAll(c.Request.Context(), actor(c))
	if err != nil {
		respond(c, http.StatusMultiStatus, "Some syncs failed", full)
		return
	}
	respond(c, http.StatusOK, "Sync completed", full)
}

// GET /api/v1/sync/preview/:entity
func (h *SyncHandler) Preview(c *gin.Context) {
	kind, ok := model.ParseEntityKind(c.Param("entity"))
	if !ok {
		respond(c, http.StatusBadRequest, "Unknown entity", nil)
		return
	}
	p, err := h.Sync.Preview(c.Request.Context(), kind, actor(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "OK", p)
}

// GET /api/v1/sync/log
func (h *SyncHandler) Log(c *gin.Context) {
	respond(c, http.StatusOK, "OK", h.Sync.ConnectionLog())
}

// DELETE /api/v1/sync/log?confirm=true
func (h *SyncHandler) ClearLog(c *gin.Context) {
	if err := h.Sync.ClearConnectionLog(c.Request.Context(), c.Query("confirm") == "true"); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Connection log cleared", nil)
}

// GetSyncHistory reads the durable archive, optionally for one entity.
// GET /api/v1/sync/history?entity=&limit=
func (h *SyncHandler) GetSyncHistory(c *gin.Context) {
	if h.History == nil {
		respond(c, http.StatusOK, "Sync history is not archived", []model.SyncHistory{})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		respond(c, http.StatusBadRequest, "Invalid limit parameter", nil)
		return
	}
	var kind model.EntityKind
	if e := c.Query("entity"); e != "" {
		k, ok := model.ParseEntityKind(e)
		if !ok {
			respond(c, http.StatusBadRequest, "Unknown entity", nil)
			return
		}
		kind = k
	}

	history, err := h.History.Recent(c.Request.Context(), kind, limit)
	if err != nil {
		_ = c.Error(err)
		respond(c, http.StatusInternalServerError, "Failed to get sync history", nil)
		return
	}
	respond(c, http.StatusOK, "OK", history)
}
