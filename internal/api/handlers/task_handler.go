package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roksva123/go-matrix-tasks/internal/model"
	"github.com/roksva123/go-matrix-tasks/internal/service"
	"github.com/roksva123/go-matrix-tasks/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type TaskHandler struct {
	Tasks  *service.TaskService
	Export *service.ExportService
}

func NewTaskHandler(tasks *service.TaskService, export *service.ExportService) *TaskHandler {
	return &TaskHandler{Tasks: tasks, Export: export}
}

// List returns the caller's view of the matrix. ?group=quadrant buckets the
// result per quadrant.
// GET /api/v1/tasks
func (h *TaskHandler) List(c *gin.Context) {
	var f service.TaskFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		badRequest(c, err)
		return
	}
	tasks := utils.ConvertTasksToResponse(h.Tasks.List(actor(c), f), h.Tasks.LocalNow())
	if c.Query("group") == "quadrant" {
		respond(c, http.StatusOK, "OK", utils.GroupByQuadrant(tasks))
		return
	}
	respond(c, http.StatusOK, "OK", tasks)
}

// GET /api/v1/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	t, err := h.Tasks.Get(actor(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "OK", utils.ConvertTaskToResponse(t, h.Tasks.LocalNow()))
}

// POST /api/v1/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var in service.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	t, err := h.Tasks.Create(c.Request.Context(), actor(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Task created", utils.ConvertTaskToResponse(t, h.Tasks.LocalNow()))
}

// PATCH /api/v1/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	var p service.TaskPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	t, err := h.Tasks.Update(c.Request.Context(), actor(c), c.Param("id"), p)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Task updated", utils.ConvertTaskToResponse(t, h.Tasks.LocalNow()))
}

type transitionRequest struct {
	Action model.Action `json:"action" binding:"required"`
}

// POST /api/v1/tasks/:id/transition
func (h *TaskHandler) Transition(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	t, err := h.Tasks.Transition(c.Request.Context(), actor(c), c.Param("id"), req.Action)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, fmt.Sprintf("Task is now %s", t.Status), utils.ConvertTaskToResponse(t, h.Tasks.LocalNow()))
}

// GET /api/v1/tasks/:id/actions
func (h *TaskHandler) Actions(c *gin.Context) {
	actions, err := h.Tasks.Actions(actor(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "OK", actions)
}

// DELETE /api/v1/tasks/:id?confirm=true
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.Tasks.Delete(c.Request.Context(), actor(c), c.Param("id"), c.Query("confirm") == "true"); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Task deleted", nil)
}

// ExportXLSX streams the caller's filtered view as an xlsx workbook.
// GET /api/v1/tasks/export
func (h *TaskHandler) ExportXLSX(c *gin.Context) {
	var f service.TaskFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		badRequest(c, err)
		return
	}
	buf, name, err := h.Export.TaskReport(actor(c), f)
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
