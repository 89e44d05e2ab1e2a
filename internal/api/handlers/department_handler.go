package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/roksva123/go-matrix-tasks/internal/service"
)

type DepartmentHandler struct {
	Departments *service.DepartmentService
}

func NewDepartmentHandler(deps *service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{Departments: deps}
}

// GET /api/v1/departments
func (h *DepartmentHandler) List(c *gin.Context) {
	respond(c, http.StatusOK, "OK", h.Departments.List())
}

// Resolve looks up a department by id or by name.
// GET /api/v1/departments/resolve?ref=
func (h *DepartmentHandler) Resolve(c *gin.Context) {
	r := h.Departments.Resolve(c.Query("ref"))
	if !r.Found {
		respond(c, http.StatusNotFound, "Department not found", r)
		return
	}
	respond(c, http.StatusOK, "OK", r)
}

// POST /api/v1/departments
func (h *DepartmentHandler) Create(c *gin.Context) {
	var in service.DepartmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	d, err := h.Departments.Create(c.Request.Context(), actor(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Department created", d)
}

// PATCH /api/v1/departments/:id
func (h *DepartmentHandler) Update(c *gin.Context) {
	id, ok := departmentID(c)
	if !ok {
		return
	}
	var in service.DepartmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	d, err := h.Departments.Update(c.Request.Context(), actor(c), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Department updated", d)
}

// DELETE /api/v1/departments/:id?confirm=true
func (h *DepartmentHandler) Delete(c *gin.Context) {
	id, ok := departmentID(c)
	if !ok {
		return
	}
	if err := h.Departments.Delete(c.Request.Context(), actor(c), id, c.Query("confirm") == "true"); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Department deleted", nil)
}

func departmentID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respond(c, http.StatusBadRequest, "Invalid department id", nil)
		return 0, false
	}
	return id, true
}
