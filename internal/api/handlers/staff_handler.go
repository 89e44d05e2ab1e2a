package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roksva123/go-matrix-tasks/internal/service"
)

type StaffHandler struct {
	Staff *service.StaffService
}

func NewStaffHandler(staff *service.StaffService) *StaffHandler {
	return &StaffHandler{Staff: staff}
}

// List returns the roster without passwords. Each member carries its
// resolved department when the reference matches one.
// GET /api/v1/staff
func (h *StaffHandler) List(c *gin.Context) {
	staff := h.Staff.List()
	out := make([]gin.H, 0, len(staff))
	for _, m := range staff {
		item := gin.H{"member": m}
		if r := h.Staff.ResolveDepartment(m); r.Found {
			item["department"] = r.Department
		}
		out = append(out, item)
	}
	respond(c, http.StatusOK, "OK", out)
}

// POST /api/v1/staff
func (h *StaffHandler) Create(c *gin.Context) {
	var in service.StaffInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	m, err := h.Staff.Create(c.Request.Context(), actor(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Staff created", m)
}

// PATCH /api/v1/staff/:id
func (h *StaffHandler) Update(c *gin.Context) {
	var in service.StaffInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	m, err := h.Staff.Update(c.Request.Context(), actor(c), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Staff updated", m)
}

// DELETE /api/v1/staff/:id?confirm=true
func (h *StaffHandler) Delete(c *gin.Context) {
	if err := h.Staff.Delete(c.Request.Context(), actor(c), c.Param("id"), c.Query("confirm") == "true"); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Staff deleted", nil)
}
