package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roksva123/go-matrix-tasks/internal/service"
)

type SettingsHandler struct {
	Settings *service.SettingsService
}

func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{Settings: settings}
}

// GET /api/v1/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	respond(c, http.StatusOK, "OK", h.Settings.Get())
}

// PUT /api/v1/settings
func (h *SettingsHandler) Update(c *gin.Context) {
	var p service.SettingsPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	s, err := h.Settings.Update(c.Request.Context(), actor(c), p)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Settings saved", s)
}
