package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/roksva123/go-matrix-tasks/internal/model"
)

type staticParser map[string]model.User

func (p staticParser) ParseToken(token string) (model.User, error) {
	u, ok := p[token]
	if !ok {
		return model.User{}, errors.New("bad token")
	}
	return u, nil
}

func newRouter(roles ...model.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	parser := staticParser{
		"staff-token": {ID: "s1", Username: "alice", Role: model.RoleStaff},
		"admin-token": {ID: "admin", Username: "admin", Role: model.RoleAdmin},
	}
	handlers := []gin.HandlerFunc{Auth(parser)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		u, _ := CurrentUser(c)
		c.String(http.StatusOK, u.Username)
	})
	r.GET("/me", handlers...)
	return r
}

func get(r http.Handler, auth string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	r := newRouter()

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "staff-token").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer nope").Code)

	w := get(r, "Bearer staff-token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me?access_token=admin-token", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", w.Body.String())
}

func TestRequireRole(t *testing.T) {
	r := newRouter(model.RoleAdmin, model.RoleManager)

	assert.Equal(t, http.StatusForbidden, get(r, "Bearer staff-token").Code)
	assert.Equal(t, http.StatusOK, get(r, "bearer admin-token").Code)
}
