// Package api assembles the HTTP surface of the service.
package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/roksva123/go-matrix-tasks/internal/api/handlers"
	"github.com/roksva123/go-matrix-tasks/internal/api/middleware"
	reqlog "github.com/roksva123/go-matrix-tasks/internal/middleware"
	"github.com/roksva123/go-matrix-tasks/internal/model"
	"github.com/roksva123/go-matrix-tasks/internal/notify"
	"github.com/roksva123/go-matrix-tasks/internal/service"
	"github.com/roksva123/go-matrix-tasks/internal/store"
)

type Deps struct {
	Store       *store.Store
	Toasts      *notify.Hub
	Auth        *service.AuthService
	Tasks       *service.TaskService
	Export      *service.ExportService
	Staff       *service.StaffService
	Departments *service.DepartmentService
	Sync        *service.SyncService
	History     handlers.HistoryReader
	Settings    *service.SettingsService
	Evaluations *service.EvaluationService
	Workload    *service.WorkloadService
	Logger      *zap.Logger

	AllowOrigins []string
	BackendName  string
}

func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery(), reqlog.RequestID(), reqlog.Logger(d.Logger))

	origins := d.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", reqlog.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", reqlog.RequestIDHeader},
		AllowCredentials: !(len(origins) == 1 && origins[0] == "*"),
		MaxAge:           12 * time.Hour,
	}))

	authHandler := handlers.NewAuthHandler(d.Auth)
	taskHandler := handlers.NewTaskHandler(d.Tasks, d.Export)
	staffHandler := handlers.NewStaffHandler(d.Staff)
	departmentHandler := handlers.NewDepartmentHandler(d.Departments)
	syncHandler := handlers.NewSyncHandler(d.Sync, d.History)
	settingsHandler := handlers.NewSettingsHandler(d.Settings)
	workloadHandler := handlers.NewWorkloadHandler(d.Workload, d.Evaluations)
	eventsHandler := handlers.NewEventsHandler(d.Store, d.Toasts)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "backend": d.BackendName})
	})

	// AUTH ROUTES
	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/recent", authHandler.Recent)

	protected := api.Group("", middleware.Auth(d.Auth))
	adminOnly := middleware.RequireRole(model.RoleAdmin)
	leaders := middleware.RequireRole(model.RoleAdmin, model.RoleManager)

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/auth/me", authHandler.Me)

	// TASK ROUTES
	tasks := protected.Group("/tasks")
	{
		tasks.GET("", taskHandler.List)
		tasks.POST("", taskHandler.Create)
		tasks.GET("/export", taskHandler.ExportXLSX)
		tasks.GET("/:id", taskHandler.Get)
		tasks.PATCH("/:id", taskHandler.Update)
		tasks.DELETE("/:id", taskHandler.Delete)
		tasks.POST("/:id/transition", taskHandler.Transition)
		tasks.GET("/:id/actions", taskHandler.Actions)
	}

	// STAFF + DEPARTMENT ROUTES
	staff := protected.Group("/staff")
	{
		staff.GET("", staffHandler.List)
		staff.POST("", adminOnly, staffHandler.Create)
		staff.PATCH("/:id", adminOnly, staffHandler.Update)
		staff.DELETE("/:id", adminOnly, staffHandler.Delete)
	}
	deps := protected.Group("/departments")
	{
		deps.GET("", departmentHandler.List)
		deps.GET("/resolve", departmentHandler.Resolve)
		deps.POST("", adminOnly, departmentHandler.Create)
		deps.PATCH("/:id", adminOnly, departmentHandler.Update)
		deps.DELETE("/:id", adminOnly, departmentHandler.Delete)
	}

	// SYNC ROUTES
	sync := protected.Group("/sync")
	{
		sync.POST("/tasks", syncHandler.SyncEntity(model.EntityTasks))
		sync.POST("/staff", syncHandler.SyncEntity(model.EntityStaff))
		sync.POST("/departments", syncHandler.SyncEntity(model.EntityDepartments))
		sync.POST("/all", syncHandler.SyncAll)
		sync.GET("/preview/:entity", syncHandler.Preview)
		sync.GET("/log", syncHandler.Log)
		sync.DELETE("/log", adminOnly, syncHandler.ClearLog)
		sync.GET("/history", syncHandler.GetSyncHistory)
	}

	protected.GET("/settings", settingsHandler.Get)
	protected.PUT("/settings", settingsHandler.Update)

	protected.GET("/workload", workloadHandler.GetWorkload)
	protected.GET("/evaluations", leaders, workloadHandler.ListEvaluations)
	protected.PUT("/evaluations", leaders, workloadHandler.SetEvaluation)

	protected.GET("/notifications", eventsHandler.Notifications)
	protected.DELETE("/notifications/:id", eventsHandler.Dismiss)
	protected.GET("/events", eventsHandler.Stream)

	return r
}
