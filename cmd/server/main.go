package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/roksva123/go-matrix-tasks/internal/api"
	"github.com/roksva123/go-matrix-tasks/internal/api/handlers"
	"github.com/roksva123/go-matrix-tasks/internal/config"
	"github.com/roksva123/go-matrix-tasks/internal/extract"
	"github.com/roksva123/go-matrix-tasks/internal/logger"
	"github.com/roksva123/go-matrix-tasks/internal/model"
	"github.com/roksva123/go-matrix-tasks/internal/normalize"
	"github.com/roksva123/go-matrix-tasks/internal/notify"
	"github.com/roksva123/go-matrix-tasks/internal/repository"
	"github.com/roksva123/go-matrix-tasks/internal/service"
	"github.com/roksva123/go-matrix-tasks/internal/store"
	"github.com/roksva123/go-matrix-tasks/internal/webhook"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	// LOAD ENV
	_ = godotenv.Load()
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed load config: ", err)
	}

	lg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatal("failed init logger: ", err)
	}
	defer lg.Sync()

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, lg *zap.Logger) error {
	// STORE
	backends, err := repository.Open(ctx, cfg.Store, lg)
	if err != nil {
		return err
	}
	defer backends.Close()

	st, err := store.Open(ctx, backends.Backend, lg)
	if err != nil {
		return err
	}
	if backends.Relay != nil {
		st.AttachRelay(ctx, backends.Relay)
	}

	// SYNC HISTORY ARCHIVE
	var (
		archive service.HistoryArchive
		history handlers.HistoryReader
	)
	if cfg.Store.DatabaseURL != "" {
		hr, err := repository.NewHistoryRepo(cfg.Store.DatabaseURL)
		if err != nil {
			return err
		}
		if err := hr.AutoMigrate(); err != nil {
			return fmt.Errorf("migrate sync_history: %w", err)
		}
		archive, history = hr, hr
	}

	// SERVICES
	endpoints := &service.Endpoints{Store: st, Defaults: map[model.EntityKind]string{}}
	for _, k := range model.EntityKinds {
		endpoints.Defaults[k] = cfg.WebhookURL(string(k))
	}
	client := webhook.NewClient(cfg.Webhook.Timeout, lg)
	toasts := notify.NewHub(cfg.Notify.ToastTTL, st)
	normalizer := normalize.New(normalize.UnknownStatusPolicy(cfg.Sync.UnknownStatus), time.Local)
	budget := extract.Budget{MaxDepth: cfg.Sync.MaxDepth, MaxNodes: cfg.Sync.MaxNodes}

	syncSvc := service.NewSyncService(st, client, endpoints, normalizer, toasts, archive, budget, lg)
	auth, err := service.NewAuthService(st, syncSvc, endpoints, cfg.Admin.Username, cfg.Admin.Password, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, lg)
	if err != nil {
		return err
	}
	deps := service.NewDepartmentService(st, client, endpoints)
	tasks := service.NewTaskService(st, deps, client, endpoints, time.Local, lg)

	// ROUTER
	router := api.NewRouter(api.Deps{
		Store:        st,
		Toasts:       toasts,
		Auth:         auth,
		Tasks:        tasks,
		Export:       service.NewExportService(tasks, lg),
		Staff:        service.NewStaffService(st, deps, client, endpoints),
		Departments:  deps,
		Sync:         syncSvc,
		History:      history,
		Settings:     service.NewSettingsService(st, endpoints),
		Evaluations:  service.NewEvaluationService(st, deps, client, endpoints),
		Workload:     service.NewWorkloadService(tasks, deps),
		Logger:       lg,
		AllowOrigins: cfg.Server.CORS.AllowOrigins,
		BackendName:  backends.Name,
	})

	// START SERVER
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		lg.Info("server running", zap.Int("port", cfg.Server.Port), zap.String("backend", backends.Name))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	lg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
