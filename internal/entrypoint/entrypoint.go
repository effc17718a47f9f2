package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/booklend/internal/audit"
	"github.com/mrlokans/booklend/internal/auth"
	"github.com/mrlokans/booklend/internal/catalog"
	"github.com/mrlokans/booklend/internal/config"
	"github.com/mrlokans/booklend/internal/covers"
	"github.com/mrlokans/booklend/internal/database"
	auditRepo "github.com/mrlokans/booklend/internal/database/audit"
	"github.com/mrlokans/booklend/internal/database/library"
	"github.com/mrlokans/booklend/internal/database/users"
	http_controllers "github.com/mrlokans/booklend/internal/http"
	"github.com/mrlokans/booklend/internal/scheduler"
	"github.com/mrlokans/booklend/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before the listener goes away
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// csrfSecret returns the configured secret, or a fresh one when unset.
// Non-hex values are used as raw bytes.
func csrfSecret(configured string) ([]byte, error) {
	if configured != "" {
		secret, err := hex.DecodeString(configured)
		if err != nil {
			return []byte(configured), nil
		}
		return secret, nil
	}

	generated, err := auth.GenerateSessionSecret()
	if err != nil {
		return nil, err
	}
	log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	return hex.DecodeString(generated)
}

// coverCacheDir defaults to a covers directory next to the database.
func coverCacheDir(cfg *config.Config) string {
	if cfg.Covers.CacheDir != "" {
		return cfg.Covers.CacheDir
	}
	return filepath.Join(filepath.Dir(cfg.Database.Path), "covers")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting booklend v%s", version)
	log.Printf("Book API: %s", cfg.API.BaseURL)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	catalogClient := catalog.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
	libraryRepo := library.NewRepository(db.DB)
	activity := audit.NewService(auditRepo.NewRepository(db.DB))

	authService := auth.NewService(users.NewRepository(db.DB), cfg.Auth)

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}
	loginLimiter := auth.NewLoginLimiter(cfg.Auth)

	secret, err := csrfSecret(cfg.Auth.SessionSecret)
	if err != nil {
		log.Fatalf("Failed to generate CSRF secret: %v", err)
	}

	if hasUsers, _ := authService.HasUsers(); !hasUsers {
		log.Printf("No accounts yet. Visit /register to create one.")
	}

	routerCfg := http_controllers.RouterConfig{
		Catalog:        catalogClient,
		Library:        libraryRepo,
		Database:       db,
		AuthService:    authService,
		SessionManager: sessionManager,
		LoginLimiter:   loginLimiter,
		CSRFSecret:     secret,
		SecureCookies:  cfg.Auth.SecureCookies,
		StaticPath:     cfg.UI.StaticPath,
		Version:        version,
		APIBaseURL:     cfg.API.BaseURL,
		Activity:       activity,
	}

	cacheDir := coverCacheDir(cfg)
	coverCache, err := covers.NewCache(cacheDir)
	if err != nil {
		log.Printf("WARNING: Failed to initialize cover cache: %v", err)
	} else {
		log.Printf("Cover cache initialized at %s", cacheDir)
		routerCfg.CoverCache = coverCache
	}

	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var jobs *scheduler.Scheduler
	if cfg.Tasks.Enabled {
		queues := []backlite.Queue{tasks.NewCleanupActivityQueue(activity)}
		if coverCache != nil {
			queues = append(queues, tasks.NewPrefetchCoversQueue(catalogClient, coverCache))
		}
		taskClient, err = tasks.NewClient(cfg.Database.Path, cfg.Tasks, queues...)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()
		routerCfg.TaskQueue = taskClient

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		jobs = scheduler.New(taskClient)
		if err := jobs.Add(scheduler.ActivityCleanupJob(cfg.Activity.CleanupSchedule, cfg.Activity.RetentionDays)); err != nil {
			log.Printf("WARNING: activity cleanup disabled: %v", err)
		}
		if cfg.Covers.RefreshEnabled && coverCache != nil {
			if err := jobs.Add(scheduler.CoverRefreshJob(cfg.Covers.RefreshSchedule)); err != nil {
				log.Printf("WARNING: cover refresh disabled: %v", err)
			}
		}
		jobs.Start(taskCtx)
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if jobs != nil {
			jobs.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		loginLimiter.Stop()
		activity.Wait()
	}

	Serve(router, cfg, onShutdown)
}
