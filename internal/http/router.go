package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mrlokans/booklend/internal/auth"
	"github.com/mrlokans/booklend/internal/shell"
	"github.com/mrlokans/booklend/internal/web"
)

// NewRouter creates and configures the HTTP router with all endpoints.
//
// Screen routes run behind the shell gate, which redirects according to the
// login state. Assets, health and JSON endpoints sit outside it.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware())
	}

	// Session loads first so CSRF's request replacement keeps its context
	router.Use(cfg.SessionManager.SessionLoadSave())
	router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))

	authMiddleware := auth.NewMiddleware(cfg.AuthService, cfg.SessionManager)
	router.Use(authMiddleware.Handler())

	router.SetHTMLTemplate(web.MustTemplates())

	if cfg.StaticPath != "" {
		router.Static("/static", cfg.StaticPath)
	}

	// Health and metrics endpoints
	health := NewHealthController(cfg.Database, cfg.Version, cfg.APIBaseURL)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	pages := NewPagesController(cfg.Catalog, cfg.Library, cfg.SessionManager, cfg.CoverCache != nil)
	library := NewLibraryController(cfg.Catalog, cfg.Library, cfg.SessionManager)

	// Screens
	gate := authMiddleware.Gate()
	screens := router.Group("/", gate)
	authController := auth.NewController(cfg.AuthService, cfg.SessionManager, cfg.LoginLimiter)
	if cfg.Activity != nil {
		authController.SetActivityRecorder(cfg.Activity)
		library.SetActivityLog(cfg.Activity)
	}
	authController.RegisterRoutes(screens)
	screens.GET(shell.PathHome, pages.Show)
	screens.GET(shell.PathBrowse, pages.Show)
	screens.GET(shell.PathLibrary, pages.Show)
	screens.GET(shell.PathCategories, pages.Show)
	screens.POST("/library/:id", library.Add)
	screens.POST("/library/:id/remove", library.Remove)

	// Any other path is a navigation too: login for guests, Home otherwise
	router.NoRoute(gate, pages.Show)

	// Session-only JSON and asset endpoints
	api := router.Group("/", RequireUser())
	api.GET("/api/library", library.List)
	if cfg.Activity != nil {
		api.GET("/api/activity", NewActivityController(cfg.Activity).List)
	}

	if cfg.CoverCache != nil {
		covers := NewCoversController(cfg.CoverCache, cfg.Catalog)
		api.GET("/covers/:id", covers.GetCover)
	}

	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue)
		api.GET("/api/tasks/:id", tasksController.GetTaskStatus)
		api.POST("/api/tasks/prefetch_covers/run", tasksController.RunPrefetchCovers)
	}

	return router
}
