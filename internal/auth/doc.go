// Package auth provides accounts, sessions and the navigation gate for the
// web client.
//
// Every screen request passes through Middleware.Gate, which runs the
// application shell (internal/shell) against the session: logged-out users
// are sent to /login, logged-in users are moved off /, /login and /register
// onto /home. Handlers then act on the shell (LoginSucceeded, Logout,
// RegisterSucceeded) and follow wherever its router ends up.
//
// # Configuration
//
//	AUTH_SESSION_SECRET=<hex-32-bytes>  # Auto-generated if empty
//	AUTH_SESSION_LIFETIME=24h           # Session duration
//	AUTH_BCRYPT_COST=12                 # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true            # HTTPS-only cookies
//
// # Usage
//
//	authService := auth.NewService(users.NewRepository(db.DB), cfg.Auth)
//	sessions, _ := auth.NewSessionManager(sqlDB, cfg.Auth)
//	mw := auth.NewMiddleware(authService, sessions)
//	router.Use(sessions.SessionLoadSave(), mw.Handler())
//	screens := router.Group("/", mw.Gate())
//
// Extract the user in handlers:
//
//	userID := auth.GetUserID(c)  // 0 when logged out
package auth
