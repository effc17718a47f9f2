package http

import (
	"github.com/mrlokans/booklend/internal/audit"
	"github.com/mrlokans/booklend/internal/auth"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Catalog  Catalog
	Library  LibraryStore
	Database Pinger

	// Authentication
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	LoginLimiter   *auth.LoginLimiter
	CSRFSecret     []byte
	SecureCookies  bool

	// Optional directory served under /static
	StaticPath string

	// Application info
	Version    string
	APIBaseURL string

	// Cover caching (optional)
	CoverCache CoverCache

	// Task queue (optional)
	TaskQueue TaskQueue

	// Account activity trail (optional)
	Activity *audit.Service
}
