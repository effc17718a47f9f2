package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/booklend/internal/shell"
)

// Context keys for user and navigation data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyUsername = "auth_username"
	ContextKeyShell    = "auth_shell"
	ContextKeyRouter   = "auth_router"
)

// Middleware resolves the session user and gates screen routes.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(service *Service, sessionManager *SessionManager) *Middleware {
	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
	}
}

// Handler puts the logged in user, if any, into the gin context. Sessions
// pointing at a user that no longer exists are destroyed.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := m.sessionManager.GetUserID(c.Request)
		if userID == 0 {
			c.Next()
			return
		}

		user, err := m.service.GetUserByID(userID)
		switch {
		case errors.Is(err, ErrUserNotFound):
			log.Printf("[AUTH] Dropping session of missing user %d", userID)
			_ = m.sessionManager.DestroySession(c.Request)
		case err != nil:
			log.Printf("[AUTH] Failed to load session user %d: %v", userID, err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		default:
			c.Set(ContextKeyUserID, user.ID)
			c.Set(ContextKeyUsername, user.Username)
		}

		c.Next()
	}
}

// sessionAuthState adapts the request's session to shell.AuthState.
type sessionAuthState struct {
	sm  *SessionManager
	req *http.Request
}

func (s sessionAuthState) IsAuthenticated() bool {
	return s.sm.IsAuthenticated(s.req)
}

func (s sessionAuthState) Logout() error {
	return s.sm.DestroySession(s.req)
}

// Gate runs the application shell for the request path. If the shell moves
// the router elsewhere the client is redirected there; otherwise the shell
// is left in the context for the page handler.
func (m *Middleware) Gate() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		router := shell.NewMemoryRouter(path)
		sh := shell.New(router, sessionAuthState{sm: m.sessionManager, req: c.Request})
		stop := sh.Start()
		defer stop()

		if target := router.CurrentPath(); target != path {
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}

		c.Set(ContextKeyShell, sh)
		c.Set(ContextKeyRouter, router)
		c.Next()
	}
}

// GetShell returns the shell installed by Gate, or nil.
func GetShell(c *gin.Context) *shell.Shell {
	if v, ok := c.Get(ContextKeyShell); ok {
		if sh, ok := v.(*shell.Shell); ok {
			return sh
		}
	}
	return nil
}

// FollowShell redirects the client to the path the shell's router ended
// up on after an action such as LoginSucceeded.
func FollowShell(c *gin.Context) {
	v, _ := c.Get(ContextKeyRouter)
	router, ok := v.(shell.Router)
	if !ok {
		c.Redirect(http.StatusFound, shell.PathRoot)
		return
	}
	c.Redirect(http.StatusFound, router.CurrentPath())
}

// GetUserID extracts the user ID from the gin context. Returns 0 when
// logged out.
func GetUserID(c *gin.Context) uint {
	if v, ok := c.Get(ContextKeyUserID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// GetUsername extracts the username from the gin context.
func GetUsername(c *gin.Context) string {
	return c.GetString(ContextKeyUsername)
}
