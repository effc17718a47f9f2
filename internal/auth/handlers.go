package auth

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/booklend/internal/audit"
	"github.com/mrlokans/booklend/internal/shell"
	"github.com/mrlokans/booklend/internal/web"
)

// ActivityRecorder stores sign-in, sign-out and registration events.
type ActivityRecorder interface {
	LogAuth(userID uint, action, ipAddr, userAgent string, success bool)
}

// Controller serves the login, register and logout screens. Routes must be
// mounted behind Middleware.Gate.
type Controller struct {
	service  *Service
	sessions *SessionManager
	limiter  *LoginLimiter
	activity ActivityRecorder
}

// NewController creates the auth screen controller.
func NewController(service *Service, sessions *SessionManager, limiter *LoginLimiter) *Controller {
	return &Controller{
		service:  service,
		sessions: sessions,
		limiter:  limiter,
	}
}

// SetActivityRecorder enables the account activity trail.
func (ac *Controller) SetActivityRecorder(recorder ActivityRecorder) {
	ac.activity = recorder
}

func (ac *Controller) record(c *gin.Context, userID uint, action string, success bool) {
	if ac.activity == nil {
		return
	}
	ac.activity.LogAuth(userID, action, c.ClientIP(), c.Request.UserAgent(), success)
}

// RegisterRoutes mounts the auth screens on a gated route group.
func (ac *Controller) RegisterRoutes(screens gin.IRoutes) {
	screens.GET(shell.PathLogin, ac.LoginPage)
	screens.POST(shell.PathLogin, ac.Login)
	screens.GET(shell.PathRegister, ac.RegisterPage)
	screens.POST(shell.PathRegister, ac.Register)
	screens.POST("/logout", ac.Logout)
}

var registerMessages = map[error]string{
	ErrUsernameRequired: "Username is required.",
	ErrUsernameInvalid:  "Username must be 3-64 characters: letters, digits, underscore or hyphen.",
	ErrEmailRequired:    "Email is required.",
	ErrEmailInvalid:     "Email address is not valid.",
	ErrPasswordRequired: "Password is required.",
	ErrPasswordTooShort: "Password must be at least 12 characters.",
	ErrPasswordTooLong:  "Password must be at most 72 bytes.",
	ErrUserExists:       "That username or email is already taken.",
}

func (ac *Controller) render(c *gin.Context, status int, page shell.Page, title string, form web.AuthForm) {
	c.HTML(status, string(page), web.Page[web.AuthForm]{
		Header: web.HeaderData{
			Title:     title,
			Page:      string(page),
			CSRFToken: GetCSRFToken(c),
			Flash:     ac.sessions.PopFlash(c.Request),
		},
		Content: form,
	})
}

func gatedShell(c *gin.Context) *shell.Shell {
	sh := GetShell(c)
	if sh == nil {
		log.Printf("[AUTH] %s %s reached without the shell gate", c.Request.Method, c.Request.URL.Path)
		c.AbortWithStatus(http.StatusInternalServerError)
	}
	return sh
}

// LoginPage renders the login form.
func (ac *Controller) LoginPage(c *gin.Context) {
	ac.render(c, http.StatusOK, shell.PageLogin, "Sign in", web.AuthForm{})
}

// Login checks the submitted credentials and, on success, starts a session
// and hands navigation to the shell.
func (ac *Controller) Login(c *gin.Context) {
	sh := gatedShell(c)
	if sh == nil {
		return
	}

	login := strings.TrimSpace(c.PostForm("login"))
	password := c.PostForm("password")
	ip := c.ClientIP()

	fail := func(status int, msg string) {
		ac.render(c, status, shell.PageLogin, "Sign in", web.AuthForm{Error: msg, Login: login})
	}

	if login == "" || password == "" {
		fail(http.StatusBadRequest, "Enter your username or email and password.")
		return
	}

	if allowed, retryAfter := ac.limiter.Allow(ip, login); !allowed {
		c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		fail(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
		return
	}

	user, err := ac.service.Authenticate(login, password)
	if err != nil {
		ac.limiter.RecordFailure(ip, login)
		ac.record(c, 0, audit.ActionLogin, false)
		switch {
		case errors.Is(err, ErrAccountLocked):
			fail(http.StatusForbidden, "This account is temporarily locked. Try again later.")
		case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrInvalidPassword):
			fail(http.StatusUnauthorized, "Invalid username or password.")
		default:
			log.Printf("[AUTH] Login failed for %q: %v", login, err)
			fail(http.StatusInternalServerError, "Login failed. Please try again.")
		}
		return
	}
	ac.limiter.RecordSuccess(ip, login)

	if err := ac.sessions.CreateSession(c.Request, user); err != nil {
		log.Printf("[AUTH] Failed to create session for %s: %v", user.Username, err)
		fail(http.StatusInternalServerError, "Login failed. Please try again.")
		return
	}

	log.Printf("[AUTH] User %s logged in", user.Username)
	ac.record(c, user.ID, audit.ActionLogin, true)
	sh.LoginSucceeded()
	FollowShell(c)
}

// RegisterPage renders the registration form.
func (ac *Controller) RegisterPage(c *gin.Context) {
	ac.render(c, http.StatusOK, shell.PageRegister, "Create account", web.AuthForm{})
}

// Register creates an account and sends the user back to the login screen.
func (ac *Controller) Register(c *gin.Context) {
	sh := gatedShell(c)
	if sh == nil {
		return
	}

	username := strings.TrimSpace(c.PostForm("username"))
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	fail := func(status int, msg string) {
		ac.render(c, status, shell.PageRegister, "Create account", web.AuthForm{
			Error:    msg,
			Username: username,
			Email:    email,
		})
	}

	if password != c.PostForm("password_confirm") {
		fail(http.StatusBadRequest, "Passwords do not match.")
		return
	}

	user, err := ac.service.Register(username, email, password)
	if err != nil {
		for known, msg := range registerMessages {
			if errors.Is(err, known) {
				status := http.StatusBadRequest
				if known == ErrUserExists {
					status = http.StatusConflict
				}
				fail(status, msg)
				return
			}
		}
		log.Printf("[AUTH] Registration failed for %q: %v", username, err)
		fail(http.StatusInternalServerError, "Registration failed. Please try again.")
		return
	}

	log.Printf("[AUTH] Registered user %s", user.Username)
	ac.record(c, user.ID, audit.ActionRegister, true)
	ac.sessions.SetFlash(c.Request, "Account created. Please sign in.")
	sh.RegisterSucceeded()
	FollowShell(c)
}

// Logout ends the session through the shell and follows it to /login.
func (ac *Controller) Logout(c *gin.Context) {
	sh := gatedShell(c)
	if sh == nil {
		return
	}

	userID, username := GetUserID(c), GetUsername(c)
	if err := sh.Logout(); err != nil {
		log.Printf("[AUTH] Failed to destroy session: %v", err)
	} else if userID != 0 {
		log.Printf("[AUTH] User %s logged out", username)
		ac.record(c, userID, audit.ActionLogout, true)
	}
	FollowShell(c)
}
