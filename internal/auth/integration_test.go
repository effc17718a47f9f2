package auth

import (
	"html"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/booklend/internal/database/users"
	"github.com/mrlokans/booklend/internal/web"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var csrfFieldPattern = regexp.MustCompile(`name="gorilla\.csrf\.Token" value="([^"]+)"`)

type recordedAuth struct {
	userID  uint
	action  string
	success bool
}

type recordingActivity struct {
	mu     sync.Mutex
	events []recordedAuth
}

func (r *recordingActivity) LogAuth(userID uint, action, _, _ string, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedAuth{userID, action, success})
}

func (r *recordingActivity) recorded() []recordedAuth {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedAuth(nil), r.events...)
}

type testServer struct {
	*httptest.Server
	client   *http.Client
	svc      *Service
	activity *recordingActivity
}

// setupTestServer wires sessions, CSRF, the gate and the auth screens the
// same way the real router does, with stub protected screens.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	db := setupTestDatabase(t)
	sqlDB, err := db.DB.DB()
	require.NoError(t, err)

	cfg := testAuthConfig()
	svc := NewService(users.NewRepository(db.DB), cfg)
	sessions, err := NewSessionManager(sqlDB, cfg)
	require.NoError(t, err)
	limiter := NewLoginLimiter(cfg)
	t.Cleanup(limiter.Stop)

	mw := NewMiddleware(svc, sessions)

	router := gin.New()
	router.SetHTMLTemplate(web.MustTemplates())
	router.Use(
		sessions.SessionLoadSave(),
		CSRFMiddleware([]byte("0123456789abcdef0123456789abcdef"), false),
		mw.Handler(),
	)

	router.GET("/csrf-token", func(c *gin.Context) {
		c.String(http.StatusOK, `name="gorilla.csrf.Token" value="%s"`, GetCSRFToken(c))
	})

	screens := router.Group("/", mw.Gate())
	activity := &recordingActivity{}
	controller := NewController(svc, sessions, limiter)
	controller.SetActivityRecorder(activity)
	controller.RegisterRoutes(screens)
	for _, path := range []string{"/home", "/browse", "/library", "/categories"} {
		screens.GET(path, func(c *gin.Context) {
			c.String(http.StatusOK, "%s for %s", GetShell(c).Page(), GetUsername(c))
		})
	}
	router.NoRoute(mw.Gate(), func(c *gin.Context) {
		c.String(http.StatusOK, "%s for %s", GetShell(c).Page(), GetUsername(c))
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &testServer{Server: srv, client: client, svc: svc, activity: activity}
}

func (s *testServer) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := s.client.Get(s.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

// postForm submits a form with the CSRF token scraped from formPath.
func (s *testServer) postForm(t *testing.T, formPath, action string, values url.Values) (*http.Response, string) {
	t.Helper()
	_, page := s.get(t, formPath)
	match := csrfFieldPattern.FindStringSubmatch(page)
	require.NotNil(t, match, "no csrf field on %s", formPath)
	values.Set("gorilla.csrf.Token", html.UnescapeString(match[1]))

	resp, err := s.client.PostForm(s.URL+action, values)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (s *testServer) login(t *testing.T, login, password string) *http.Response {
	t.Helper()
	resp, _ := s.postForm(t, "/login", "/login", url.Values{
		"login":    {login},
		"password": {password},
	})
	return resp
}

func TestGate_LoggedOutRedirectsToLogin(t *testing.T) {
	s := setupTestServer(t)

	for _, path := range []string{"/", "/home", "/browse", "/library", "/categories", "/unknown"} {
		resp, _ := s.get(t, path)
		assert.Equal(t, http.StatusFound, resp.StatusCode, path)
		assert.Equal(t, "/login", resp.Header.Get("Location"), path)
	}

	resp, body := s.get(t, "/login")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Sign in")

	resp, body = s.get(t, "/register")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Create account")
}

func TestRegisterThenLogin(t *testing.T) {
	s := setupTestServer(t)

	resp, _ := s.postForm(t, "/register", "/register", url.Values{
		"username":         {"alice"},
		"email":            {"alice@example.com"},
		"password":         {testPassword},
		"password_confirm": {testPassword},
	})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	_, body := s.get(t, "/login")
	assert.Contains(t, body, "Account created")

	resp = s.login(t, "alice", testPassword)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/home", resp.Header.Get("Location"))

	for _, path := range []string{"/", "/login", "/register"} {
		resp, _ := s.get(t, path)
		assert.Equal(t, http.StatusFound, resp.StatusCode, path)
		assert.Equal(t, "/home", resp.Header.Get("Location"), path)
	}

	resp, body = s.get(t, "/browse")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "browse for alice", body)

	resp, body = s.get(t, "/unknown")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "home for alice", body)
}

func TestRegister_Errors(t *testing.T) {
	s := setupTestServer(t)
	_, err := s.svc.Register("alice", "alice@example.com", testPassword)
	require.NoError(t, err)

	resp, body := s.postForm(t, "/register", "/register", url.Values{
		"username":         {"bob"},
		"email":            {"bob@example.com"},
		"password":         {testPassword},
		"password_confirm": {"something-else-entirely"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Passwords do not match")

	resp, body = s.postForm(t, "/register", "/register", url.Values{
		"username":         {"alice"},
		"email":            {"new@example.com"},
		"password":         {testPassword},
		"password_confirm": {testPassword},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, "already taken")
}

func TestLogin_InvalidCredentials(t *testing.T) {
	s := setupTestServer(t)
	_, err := s.svc.Register("alice", "alice@example.com", testPassword)
	require.NoError(t, err)

	resp, body := s.postForm(t, "/login", "/login", url.Values{
		"login":    {"alice"},
		"password": {"not-the-password"},
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "Invalid username or password")
	assert.Contains(t, body, `value="alice"`)

	resp, _ = s.get(t, "/home")
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestLogin_RateLimited(t *testing.T) {
	s := setupTestServer(t)

	for i := 0; i < 3; i++ {
		s.login(t, "ghost", "not-the-password")
	}

	resp := s.login(t, "ghost", "not-the-password")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}

func TestLogout(t *testing.T) {
	s := setupTestServer(t)
	_, err := s.svc.Register("alice", "alice@example.com", testPassword)
	require.NoError(t, err)
	require.Equal(t, "/home", s.login(t, "alice", testPassword).Header.Get("Location"))

	resp, _ := s.postForm(t, "/csrf-token", "/logout", url.Values{})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp, _ = s.get(t, "/browse")
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestLogout_GetDoesNotEndSession(t *testing.T) {
	s := setupTestServer(t)
	_, err := s.svc.Register("alice", "alice@example.com", testPassword)
	require.NoError(t, err)
	require.Equal(t, "/home", s.login(t, "alice", testPassword).Header.Get("Location"))

	// a cross-site <img src="/logout"> is just a navigation to an unknown path
	resp, body := s.get(t, "/logout")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "home for alice", body)

	resp, body = s.get(t, "/browse")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "browse for alice", body)
}

func TestActivityIsRecorded(t *testing.T) {
	s := setupTestServer(t)

	s.postForm(t, "/register", "/register", url.Values{
		"username":         {"alice"},
		"email":            {"alice@example.com"},
		"password":         {testPassword},
		"password_confirm": {testPassword},
	})
	s.login(t, "alice", "not-the-password")
	s.login(t, "alice", testPassword)
	s.postForm(t, "/csrf-token", "/logout", url.Values{})

	user, err := s.svc.Authenticate("alice", testPassword)
	require.NoError(t, err)

	assert.Equal(t, []recordedAuth{
		{user.ID, "register", true},
		{0, "login", false},
		{user.ID, "login", true},
		{user.ID, "logout", true},
	}, s.activity.recorded())
}

func TestCSRF_RejectsMissingToken(t *testing.T) {
	s := setupTestServer(t)

	resp, err := s.client.PostForm(s.URL+"/login", url.Values{
		"login":    {"alice"},
		"password": {testPassword},
	})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSecurityHeaders(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeadersMiddleware(), StrictTransportSecurityMiddleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	router.ServeHTTP(w, req)

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.True(t, strings.Contains(w.Header().Get("Content-Security-Policy"), "img-src 'self' data: http: https:"))
	assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))
}
