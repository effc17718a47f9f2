package shell

import (
	"log"
	"strings"
)

// maxRedirectHops bounds nested redirects triggered from inside a navigation
// callback. Legitimate chains need a single hop.
const maxRedirectHops = 2

// AuthState exposes the externally owned login state.
type AuthState interface {
	IsAuthenticated() bool
	Logout() error
}

// Shell tracks the current path and login state and keeps the router on a
// path the user is allowed to see.
//
// A Shell is driven by one navigation context at a time and is not safe for
// concurrent use.
type Shell struct {
	router Router
	auth   AuthState

	path        string
	loggedIn    bool
	hops        int
	unsubscribe func()
}

// New creates a shell seeded from the router's current path and the auth state.
func New(router Router, auth AuthState) *Shell {
	return &Shell{
		router:   router,
		auth:     auth,
		path:     router.CurrentPath(),
		loggedIn: auth.IsAuthenticated(),
	}
}

// Start subscribes to path changes and applies the redirect policy to the
// current path. The returned function stops the subscription.
func (s *Shell) Start() (stop func()) {
	if s.unsubscribe == nil {
		s.unsubscribe = s.router.Subscribe(s.onNavigate)
	}
	s.enforce()
	return s.Stop
}

// Stop removes the router subscription. It is safe to call more than once.
func (s *Shell) Stop() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// Path is the last path the shell observed.
func (s *Shell) Path() string {
	return s.path
}

// LoggedIn is the login state as of the last navigation.
func (s *Shell) LoggedIn() bool {
	return s.loggedIn
}

// Page returns the screen to render for the current path and login state.
func (s *Shell) Page() Page {
	return Resolve(s.path, s.loggedIn).Page
}

// LoginSucceeded marks the user as logged in and moves to the home screen.
func (s *Shell) LoginSucceeded() {
	s.loggedIn = true
	s.router.Navigate(PathHome)
}

// Logout ends the session and returns to the login screen. The navigation
// happens even when the auth state fails to log out.
func (s *Shell) Logout() error {
	err := s.auth.Logout()
	s.loggedIn = false
	s.router.Navigate(PathLogin)
	return err
}

// RegisterSucceeded sends a freshly registered user to the login screen.
func (s *Shell) RegisterSucceeded() {
	s.router.Navigate(PathLogin)
}

func (s *Shell) SwitchToRegister() {
	s.router.Navigate(PathRegister)
}

func (s *Shell) SwitchToLogin() {
	s.router.Navigate(PathLogin)
}

// NavigateTo moves to the named page, e.g. "browse" -> "/browse".
func (s *Shell) NavigateTo(page string) {
	s.router.Navigate("/" + strings.TrimPrefix(page, "/"))
}

// onNavigate re-reads the login state on every path change and re-runs the
// policy for the new path.
func (s *Shell) onNavigate(path string) {
	s.path = path
	s.loggedIn = s.auth.IsAuthenticated()
	s.enforce()
}

func (s *Shell) enforce() {
	decision := Resolve(s.path, s.loggedIn)
	if !decision.ShouldRedirect() {
		return
	}
	if s.hops >= maxRedirectHops {
		log.Printf("[SHELL] dropping redirect %s -> %s: more than %d nested redirects", s.path, decision.Redirect, maxRedirectHops)
		return
	}

	s.hops++
	defer func() { s.hops-- }()
	s.router.Navigate(decision.Redirect)
}
