// Package shell decides which screen the client shows for a path and
// enforces the authentication redirect rules.
//
// The decision itself is the pure function Resolve. Shell wraps it in the
// navigation loop: it subscribes to a Router, re-reads the AuthState on every
// path change, and navigates away from paths the current user may not see.
//
// # Redirect rules
//
//	logged out: /login, /register      -> stay
//	            anything else          -> /login
//	logged in:  /, /login, /register   -> /home
//	            /browse, /library, /categories -> matching page
//	            anything else          -> Home page, no redirect
//
// /home and /login are terminal targets, so a redirect settles in one hop.
// Shell still bounds re-entrant redirects so a misbehaving AuthState cannot
// spin the router forever.
//
// # Usage
//
//	router := shell.NewMemoryRouter(r.URL.Path)
//	sh := shell.New(router, authState)
//	stop := sh.Start()
//	defer stop()
//	if router.CurrentPath() != r.URL.Path {
//		// redirect the browser
//	}
package shell
