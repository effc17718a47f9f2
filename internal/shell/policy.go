package shell

// Page identifies a screen of the client.
type Page string

const (
	PageLogin      Page = "login"
	PageRegister   Page = "register"
	PageHome       Page = "home"
	PageBrowse     Page = "browse"
	PageLibrary    Page = "library"
	PageCategories Page = "categories"
)

// Paths the policy knows about.
const (
	PathRoot       = "/"
	PathLogin      = "/login"
	PathRegister   = "/register"
	PathHome       = "/home"
	PathBrowse     = "/browse"
	PathLibrary    = "/library"
	PathCategories = "/categories"
)

var protectedPages = map[string]Page{
	PathBrowse:     PageBrowse,
	PathLibrary:    PageLibrary,
	PathCategories: PageCategories,
}

// Decision is the outcome of evaluating a path for a login state.
type Decision struct {
	// Page is the screen to render for the path as it stands.
	Page Page
	// Redirect is the path to navigate to, or empty to stay.
	Redirect string
}

// ShouldRedirect reports whether the router must move to another path.
func (d Decision) ShouldRedirect() bool {
	return d.Redirect != ""
}

// IsPublic reports whether the page is reachable without a session.
func (p Page) IsPublic() bool {
	return p == PageLogin || p == PageRegister
}

// Resolve applies the redirect policy to a path.
func Resolve(path string, loggedIn bool) Decision {
	if !loggedIn {
		switch path {
		case PathLogin:
			return Decision{Page: PageLogin}
		case PathRegister:
			return Decision{Page: PageRegister}
		}
		return Decision{Page: PageLogin, Redirect: PathLogin}
	}

	switch path {
	case PathRoot, PathLogin, PathRegister:
		return Decision{Page: PageHome, Redirect: PathHome}
	}

	if page, ok := protectedPages[path]; ok {
		return Decision{Page: page}
	}
	return Decision{Page: PageHome}
}

// PathFor returns the canonical path of a page.
func PathFor(page Page) string {
	return "/" + string(page)
}
