package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/booklend/internal/web"
)

type pagesFixture struct {
	router   *gin.Engine
	catalog  *fakeCatalog
	library  *fakeLibrary
	flash    *fakeFlash
	activity *fakeActivity
}

func setupPages(t *testing.T, cachedCovers bool) *pagesFixture {
	t.Helper()
	f := &pagesFixture{
		catalog: &fakeCatalog{books: testBooks},
		library: newFakeLibrary(),
		flash:   &fakeFlash{},
	}

	pages := NewPagesController(f.catalog, f.library, f.flash, cachedCovers)
	library := NewLibraryController(f.catalog, f.library, f.flash)
	f.activity = &fakeActivity{}
	library.SetActivityLog(f.activity)

	f.router = gin.New()
	f.router.SetHTMLTemplate(web.MustTemplates())
	screens := f.router.Group("/", asUser)
	for _, p := range []string{"/home", "/browse", "/library", "/categories"} {
		screens.GET(p, pages.Show)
	}
	screens.POST("/library/:id", library.Add)
	screens.POST("/library/:id/remove", library.Remove)
	f.router.NoRoute(asUser, pages.Show)
	return f
}

func (f *pagesFixture) do(method, target string, form string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if form != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(form))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	f.router.ServeHTTP(w, req)
	return w
}

func TestPages_Home(t *testing.T) {
	f := setupPages(t, false)
	require.NoError(t, f.library.AddBook(7, 1))

	w := f.do(http.MethodGet, "/home", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Welcome back, alice")
	assert.Contains(t, body, "<strong>4</strong> titles")
	assert.Contains(t, body, "<strong>3</strong> available")
	assert.Contains(t, body, "<strong>4</strong> genres")
	assert.Contains(t, body, "<strong>1</strong> in your library")
}

func TestPages_UnknownPathRendersHome(t *testing.T) {
	f := setupPages(t, false)

	for _, path := range []string{"/unknown", "/books/1", "/library/1"} {
		w := f.do(http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), "Welcome back", path)
	}

	w := f.do(http.MethodPut, "/unknown", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPages_EmptyCatalog(t *testing.T) {
	f := setupPages(t, false)
	f.catalog.books = nil

	w := f.do(http.MethodGet, "/browse", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No books to show.")

	w = f.do(http.MethodGet, "/home", "")
	assert.Contains(t, w.Body.String(), "<strong>0</strong> titles")
}

func TestPages_Browse(t *testing.T) {
	f := setupPages(t, false)
	require.NoError(t, f.library.AddBook(7, 3))

	w := f.do(http.MethodGet, "/browse", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	for _, b := range testBooks {
		assert.Contains(t, body, b.Title)
	}
	assert.Contains(t, body, `src="http://uploads.test/uploads/emma.jpg"`)
	assert.Contains(t, body, `src="https://placeholder.test/Fantasy"`)
	assert.Contains(t, body, "Out of stock")
	assert.Contains(t, body, `action="/library/3/remove"`)
	assert.Contains(t, body, `action="/library/1"`)
	assert.Contains(t, body, "Uncategorized")
}

func TestPages_BrowseSearch(t *testing.T) {
	f := setupPages(t, false)

	w := f.do(http.MethodGet, "/browse?q=tolkien", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	assert.Contains(t, body, "The Hobbit")
	assert.NotContains(t, body, "Dune")
	assert.Contains(t, body, "1 of 4 titles match")
}

func TestPages_CachedCoverURLs(t *testing.T) {
	f := setupPages(t, true)

	w := f.do(http.MethodGet, "/browse", "")
	assert.Contains(t, w.Body.String(), `src="/covers/3"`)
}

func TestPages_Library(t *testing.T) {
	f := setupPages(t, false)
	require.NoError(t, f.library.AddBook(7, 2))
	require.NoError(t, f.library.AddBook(7, 42))

	w := f.do(http.MethodGet, "/library", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	assert.Contains(t, body, "The Hobbit")
	assert.NotContains(t, body, "Dune")
	assert.Contains(t, body, "1 saved book is currently unavailable")
}

func TestPages_LibraryEmpty(t *testing.T) {
	f := setupPages(t, false)

	w := f.do(http.MethodGet, "/library", "")
	assert.Contains(t, w.Body.String(), "Your library is empty")
}

func TestPages_LibraryStorageErrorDegrades(t *testing.T) {
	f := setupPages(t, false)
	f.library.err = errStorage

	w := f.do(http.MethodGet, "/browse", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Dune")
}

func TestPages_Categories(t *testing.T) {
	f := setupPages(t, false)

	w := f.do(http.MethodGet, "/categories", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	fantasy := strings.Index(body, "Fantasy")
	fiction := strings.Index(body, "Fiction")
	require.True(t, fantasy >= 0 && fiction >= 0)
	assert.Less(t, fantasy, fiction, "genres are sorted")
	assert.NotContains(t, body, "The Hobbit", "no books until a genre is selected")

	w = f.do(http.MethodGet, "/categories?genre=Fantasy", "")
	body = w.Body.String()
	assert.Contains(t, body, "The Hobbit")
	assert.NotContains(t, body, "Dune")
}

func TestPages_ShowsFlash(t *testing.T) {
	f := setupPages(t, false)
	f.flash.SetFlash(nil, "Added to your library.")

	w := f.do(http.MethodGet, "/home", "")
	assert.Contains(t, w.Body.String(), "Added to your library.")

	w = f.do(http.MethodGet, "/home", "")
	assert.NotContains(t, w.Body.String(), "Added to your library.")
}

func TestMatchesQuery(t *testing.T) {
	book := testBooks[0]
	assert.True(t, matchesQuery(book, "dune"))
	assert.True(t, matchesQuery(book, "HERBERT"))
	assert.False(t, matchesQuery(book, "austen"))
}
