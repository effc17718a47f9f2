package http

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/mrlokans/booklend/internal/auth"
	"github.com/mrlokans/booklend/internal/entities"
	"github.com/mrlokans/booklend/internal/shell"
	"github.com/mrlokans/booklend/internal/web"
)

const uncategorized = "Uncategorized"

// Flasher carries one-shot messages between a POST and the next screen.
type Flasher interface {
	SetFlash(r *http.Request, msg string)
	PopFlash(r *http.Request) string
}

// PagesController renders the protected screens chosen by the shell.
type PagesController struct {
	catalog      Catalog
	library      LibraryStore
	flash        Flasher
	cachedCovers bool
}

// NewPagesController creates the screen controller. With cachedCovers set
// cover images are pointed at /covers/:id instead of their origin.
func NewPagesController(catalog Catalog, library LibraryStore, flash Flasher, cachedCovers bool) *PagesController {
	return &PagesController{
		catalog:      catalog,
		library:      library,
		flash:        flash,
		cachedCovers: cachedCovers,
	}
}

// Show renders the page the shell resolved for the request path. It also
// serves unknown paths, which render Home for a logged in user.
func (pc *PagesController) Show(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		respondNotFound(c, "page")
		return
	}

	sh := auth.GetShell(c)
	if sh == nil {
		respondInternalError(c, errNoShell, "show page")
		return
	}

	switch sh.Page() {
	case shell.PageBrowse:
		pc.browse(c)
	case shell.PageLibrary:
		pc.libraryPage(c)
	case shell.PageCategories:
		pc.categories(c)
	default:
		pc.home(c)
	}
}

func (pc *PagesController) header(c *gin.Context, page shell.Page, title string) web.HeaderData {
	return web.HeaderData{
		Title:     title,
		Page:      string(page),
		LoggedIn:  true,
		Username:  auth.GetUsername(c),
		CSRFToken: auth.GetCSRFToken(c),
		Flash:     pc.flash.PopFlash(c.Request),
	}
}

// savedIDs returns the user's library as a set. Storage errors degrade to
// an empty library so the catalog screens still render.
func (pc *PagesController) savedIDs(c *gin.Context) ([]int, map[int]bool) {
	ids, err := pc.library.ListBookIDs(auth.GetUserID(c))
	if err != nil {
		logLibraryError(c, err)
		return nil, map[int]bool{}
	}
	return ids, lo.SliceToMap(ids, func(id int) (int, bool) { return id, true })
}

func (pc *PagesController) cards(books []entities.Book, saved map[int]bool) []web.BookCard {
	return lo.Map(books, func(b entities.Book, _ int) web.BookCard {
		return web.BookCard{
			Book:      b,
			CoverURL:  pc.coverURL(b),
			InLibrary: saved[b.ID],
		}
	})
}

func (pc *PagesController) coverURL(b entities.Book) string {
	if pc.cachedCovers {
		return "/covers/" + strconv.Itoa(b.ID)
	}
	return pc.catalog.ImageURL(b)
}

func genreOf(b entities.Book) string {
	if g := strings.TrimSpace(b.Genre); g != "" {
		return g
	}
	return uncategorized
}

func (pc *PagesController) home(c *gin.Context) {
	books := pc.catalog.FetchBooks(c.Request.Context())
	ids, _ := pc.savedIDs(c)

	c.HTML(http.StatusOK, string(shell.PageHome), web.Page[web.HomeContent]{
		Header: pc.header(c, shell.PageHome, "Home"),
		Content: web.HomeContent{
			TotalTitles:  len(books),
			Available:    lo.CountBy(books, entities.Book.Available),
			GenreCount:   len(lo.Uniq(lo.Map(books, func(b entities.Book, _ int) string { return genreOf(b) }))),
			LibraryCount: len(ids),
		},
	})
}

// matchesQuery does a case-insensitive substring match on title and author.
func matchesQuery(b entities.Book, q string) bool {
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(b.Title), q) || strings.Contains(strings.ToLower(b.Author), q)
}

func (pc *PagesController) browse(c *gin.Context) {
	books := pc.catalog.FetchBooks(c.Request.Context())
	_, saved := pc.savedIDs(c)

	query := strings.TrimSpace(c.Query("q"))
	shown := books
	if query != "" {
		shown = lo.Filter(books, func(b entities.Book, _ int) bool { return matchesQuery(b, query) })
	}

	c.HTML(http.StatusOK, string(shell.PageBrowse), web.Page[web.BrowseContent]{
		Header: pc.header(c, shell.PageBrowse, "Browse"),
		Content: web.BrowseContent{
			Query: query,
			Total: len(books),
			Books: pc.cards(shown, saved),
		},
	})
}

func (pc *PagesController) libraryPage(c *gin.Context) {
	ids, saved := pc.savedIDs(c)

	books := make([]entities.Book, 0, len(ids))
	for _, id := range ids {
		if book := pc.catalog.FetchBookByID(c.Request.Context(), id); book != nil {
			books = append(books, *book)
		}
	}

	c.HTML(http.StatusOK, string(shell.PageLibrary), web.Page[web.LibraryContent]{
		Header: pc.header(c, shell.PageLibrary, "My library"),
		Content: web.LibraryContent{
			Books:   pc.cards(books, saved),
			Missing: len(ids) - len(books),
		},
	})
}

func (pc *PagesController) categories(c *gin.Context) {
	books := pc.catalog.FetchBooks(c.Request.Context())
	_, saved := pc.savedIDs(c)

	byGenre := lo.GroupBy(books, genreOf)
	names := lo.Keys(byGenre)
	sort.Strings(names)

	groups := lo.Map(names, func(name string, _ int) web.GenreGroup {
		return web.GenreGroup{Name: name, Count: len(byGenre[name])}
	})

	selected := strings.TrimSpace(c.Query("genre"))
	content := web.CategoriesContent{Selected: selected, Genres: groups}
	if selected != "" {
		content.Books = pc.cards(byGenre[selected], saved)
	}

	c.HTML(http.StatusOK, string(shell.PageCategories), web.Page[web.CategoriesContent]{
		Header:  pc.header(c, shell.PageCategories, "Categories"),
		Content: content,
	})
}
