package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/booklend/internal/audit"
	"github.com/mrlokans/booklend/internal/auth"
	"github.com/mrlokans/booklend/internal/shell"
)

var errNoShell = errors.New("screen route is not behind the shell gate")

func logLibraryError(c *gin.Context, err error) {
	log.Printf("[LIBRARY] user %d [%s]: %v", auth.GetUserID(c), requestID(c), err)
}

// LibraryController handles saving books to and removing them from the
// user's library.
type LibraryController struct {
	catalog Catalog
	library LibraryStore
	flash   Flasher

	activity ActivityLog
}

// NewLibraryController creates a new LibraryController.
func NewLibraryController(catalog Catalog, library LibraryStore, flash Flasher) *LibraryController {
	return &LibraryController{
		catalog: catalog,
		library: library,
		flash:   flash,
	}
}

// SetActivityLog records library changes in the account activity trail.
func (lc *LibraryController) SetActivityLog(activity ActivityLog) {
	lc.activity = activity
}

func (lc *LibraryController) record(c *gin.Context, action string, bookID int, err error) {
	if lc.activity != nil {
		lc.activity.LogLibrary(auth.GetUserID(c), action, bookID, err)
	}
}

// Add saves a catalog book to the library.
// POST /library/:id
func (lc *LibraryController) Add(c *gin.Context) {
	bookID, ok := parseBookID(c)
	if !ok {
		return
	}

	book := lc.catalog.FetchBookByID(c.Request.Context(), bookID)
	if book == nil {
		respondNotFound(c, "book")
		return
	}

	err := lc.library.AddBook(auth.GetUserID(c), bookID)
	lc.record(c, audit.ActionLibraryAdd, bookID, err)
	if err != nil {
		logLibraryError(c, err)
		lc.flash.SetFlash(c.Request, "Could not update your library. Please try again.")
	} else {
		lc.flash.SetFlash(c.Request, "Added \""+book.Title+"\" to your library.")
	}
	c.Redirect(http.StatusFound, safeReturnPath(c.PostForm("return"), shell.PathBrowse))
}

// Remove drops a book from the library. Books gone from the catalog can
// still be removed.
// POST /library/:id/remove
func (lc *LibraryController) Remove(c *gin.Context) {
	bookID, ok := parseBookID(c)
	if !ok {
		return
	}

	err := lc.library.RemoveBook(auth.GetUserID(c), bookID)
	lc.record(c, audit.ActionLibraryRemove, bookID, err)
	if err != nil {
		logLibraryError(c, err)
		lc.flash.SetFlash(c.Request, "Could not update your library. Please try again.")
	} else {
		lc.flash.SetFlash(c.Request, "Removed from your library.")
	}
	c.Redirect(http.StatusFound, safeReturnPath(c.PostForm("return"), shell.PathLibrary))
}

// LibraryResponse lists the saved book ids of the current user.
type LibraryResponse struct {
	BookIDs []int `json:"book_ids"`
}

// List returns the user's saved ids as JSON.
// GET /api/library
func (lc *LibraryController) List(c *gin.Context) {
	ids, err := lc.library.ListBookIDs(auth.GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list library")
		return
	}
	if ids == nil {
		ids = []int{}
	}
	c.JSON(http.StatusOK, LibraryResponse{BookIDs: ids})
}

// RequireUser rejects API calls that carry no logged in session.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth.GetUserID(c) == 0 {
			respondUnauthorized(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
