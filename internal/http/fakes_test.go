package http

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/booklend/internal/auth"
	"github.com/mrlokans/booklend/internal/entities"
	"github.com/mrlokans/booklend/internal/shell"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func strPtr(s string) *string { return &s }

var testBooks = []entities.Book{
	{ID: 1, Title: "Dune", Author: "Frank Herbert", Genre: "Fiction", Summary: "Spice.", StockCount: 3},
	{ID: 2, Title: "The Hobbit", Author: "J.R.R. Tolkien", Genre: "Fantasy", StockCount: 0},
	{ID: 3, Title: "Emma", Author: "Jane Austen", Genre: "Romance", StockCount: 1, ImageFilename: strPtr("emma.jpg")},
	{ID: 4, Title: "Untitled Notes", Author: "Anonymous", StockCount: 2},
}

type fakeCatalog struct {
	books []entities.Book
}

func (f *fakeCatalog) FetchBooks(context.Context) []entities.Book {
	return append([]entities.Book{}, f.books...)
}

func (f *fakeCatalog) FetchBookByID(_ context.Context, id int) *entities.Book {
	for _, b := range f.books {
		if b.ID == id {
			b := b
			return &b
		}
	}
	return nil
}

func (f *fakeCatalog) ImageURL(book entities.Book) string {
	if book.HasUpload() {
		return "http://uploads.test/uploads/" + *book.ImageFilename
	}
	return "https://placeholder.test/" + book.Genre
}

type fakeLibrary struct {
	mu    sync.Mutex
	saved map[uint][]int
	err   error
}

func newFakeLibrary() *fakeLibrary {
	return &fakeLibrary{saved: map[uint][]int{}}
}

func (f *fakeLibrary) AddBook(userID uint, bookID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, id := range f.saved[userID] {
		if id == bookID {
			return nil
		}
	}
	f.saved[userID] = append([]int{bookID}, f.saved[userID]...)
	return nil
}

func (f *fakeLibrary) RemoveBook(userID uint, bookID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	kept := f.saved[userID][:0]
	for _, id := range f.saved[userID] {
		if id != bookID {
			kept = append(kept, id)
		}
	}
	f.saved[userID] = kept
	return nil
}

func (f *fakeLibrary) ListBookIDs(userID uint) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]int(nil), f.saved[userID]...), nil
}

func (f *fakeLibrary) sorted(userID uint) []int {
	ids, _ := f.ListBookIDs(userID)
	sort.Ints(ids)
	return ids
}

type fakeFlash struct {
	mu  sync.Mutex
	msg string
}

func (f *fakeFlash) SetFlash(_ *http.Request, msg string) {
	f.mu.Lock()
	f.msg = msg
	f.mu.Unlock()
}

func (f *fakeFlash) PopFlash(*http.Request) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg := f.msg
	f.msg = ""
	return msg
}

type loggedIn struct{}

func (loggedIn) IsAuthenticated() bool { return true }
func (loggedIn) Logout() error         { return nil }

// asUser stands in for the session middleware and the shell gate: the
// request is logged in as user 7 and the shell resolves its path.
func asUser(c *gin.Context) {
	c.Set(auth.ContextKeyUserID, uint(7))
	c.Set(auth.ContextKeyUsername, "alice")

	router := shell.NewMemoryRouter(c.Request.URL.Path)
	sh := shell.New(router, loggedIn{})
	stop := sh.Start()
	defer stop()
	c.Set(auth.ContextKeyShell, sh)
	c.Set(auth.ContextKeyRouter, router)
	c.Next()
}

type fakeCovers struct {
	path string
	err  error
	got  []string
}

func (f *fakeCovers) GetCover(_ context.Context, bookID int, url string) (string, error) {
	f.got = append(f.got, url)
	return f.path, f.err
}

type fakeQueue struct {
	enqueued []backlite.Task
	status   backlite.TaskStatus
	err      error
}

func (f *fakeQueue) Enqueue(_ context.Context, task backlite.Task) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.enqueued = append(f.enqueued, task)
	return "task-1", nil
}

func (f *fakeQueue) Status(context.Context, string) (backlite.TaskStatus, error) {
	return f.status, f.err
}

var errStorage = errors.New("disk on fire")

type libraryEvent struct {
	userID uint
	action string
	bookID int
	err    error
}

type fakeActivity struct {
	mu     sync.Mutex
	logged []libraryEvent
	events []entities.AuditEvent
	err    error

	gotUser   uint
	gotLimit  int
	gotOffset int
}

func (f *fakeActivity) LogLibrary(userID uint, action string, bookID int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logged = append(f.logged, libraryEvent{userID, action, bookID, err})
}

func (f *fakeActivity) GetEvents(userID uint, limit, offset int) ([]entities.AuditEvent, int64, error) {
	f.gotUser, f.gotLimit, f.gotOffset = userID, limit, offset
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.events, int64(len(f.events)), nil
}
