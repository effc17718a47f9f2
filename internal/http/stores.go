package http

import (
	"context"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/booklend/internal/entities"
)

// Each controller depends on the narrow interface it needs; the real
// implementations are catalog.Client, library.Repository, covers.Cache and
// tasks.Client and audit.Service.

// Catalog reads books from the lending API. The Fetch helpers never fail;
// an unreachable API looks like an empty catalog.
type Catalog interface {
	FetchBooks(ctx context.Context) []entities.Book
	FetchBookByID(ctx context.Context, id int) *entities.Book
	ImageURL(book entities.Book) string
}

// LibraryStore keeps the per-user list of saved book ids.
type LibraryStore interface {
	AddBook(userID uint, bookID int) error
	RemoveBook(userID uint, bookID int) error
	ListBookIDs(userID uint) ([]int, error)
}

// CoverCache serves cover images from local disk.
type CoverCache interface {
	GetCover(ctx context.Context, bookID int, coverURL string) (string, error)
}

// TaskQueue enqueues background tasks and reports their status.
type TaskQueue interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// ActivityLog records library changes and lists a user's account activity.
type ActivityLog interface {
	LogLibrary(userID uint, action string, bookID int, err error)
	GetEvents(userID uint, limit, offset int) ([]entities.AuditEvent, int64, error)
}
