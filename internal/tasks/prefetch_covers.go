package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/samber/lo"

	"github.com/mrlokans/booklend/internal/entities"
)

// BookSource lists catalog books and resolves their cover URLs.
type BookSource interface {
	FetchBooks(ctx context.Context) []entities.Book
	ImageURL(book entities.Book) string
}

// CoverStore downloads covers into a local cache.
type CoverStore interface {
	GetCover(ctx context.Context, bookID int, coverURL string) (string, error)
}

// PrefetchCoversTask warms the cover cache. An empty BookIDs means the
// whole catalog.
type PrefetchCoversTask struct {
	BookIDs []int `json:"book_ids,omitempty"`
}

// Config returns the queue configuration for cover prefetch tasks.
func (t PrefetchCoversTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "prefetch_covers",
		MaxAttempts: 2,
		Backoff:     5 * time.Minute,
		Timeout:     15 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// PrefetchCoversProcessor creates a processor function for PrefetchCoversTask.
// The task fails only when every download failed, so one broken upload
// does not trigger a retry of the whole catalog.
func PrefetchCoversProcessor(source BookSource, store CoverStore) backlite.QueueProcessor[PrefetchCoversTask] {
	return func(ctx context.Context, task PrefetchCoversTask) error {
		if source == nil || store == nil {
			return errors.New("cover prefetch not configured")
		}

		books := source.FetchBooks(ctx)
		if len(task.BookIDs) > 0 {
			books = lo.Filter(books, func(b entities.Book, _ int) bool {
				return lo.Contains(task.BookIDs, b.ID)
			})
		}
		if len(books) == 0 {
			log.Printf("[TASK] Cover prefetch: no books to process")
			return nil
		}

		var failed int
		var lastErr error
		for _, book := range books {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := store.GetCover(ctx, book.ID, source.ImageURL(book)); err != nil {
				failed++
				lastErr = err
			}
		}

		log.Printf("[TASK] Cover prefetch: cached %d of %d covers", len(books)-failed, len(books))
		if failed == len(books) {
			return fmt.Errorf("prefetch covers: all %d downloads failed: %w", failed, lastErr)
		}
		return nil
	}
}

// NewPrefetchCoversQueue creates a backlite queue for cover prefetch tasks.
func NewPrefetchCoversQueue(source BookSource, store CoverStore) backlite.Queue {
	return backlite.NewQueue(PrefetchCoversProcessor(source, store))
}
