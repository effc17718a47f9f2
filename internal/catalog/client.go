// Package catalog talks to the book API: it lists books, fetches single
// books and resolves cover image URLs.
//
// The Fetch* helpers never fail. Any transport error, non-2xx status or
// malformed body is logged, counted, and turned into an empty result, so a
// caller sees "no books" whether the catalog is empty or unreachable. Use
// ListBooks / GetBook when the error matters.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mrlokans/booklend/internal/entities"
)

// DefaultTimeout applies when the client is created with a zero timeout.
const DefaultTimeout = 10 * time.Second

// ErrNotFound is returned by GetBook when the API answers 404.
var ErrNotFound = errors.New("book not found")

// Client fetches books from the book API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the API rooted at baseURL
// (e.g. "http://localhost:8080/api").
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListBooks returns every book in the catalog.
func (c *Client) ListBooks(ctx context.Context) ([]entities.Book, error) {
	var books []entities.Book
	if err := c.getJSON(ctx, "/books", &books); err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// GetBook returns one book by its ID. A null body counts as not found.
func (c *Client) GetBook(ctx context.Context, id int) (*entities.Book, error) {
	var book *entities.Book
	if err := c.getJSON(ctx, "/books/"+strconv.Itoa(id), &book); err != nil {
		return nil, fmt.Errorf("get book %d: %w", id, err)
	}
	if book == nil {
		return nil, fmt.Errorf("get book %d: %w", id, ErrNotFound)
	}
	return book, nil
}

// FetchBooks returns every book, or an empty list if anything goes wrong.
func (c *Client) FetchBooks(ctx context.Context) []entities.Book {
	books, err := c.ListBooks(ctx)
	if err != nil {
		recordFailure(opFetchBooks)
		log.Printf("[CATALOG] Error fetching books: %v", err)
		return []entities.Book{}
	}
	if books == nil {
		return []entities.Book{}
	}
	return books
}

// FetchBookByID returns the book, or nil if anything goes wrong.
func (c *Client) FetchBookByID(ctx context.Context, id int) *entities.Book {
	book, err := c.GetBook(ctx, id)
	if err != nil {
		recordFailure(opFetchBook)
		log.Printf("[CATALOG] Error fetching book: %v", err)
		return nil
	}
	return book
}

// ImageURL resolves the cover image for a book against this client's API.
func (c *Client) ImageURL(book entities.Book) string {
	return ImageURL(c.baseURL, book)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
