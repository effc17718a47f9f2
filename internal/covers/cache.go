// Package covers keeps a local file cache of book cover images so screens
// do not hot-link the upload host or the placeholder CDN on every view.
package covers

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// maxCoverBytes caps a single download.
const maxCoverBytes = 10 << 20

// ErrCoverTooLarge is returned for images above maxCoverBytes. Nothing is cached.
var ErrCoverTooLarge = errors.New("cover image too large")

// Cache handles local caching of book cover images.
type Cache struct {
	cacheDir   string
	httpClient *http.Client
}

// NewCache creates a new cover cache at the specified directory.
func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	return &Cache{
		cacheDir: cacheDir,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Cached returns the cached file for the book's current cover URL, if any.
func (c *Cache) Cached(bookID int, coverURL string) (string, bool) {
	if coverURL == "" {
		return "", false
	}
	cachePath := filepath.Join(c.cacheDir, c.coverFilename(bookID, coverURL))
	if _, err := os.Stat(cachePath); err != nil {
		return "", false
	}
	return cachePath, true
}

// GetCover returns the cached cover for a book, downloading it first when
// missing. A changed cover URL maps to a new file, so stale covers are never
// served. Returns an empty path for an empty URL.
func (c *Cache) GetCover(ctx context.Context, bookID int, coverURL string) (string, error) {
	if coverURL == "" {
		return "", nil
	}
	if cachePath, ok := c.Cached(bookID, coverURL); ok {
		return cachePath, nil
	}

	cachePath := filepath.Join(c.cacheDir, c.coverFilename(bookID, coverURL))
	if err := c.fetchAndCache(ctx, coverURL, cachePath); err != nil {
		return "", fmt.Errorf("cache cover for book %d: %w", bookID, err)
	}
	return cachePath, nil
}

// InvalidateCover removes every cached cover for a book.
func (c *Cache) InvalidateCover(bookID int) error {
	pattern := filepath.Join(c.cacheDir, fmt.Sprintf("cover_%d_*", bookID))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}

	for _, match := range matches {
		if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// coverFilename is unique per book and URL and keeps the URL's extension so
// the file server can pick a content type.
func (c *Cache) coverFilename(bookID int, coverURL string) string {
	hash := sha256.Sum256([]byte(coverURL))
	return fmt.Sprintf("cover_%d_%x%s", bookID, hash[:8], coverExt(coverURL))
}

func coverExt(coverURL string) string {
	u, err := url.Parse(coverURL)
	if err != nil {
		return ".jpg"
	}
	switch ext := strings.ToLower(path.Ext(u.Path)); ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return ext
	}
	return ".jpg"
}

func (c *Cache) fetchAndCache(ctx context.Context, coverURL, cachePath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "booklend/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if resp.ContentLength > maxCoverBytes {
		return fmt.Errorf("%w: %d bytes", ErrCoverTooLarge, resp.ContentLength)
	}

	// temp file in the same directory so the rename is atomic
	tmpFile, err := os.CreateTemp(c.cacheDir, "cover_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	// one byte past the limit tells a full image from a truncated one
	n, err := io.Copy(tmpFile, io.LimitReader(resp.Body, maxCoverBytes+1))
	if err != nil {
		return err
	}
	if n > maxCoverBytes {
		return fmt.Errorf("%w: more than %d bytes", ErrCoverTooLarge, maxCoverBytes)
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, cachePath)
}

// CacheDir returns the cache directory path.
func (c *Cache) CacheDir() string {
	return c.cacheDir
}
