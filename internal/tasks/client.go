// Package tasks runs background jobs on a backlite queue stored in its own
// SQLite database next to the main one.
package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/booklend/internal/config"
)

// Client owns the queue database and the backlite dispatcher. Queues are
// fixed at construction.
type Client struct {
	backlite *backlite.Client
	db       *sql.DB
	workers  int
	queues   int

	mu      sync.Mutex
	started bool
}

// DatabasePath returns the queue database used for mainDBPath:
// ./booklend.db becomes ./booklend-tasks.db.
func DatabasePath(mainDBPath string) string {
	dir, base := filepath.Split(mainDBPath)
	ext := filepath.Ext(base)
	return filepath.Join(dir, strings.TrimSuffix(base, ext)+"-tasks"+ext)
}

func openQueueDB(path string, workers int) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// request handlers enqueue on top of the workers' connections
	db.SetMaxOpenConns(workers + 5)
	db.SetMaxIdleConns(workers + 2)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// NewClient opens the queue database for mainDBPath, installs the backlite
// schema and registers queues. Zero settings fall back to DefaultConfig.
func NewClient(mainDBPath string, settings config.Tasks, queues ...backlite.Queue) (*Client, error) {
	cfg := FromSettings(settings)

	db, err := openQueueDB(DatabasePath(mainDBPath), cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("open tasks database: %w", err)
	}

	bl, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          queueLogger{},
	})
	if err == nil {
		err = bl.Install()
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("set up task queue: %w", err)
	}

	for _, q := range queues {
		bl.Register(q)
	}
	return &Client{backlite: bl, db: db, workers: cfg.Workers, queues: len(queues)}, nil
}

// Start launches the workers and returns. Calling it twice is a no-op.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return
	}
	c.started = true

	log.Printf("[TASK] %d workers serving %d queues", c.workers, c.queues)
	c.backlite.Start(ctx)
}

// Stop drains running tasks until ctx expires and reports whether every
// worker finished.
func (c *Client) Stop(ctx context.Context) bool {
	c.mu.Lock()
	started := c.started
	c.mu.Unlock()
	if !started {
		return true
	}

	drained := c.backlite.Stop(ctx)
	if !drained {
		log.Println("[TASK] Shutdown deadline hit with tasks still running")
	}
	return drained
}

// Close releases the queue database. Call after Stop.
func (c *Client) Close() error {
	return c.db.Close()
}

// Enqueue saves a single task and returns its id.
func (c *Client) Enqueue(ctx context.Context, task backlite.Task) (string, error) {
	ids, err := c.backlite.Add(task).Ctx(ctx).Save()
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", task.Config().Name, err)
	}
	return ids[0], nil
}

// Status reports where a task is in its lifecycle.
func (c *Client) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return c.backlite.Status(ctx, taskID)
}

// queueLogger routes backlite's own messages to the standard logger.
type queueLogger struct{}

func (queueLogger) Info(message string, params ...any) {
	log.Printf("[TASK] "+message, params...)
}

func (queueLogger) Error(message string, params ...any) {
	log.Printf("[TASK ERROR] "+message, params...)
}
