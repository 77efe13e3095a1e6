package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/dshills/jaro/internal/fuzzy"
)

// DefaultDebounce is how long Watch waits for writes to settle before reloading.
const DefaultDebounce = 100 * time.Millisecond

// Stats describes the catalog state.
type Stats struct {
	Path      string
	Items     int
	Reloads   int64
	LoadedAt  time.Time
	LastError error
}

// Catalog holds the items read from a single file.
type Catalog struct {
	path     string
	logger   *zap.Logger
	debounce time.Duration

	mu       sync.RWMutex
	items    []fuzzy.Item
	reloads  int64
	loadedAt time.Time
	lastErr  error
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger for reload diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDebounce sets the delay between the last change event and the reload.
func WithDebounce(d time.Duration) Option {
	return func(c *Catalog) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// Open reads the catalog at path.
func Open(path string, opts ...Option) (*Catalog, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		path:     abs,
		logger:   zap.NewNop(),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("catalog")

	items, err := c.read()
	if err != nil {
		return nil, err
	}
	c.items = items
	c.loadedAt = time.Now()
	return c, nil
}

// New returns an in-memory catalog that is never reloaded.
func New(items []fuzzy.Item) *Catalog {
	return &Catalog{
		logger:   zap.NewNop(),
		debounce: DefaultDebounce,
		items:    slices.Clone(items),
		loadedAt: time.Now(),
	}
}

// Path returns the absolute path of the catalog file.
func (c *Catalog) Path() string {
	return c.path
}

// Items returns a snapshot of the current items.
func (c *Catalog) Items() []fuzzy.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stats returns the catalog statistics.
func (c *Catalog) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		Path:      c.path,
		Items:     len(c.items),
		Reloads:   c.reloads,
		LoadedAt:  c.loadedAt,
		LastError: c.lastErr,
	}
}

// Reload re-reads the file. On error the current items are kept.
func (c *Catalog) Reload() error {
	if c.path == "" {
		return nil
	}

	items, err := c.read()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = err
	if err != nil {
		return err
	}
	c.items = items
	c.reloads++
	c.loadedAt = time.Now()
	return nil
}

func (c *Catalog) read() ([]fuzzy.Item, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	items, err := Parse(c.path, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.path, err)
	}
	return items, nil
}

// Watch reloads the catalog whenever its file is written or replaced.
// The parent directory is watched so that editors which save by rename
// are picked up. Watch blocks until ctx is done and then returns nil.
func (c *Catalog) Watch(ctx context.Context) error {
	if c.path == "" {
		<-ctx.Done()
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(c.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(c.path), err)
	}
	c.logger.Info("watching catalog", zap.String("path", c.path))

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !c.relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(c.debounce)
			} else {
				timer.Reset(c.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			c.reloadAndLog()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("watch error", zap.Error(err))
		}
	}
}

// relevant reports whether ev may have changed the catalog contents.
func (c *Catalog) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != c.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}

func (c *Catalog) reloadAndLog() {
	start := time.Now()
	if err := c.Reload(); err != nil {
		c.logger.Warn("catalog reload failed, keeping previous items",
			zap.String("path", c.path), zap.Error(err))
		return
	}
	c.logger.Info("catalog reloaded",
		zap.String("path", c.path),
		zap.Int("items", c.Len()),
		zap.Duration("took", time.Since(start)))
}
