package loader

import (
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Cache loads snippet directories once and serves the merged Set
// until a watched file changes. The zero value is not usable; use
// NewCache.
type Cache struct {
	mu     sync.Mutex
	dirs   []string
	set    *Set
	stale  bool
	closed bool

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewCache returns a cache over the given snippet directories,
// earliest to latest; later directories win on duplicate prefixes.
// When watch is true, file changes under existing directories mark
// the cache stale and the next Snippets call reloads.
func NewCache(dirs []string, watch bool) (*Cache, error) {
	c := &Cache{dirs: dirs, stale: true}
	if !watch {
		return c, nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	c.watcher = w
	c.done = make(chan struct{})
	for _, dir := range dirs {
		// Directories may not exist yet; watch what is there.
		_ = w.Add(dir)
	}
	go c.watchLoop()
	return c, nil
}

func (c *Cache) watchLoop() {
	for {
		select {
		case _, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			c.Invalidate()
		case _, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
		case <-c.done:
			return
		}
	}
}

// Invalidate forces the next Snippets call to reload from disk.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.stale = true
	c.mu.Unlock()
}

// Snippets returns the merged snippet set, reloading if stale.
func (c *Cache) Snippets() (*Set, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrCacheClosed
	}
	if !c.stale {
		return c.set, nil
	}
	set := NewSet()
	for _, dir := range c.dirs {
		snippets, err := LoadDir(dir)
		if err != nil {
			return nil, err
		}
		set.Add(snippets...)
	}
	c.set = set
	c.stale = false
	return c.set, nil
}

// Close stops the watcher. The cache refuses further queries.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.watcher != nil {
		close(c.done)
		return c.watcher.Close()
	}
	return nil
}
