// Package linecache caches shaped line layouts keyed by line index so
// a repaint only re-shapes lines an edit actually touched.
package linecache

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mjansen/gapwrite/internal/engine/buffer"
	"github.com/mjansen/gapwrite/internal/render/dirty"
	"github.com/mjansen/gapwrite/internal/render/layout"
)

// Entry is a cached shaped line.
type Entry struct {
	// Line is the shaped layout.
	Line *layout.Line

	// ContentHash is the hash of the source text the layout was
	// shaped from.
	ContentHash uint64

	// Version is the cache version the entry was built at. A format
	// or theme change bumps the version and orphans older entries.
	Version uint64

	// LastAccess drives LRU eviction.
	LastAccess time.Time
}

// Config tunes the cache.
type Config struct {
	// MaxLines bounds the number of cached layouts.
	MaxLines int

	// EvictBatch is how many entries one eviction pass removes.
	EvictBatch int
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		MaxLines:   2000,
		EvictBatch: 50,
	}
}

// Cache stores shaped lines and coordinates invalidation with a dirty
// tracker.
type Cache struct {
	mu sync.RWMutex

	config  Config
	entries map[int]*Entry
	engine  *layout.Engine
	tracker *dirty.Tracker
	version uint64

	// maxWidth tracks the widest cached line, used for horizontal
	// scroll extents.
	maxWidth float64

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates a cache backed by the given layout engine.
func New(engine *layout.Engine, config Config) *Cache {
	if config.MaxLines <= 0 {
		config.MaxLines = 2000
	}
	if config.EvictBatch <= 0 {
		config.EvictBatch = 50
	}
	return &Cache{
		config:  config,
		entries: make(map[int]*Entry),
		engine:  engine,
	}
}

// SetDirtyTracker wires a tracker that invalidations notify.
func (c *Cache) SetDirtyTracker(tracker *dirty.Tracker) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracker = tracker
}

// Engine returns the layout engine the cache shapes with.
func (c *Cache) Engine() *layout.Engine {
	return c.engine
}

// Get returns the shaped layout for a line, shaping it on miss. A
// cached entry is reused only when the line text is unchanged and the
// cache version matches.
func (c *Cache) Get(snap *buffer.Snapshot, line int) *layout.Line {
	text := snap.LineText(line)
	hash := hashContent(text)

	c.mu.RLock()
	entry, ok := c.entries[line]
	version := c.version
	c.mu.RUnlock()

	if ok && entry.ContentHash == hash && entry.Version == version {
		c.hits.Add(1)
		c.mu.Lock()
		entry.LastAccess = time.Now()
		c.mu.Unlock()
		return entry.Line
	}

	c.misses.Add(1)
	shaped := c.engine.LayoutLine(snap, line)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[line] = &Entry{
		Line:        shaped,
		ContentHash: hash,
		Version:     c.version,
		LastAccess:  time.Now(),
	}
	if w := shaped.Width(); w > c.maxWidth {
		c.maxWidth = w
	}
	c.evictLocked()

	return shaped
}

// Invalidate drops the cached layout for a single line.
func (c *Cache) Invalidate(line int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, line)
	if c.tracker != nil {
		c.tracker.MarkLine(line)
	}
}

// InvalidateRange drops cached layouts for an inclusive line range.
func (c *Cache) InvalidateRange(startLine, endLine int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if startLine > endLine {
		startLine, endLine = endLine, startLine
	}
	for line := startLine; line <= endLine; line++ {
		delete(c.entries, line)
	}
	if c.tracker != nil {
		c.tracker.MarkLines(startLine, endLine)
	}
}

// InvalidateFrom drops cached layouts for all lines at or below the
// given line. Used when an edit changes the line count.
func (c *Cache) InvalidateFrom(line int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for l := range c.entries {
		if l >= line {
			delete(c.entries, l)
		}
	}
	if c.tracker != nil {
		c.tracker.MarkEdit(line, line, 1)
	}
}

// InvalidateAll clears every cached layout. Used on format changes,
// theme changes, and resize.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[int]*Entry)
	c.version++
	c.maxWidth = 0
	if c.tracker != nil {
		c.tracker.MarkFull()
	}
}

// ApplyEdit invalidates from an edit result: the touched lines, plus
// a renumbering shift when the line count changed.
func (c *Cache) ApplyEdit(res buffer.EditResult) {
	if res.LineDelta == 0 {
		c.InvalidateRange(res.StartLine, res.EndLine)
		return
	}

	c.mu.Lock()
	c.shiftLocked(res.EndLine+1, res.LineDelta)
	for line := res.StartLine; line <= res.EndLine; line++ {
		delete(c.entries, line)
	}
	if c.tracker != nil {
		c.tracker.MarkEdit(res.StartLine, res.EndLine, res.LineDelta)
	}
	c.mu.Unlock()
}

// shiftLocked renumbers cached entries when lines move.
func (c *Cache) shiftLocked(fromLine, delta int) {
	moved := make(map[int]*Entry)
	for line, entry := range c.entries {
		if line >= fromLine {
			delete(c.entries, line)
			newLine := line + delta
			if newLine >= 0 {
				entry.Line.LineIndex = newLine
				moved[newLine] = entry
			}
		}
	}
	for line, entry := range moved {
		c.entries[line] = entry
	}
}

// MaxWidth returns the widest layout seen since the last full
// invalidation.
func (c *Cache) MaxWidth() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxWidth
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictLocked removes the least recently used entries once the cache
// exceeds its bound.
func (c *Cache) evictLocked() {
	if len(c.entries) <= c.config.MaxLines {
		return
	}

	type info struct {
		line   int
		access time.Time
	}
	all := make([]info, 0, len(c.entries))
	for line, entry := range c.entries {
		all = append(all, info{line, entry.LastAccess})
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].access.Before(all[j].access)
	})

	n := len(c.entries) - c.config.MaxLines + c.config.EvictBatch
	if n > len(all) {
		n = len(all)
	}
	for i := 0; i < n; i++ {
		delete(c.entries, all[i].line)
	}
	c.evictions.Add(uint64(n))
}

// Stats describes cache effectiveness.
type Stats struct {
	Entries   int
	Hits      uint64
	Misses    uint64
	Evictions uint64
	HitRate   float64
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}

	c.mu.RLock()
	entries := len(c.entries)
	c.mu.RUnlock()

	return Stats{
		Entries:   entries,
		Hits:      hits,
		Misses:    misses,
		Evictions: c.evictions.Load(),
		HitRate:   rate,
	}
}

// hashContent computes an FNV-1a hash of the line text.
func hashContent(s string) uint64 {
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)
	h := uint64(offset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime64
	}
	return h
}
