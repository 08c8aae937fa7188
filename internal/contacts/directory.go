// Package contacts resolves free-text recipient names to email addresses.
//
// The directory is a flat JSON file mapping display names to addresses:
//
//	{"Alice": "alice@co.com", "Bob Smith": "bob@co.com"}
//
// Matching is case-insensitive on the whole name; there is no partial or
// fuzzy matching. A missing entry and an unreadable directory both resolve
// to "not found" — the caller's only recourse is asking for another name.
package contacts

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Directory is a read-only, hot-reloadable name→address mapping.
type Directory struct {
	mu      sync.RWMutex
	entries map[string]string // keys lowercased
	path    string
	logger  *zap.Logger
}

// NewDirectory loads the directory from path. A missing or malformed file
// is logged and treated as empty rather than failing startup: lookups then
// resolve to not-found until a reload succeeds.
func NewDirectory(path string, logger *zap.Logger) *Directory {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Directory{
		entries: make(map[string]string),
		path:    path,
		logger:  logger,
	}
	if err := d.Reload(); err != nil {
		logger.Warn("contacts directory unavailable", zap.String("path", path), zap.Error(err))
	}
	return d
}

// Resolve returns the address for name, matching case-insensitively.
func (d *Directory) Resolve(name string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	addr, ok := d.entries[strings.ToLower(strings.TrimSpace(name))]
	return addr, ok
}

// Len returns the number of loaded entries.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// Reload re-reads the backing file. On error the previous entries are kept.
func (d *Directory) Reload() error {
	raw, err := os.ReadFile(d.path)
	if err != nil {
		return fmt.Errorf("failed to read contacts file: %w", err)
	}

	var parsed map[string]string
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("failed to parse contacts file %s: %w", d.path, err)
	}

	entries := make(map[string]string, len(parsed))
	for name, addr := range parsed {
		entries[strings.ToLower(strings.TrimSpace(name))] = addr
	}

	d.mu.Lock()
	d.entries = entries
	d.mu.Unlock()

	d.logger.Info("contacts directory loaded",
		zap.String("path", d.path),
		zap.Int("entries", len(entries)))
	return nil
}

// Watch reloads the directory whenever the backing file changes, until ctx
// is cancelled. Editors that replace the file (rename+create) are handled
// by re-adding the watch on the parent directory events.
func (d *Directory) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(d.path); err != nil {
		return fmt.Errorf("failed to watch %s: %w", d.path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := d.Reload(); err != nil {
				d.logger.Warn("contacts reload failed", zap.Error(err))
			}
			// Re-arm after rename-style replacement.
			if event.Op&fsnotify.Rename != 0 {
				_ = watcher.Add(d.path)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			d.logger.Warn("contacts watcher error", zap.Error(err))
		}
	}
}
