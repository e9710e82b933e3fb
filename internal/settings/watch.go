package settings

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watchOps are the events that can leave a store file with new content.
const watchOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename

// Watch reloads items.json and settings.json when they are edited outside
// the application and notifies subscribers. Content the store wrote itself
// is recognised by hash and ignored. Watch blocks until ctx ends.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: atomic renames replace the file inode, which
	// would silently drop a per-file watch.
	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}
	slog.Debug("[DEBUG-SETTINGS] watching data dir", "dir", s.dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&watchOps == 0 {
				continue
			}
			s.handleFileEvent(filepath.Base(event.Name))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("[WARN-SETTINGS] file watcher error", "error", err)
		}
	}
}

// handleFileEvent reloads name when its content differs from what the store
// last read or wrote.
func (s *Store) handleFileEvent(name string) {
	switch name {
	case ItemsFileName:
		s.reloadItems()
	case SettingsFileName:
		s.reloadSettings()
	}
}

func (s *Store) reloadItems() {
	raw, err := s.readFile(ItemsFileName)
	if err != nil || raw == nil {
		return
	}
	hash := sha256.Sum256(raw)

	s.mu.Lock()
	if hash == s.itemsHash {
		s.mu.Unlock()
		return
	}
	list, err := decodeItems(raw)
	if err != nil {
		s.mu.Unlock()
		slog.Warn("[WARN-SETTINGS] ignoring unreadable items edit", "error", err)
		return
	}
	s.items = list
	s.itemsHash = hash
	s.mu.Unlock()

	slog.Info("[INFO-SETTINGS] items reloaded after external edit")
	s.notify(Change{Items: true, External: true})
}

func (s *Store) reloadSettings() {
	raw, err := s.readFile(SettingsFileName)
	if err != nil || raw == nil {
		return
	}
	hash := sha256.Sum256(raw)

	s.mu.Lock()
	if hash == s.settingsHash {
		s.mu.Unlock()
		return
	}
	parsed, err := decodeSettings(raw)
	if err != nil {
		// Likely a half-written save from an editor; the next event retries.
		s.mu.Unlock()
		slog.Warn("[WARN-SETTINGS] ignoring unreadable settings edit", "error", err)
		return
	}
	before := s.settings.Clone()
	s.settings = parsed
	s.settingsHash = hash
	s.mu.Unlock()

	slog.Info("[INFO-SETTINGS] settings reloaded after external edit")
	s.notify(settingsChange(before, parsed, true))
}
