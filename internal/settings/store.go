package settings

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/samber/lo"

	"quicklaunch/internal/fileutil"
	"quicklaunch/internal/hotkeys"
	"quicklaunch/internal/items"
)

const (
	ItemsFileName    = "items.json"
	SettingsFileName = "settings.json"

	maxStoreFileBytes int64 = 4 << 20
)

var (
	// ErrItemNotFound is returned for an unknown item id.
	ErrItemNotFound = errors.New("item not found")
	// ErrInvalidOrder is returned when ReorderItems is not given a
	// permutation of the current ids.
	ErrInvalidOrder = errors.New("reorder ids must be a permutation of the current items")
	// ErrDuplicateItem is returned when an item id is already present.
	ErrDuplicateItem = errors.New("item id already exists")
)

// Store owns items.json and settings.json. It is safe for concurrent use.
// Observers registered with Subscribe run after the mutation has been
// persisted and the store lock released.
type Store struct {
	dir string

	mu           sync.Mutex
	items        []items.LauncherItem
	settings     Settings
	itemsHash    [sha256.Size]byte
	settingsHash [sha256.Size]byte

	subMu   sync.Mutex
	subs    []subscriber
	nextSub uint64
}

type subscriber struct {
	id uint64
	fn func(Change)
}

// Open loads the store from dir, creating the directory if needed. Missing
// files mean defaults. Corrupt files are logged and replaced by defaults in
// memory; they are not overwritten until the next mutation.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("settings dir required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create settings dir: %w", err)
	}
	s := &Store{dir: dir, settings: Defaults()}

	if raw, err := s.readFile(ItemsFileName); err != nil {
		slog.Warn("[WARN-SETTINGS] failed to read items, starting empty", "error", err)
	} else if raw != nil {
		list, err := decodeItems(raw)
		if err != nil {
			slog.Warn("[WARN-SETTINGS] corrupt items file, starting empty",
				"path", s.path(ItemsFileName), "error", err)
		}
		s.items = list
		s.itemsHash = sha256.Sum256(raw)
	}

	if raw, err := s.readFile(SettingsFileName); err != nil {
		slog.Warn("[WARN-SETTINGS] failed to read settings, using defaults", "error", err)
	} else if raw != nil {
		if parsed, err := decodeSettings(raw); err != nil {
			slog.Warn("[WARN-SETTINGS] corrupt settings file, using defaults",
				"path", s.path(SettingsFileName), "error", err)
		} else {
			s.settings = parsed
		}
		s.settingsHash = sha256.Sum256(raw)
	}
	return s, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(name string) string { return filepath.Join(s.dir, name) }

// readFile returns nil, nil for a missing file.
func (s *Store) readFile(name string) ([]byte, error) {
	raw, err := fileutil.ReadLimited(s.path(name), maxStoreFileBytes)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return raw, err
}

// decodeItems parses items.json entry by entry so one bad item does not
// discard the rest. Invalid and duplicate entries are dropped with a warning.
func decodeItems(raw []byte) ([]items.LauncherItem, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	out := make([]items.LauncherItem, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for i, entry := range entries {
		var it items.LauncherItem
		if err := json.Unmarshal(entry, &it); err != nil {
			slog.Warn("[WARN-SETTINGS] skipping unreadable item", "index", i, "error", err)
			continue
		}
		if err := it.Validate(); err != nil || it.ID == "" {
			slog.Warn("[WARN-SETTINGS] skipping invalid item", "index", i, "id", it.ID, "error", err)
			continue
		}
		if _, dup := seen[it.ID]; dup {
			slog.Warn("[WARN-SETTINGS] skipping duplicate item id", "index", i, "id", it.ID)
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out, nil
}

func decodeSettings(raw []byte) (Settings, error) {
	parsed := Defaults()
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Defaults(), err
	}
	parsed.normalize()
	return parsed, nil
}

// Items returns a copy of the ordered item list.
func (s *Store) Items() []items.LauncherItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := items.CloneAll(s.items)
	if out == nil {
		out = []items.LauncherItem{}
	}
	return out
}

// Item returns a copy of the item with id.
func (s *Store) Item(id string) (items.LauncherItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := items.IndexOf(s.items, id)
	if idx < 0 {
		return items.LauncherItem{}, false
	}
	return s.items[idx].Clone(), true
}

// AddItem appends item.
func (s *Store) AddItem(item items.LauncherItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if item.ID == "" {
		return errors.New("item id required")
	}
	return s.mutateItems(func(list []items.LauncherItem) ([]items.LauncherItem, error) {
		if items.IndexOf(list, item.ID) >= 0 {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateItem, item.ID)
		}
		return append(list, item.Clone()), nil
	})
}

// UpdateItem applies fn to the item with id. The ID cannot be changed.
func (s *Store) UpdateItem(id string, fn func(*items.LauncherItem)) (items.LauncherItem, error) {
	var updated items.LauncherItem
	err := s.mutateItems(func(list []items.LauncherItem) ([]items.LauncherItem, error) {
		idx := items.IndexOf(list, id)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
		}
		candidate := list[idx].Clone()
		fn(&candidate)
		candidate.ID = id
		if err := candidate.Validate(); err != nil {
			return nil, err
		}
		list[idx] = candidate
		updated = candidate.Clone()
		return list, nil
	})
	return updated, err
}

// RemoveItem deletes the item with id.
func (s *Store) RemoveItem(id string) error {
	return s.mutateItems(func(list []items.LauncherItem) ([]items.LauncherItem, error) {
		idx := items.IndexOf(list, id)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
		}
		return append(list[:idx], list[idx+1:]...), nil
	})
}

// ReorderItems rearranges items to match ids, which must name every current
// item exactly once.
func (s *Store) ReorderItems(ids []string) error {
	return s.mutateItems(func(list []items.LauncherItem) ([]items.LauncherItem, error) {
		if len(ids) != len(list) || len(lo.Uniq(ids)) != len(ids) {
			return nil, ErrInvalidOrder
		}
		byID := lo.KeyBy(list, func(it items.LauncherItem) string { return it.ID })
		out := make([]items.LauncherItem, 0, len(ids))
		for _, id := range ids {
			it, ok := byID[id]
			if !ok {
				return nil, fmt.Errorf("%w: unknown id %s", ErrInvalidOrder, id)
			}
			out = append(out, it)
		}
		return out, nil
	})
}

// ClearItems removes every item.
func (s *Store) ClearItems() error {
	return s.mutateItems(func([]items.LauncherItem) ([]items.LauncherItem, error) {
		return []items.LauncherItem{}, nil
	})
}

// TouchItem records that the item with id was opened at now.
func (s *Store) TouchItem(id string, now time.Time) error {
	_, err := s.UpdateItem(id, func(it *items.LauncherItem) { it.Touch(now) })
	return err
}

// mutateItems runs fn on a private copy of the list and persists the result.
// The in-memory list only changes when the write succeeds.
func (s *Store) mutateItems(fn func([]items.LauncherItem) ([]items.LauncherItem, error)) error {
	s.mu.Lock()
	next, err := fn(items.CloneAll(s.items))
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if next == nil {
		next = []items.LauncherItem{}
	}
	raw, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("encode items: %w", err)
	}
	if err := fileutil.WriteAtomic(s.path(ItemsFileName), raw, 0o600); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("save items: %w", err)
	}
	s.items = next
	s.itemsHash = sha256.Sum256(raw)
	s.mu.Unlock()

	s.notify(Change{Items: true})
	return nil
}

// Settings returns a copy of the current settings.
func (s *Store) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.Clone()
}

// UpdateSettings applies fn to a copy of the settings, validates and persists
// it. An unparsable hotkey shortcut is rejected.
func (s *Store) UpdateSettings(fn func(*Settings)) (Settings, error) {
	s.mu.Lock()
	before := s.settings.Clone()
	next := s.settings.Clone()
	fn(&next)
	if shortcut := next.Hotkey.Shortcut; shortcut != "" {
		if _, err := hotkeys.ParseBinding(shortcut); err != nil {
			s.mu.Unlock()
			return before, fmt.Errorf("invalid hotkey shortcut %q: %w", shortcut, err)
		}
	}
	next.normalize()

	raw, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		s.mu.Unlock()
		return before, fmt.Errorf("encode settings: %w", err)
	}
	if err := fileutil.WriteAtomic(s.path(SettingsFileName), raw, 0o600); err != nil {
		s.mu.Unlock()
		return before, fmt.Errorf("save settings: %w", err)
	}
	s.settings = next
	s.settingsHash = sha256.Sum256(raw)
	s.mu.Unlock()

	s.notify(settingsChange(before, next, false))
	return next.Clone(), nil
}

// Subscribe registers fn for change notifications. Observers run
// synchronously in registration order on the mutating goroutine. The
// returned function unregisters fn and is safe to call more than once.
func (s *Store) Subscribe(fn func(Change)) (cancel func()) {
	s.subMu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		s.subs = lo.Reject(s.subs, func(sub subscriber, _ int) bool { return sub.id == id })
	}
}

func (s *Store) notify(change Change) {
	s.subMu.Lock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	for _, sub := range subs {
		runObserver(sub.fn, change)
	}
}

func runObserver(fn func(Change), change Change) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("[ERROR-SETTINGS] change observer panicked",
				"panic", r, "stack", string(debug.Stack()))
		}
	}()
	fn(change)
}
