// Package items holds the launcher item model and the path classifier.
package items

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind is the open strategy of a launcher item.
type Kind string

const (
	KindFile    Kind = "file"
	KindFolder  Kind = "folder"
	KindURL     Kind = "url"
	KindCommand Kind = "command"
)

// ErrEmptyPath is returned when an item has no usable path.
var ErrEmptyPath = errors.New("item path is empty")

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindFile, KindFolder, KindURL, KindCommand:
		return true
	default:
		return false
	}
}

// Revealable reports whether items of this kind can be shown in a file manager.
func (k Kind) Revealable() bool {
	return k == KindFile || k == KindFolder
}

// UnmarshalJSON accepts the lower-case kind names case-insensitively.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode item kind: %w", err)
	}
	parsed, err := ParseKind(raw)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind converts a persisted or user-supplied kind name.
func ParseKind(raw string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(raw)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown item kind %q", raw)
	}
	return k, nil
}

// LauncherItem is one user-configured launch target.
// DisplayName and LastOpenedAt are optional and encode as null when unset.
type LauncherItem struct {
	ID           string     `json:"id"`
	Path         string     `json:"path"`
	Kind         Kind       `json:"kind"`
	DisplayName  *string    `json:"displayName"`
	LastOpenedAt *time.Time `json:"lastOpenedAt"`
}

// New builds an item with a fresh ID. When kind is empty the path is classified.
func New(path string, kind Kind, displayName string) (LauncherItem, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return LauncherItem{}, ErrEmptyPath
	}
	if kind == "" {
		kind = Classify(trimmed)
	}
	item := LauncherItem{
		ID:   uuid.NewString(),
		Path: trimmed,
		Kind: kind,
	}
	if name := strings.TrimSpace(displayName); name != "" {
		item.DisplayName = &name
	}
	if err := item.Validate(); err != nil {
		return LauncherItem{}, err
	}
	return item, nil
}

// Validate checks the minimum invariants for a persisted item.
// Kind/path consistency is advisory and not checked.
func (it LauncherItem) Validate() error {
	if strings.TrimSpace(it.Path) == "" {
		return ErrEmptyPath
	}
	if !it.Kind.Valid() {
		return fmt.Errorf("item %q: unknown kind %q", it.Path, it.Kind)
	}
	return nil
}

// Label returns the display name, falling back to the last path segment.
func (it LauncherItem) Label() string {
	if it.DisplayName != nil {
		if name := strings.TrimSpace(*it.DisplayName); name != "" {
			return name
		}
	}
	return lastSegment(it.Path)
}

// Touch records an open at now.
func (it *LauncherItem) Touch(now time.Time) {
	ts := now
	it.LastOpenedAt = &ts
}

// Clone returns a copy that shares no pointers with it.
func (it LauncherItem) Clone() LauncherItem {
	out := it
	if it.DisplayName != nil {
		name := *it.DisplayName
		out.DisplayName = &name
	}
	if it.LastOpenedAt != nil {
		ts := *it.LastOpenedAt
		out.LastOpenedAt = &ts
	}
	return out
}

func lastSegment(path string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(path), `/\`)
	if trimmed == "" {
		return strings.TrimSpace(path)
	}
	if idx := strings.LastIndexAny(trimmed, `/\`); idx >= 0 && idx < len(trimmed)-1 {
		return trimmed[idx+1:]
	}
	return trimmed
}
