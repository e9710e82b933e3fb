package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"quicklaunch/internal/items"
	"quicklaunch/internal/settings"

	"github.com/samber/lo"
)

// ItemPatch is the editable part of a LauncherItem. Empty Kind re-classifies
// Path; a nil DisplayName leaves the name unchanged and an empty one clears it.
type ItemPatch struct {
	Path        string  `json:"path"`
	Kind        string  `json:"kind"`
	DisplayName *string `json:"displayName"`
}

func (a *App) requireStore() (*settings.Store, error) {
	if a.store == nil {
		return nil, errors.New("settings store is unavailable")
	}
	return a.store, nil
}

func (a *App) requireItem(id string) (items.LauncherItem, error) {
	store, err := a.requireStore()
	if err != nil {
		return items.LauncherItem{}, err
	}
	item, ok := store.Item(strings.TrimSpace(id))
	if !ok {
		return items.LauncherItem{}, fmt.Errorf("%w: %s", settings.ErrItemNotFound, id)
	}
	return item, nil
}

// GetItems returns the ordered item list.
func (a *App) GetItems() []items.LauncherItem {
	store, err := a.requireStore()
	if err != nil {
		return []items.LauncherItem{}
	}
	return store.Items()
}

// AddItem classifies path and appends a new item.
func (a *App) AddItem(path, displayName string) (items.LauncherItem, error) {
	store, err := a.requireStore()
	if err != nil {
		return items.LauncherItem{}, err
	}
	item, err := items.New(path, "", displayName)
	if err != nil {
		return items.LauncherItem{}, err
	}
	if err := store.AddItem(item); err != nil {
		return items.LauncherItem{}, err
	}
	return item, nil
}

// AddPaths appends one item per dropped path, named after the last path
// segment. Blank paths are skipped.
func (a *App) AddPaths(paths []string) ([]items.LauncherItem, error) {
	store, err := a.requireStore()
	if err != nil {
		return nil, err
	}
	added := make([]items.LauncherItem, 0, len(paths))
	var errs []error
	for _, p := range lo.Compact(lo.Map(paths, func(p string, _ int) string { return strings.TrimSpace(p) })) {
		item, err := items.New(p, "", filepath.Base(p))
		if err == nil {
			err = store.AddItem(item)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("add %s: %w", p, err))
			continue
		}
		added = append(added, item)
	}
	switch len(added) {
	case 0:
	case 1:
		a.notifier.Notify("Item added", added[0].Label())
	default:
		a.notifier.Notify("Items added", fmt.Sprintf("%d items added", len(added)))
	}
	return added, errors.Join(errs...)
}

// UpdateItem edits the item with id.
func (a *App) UpdateItem(id string, patch ItemPatch) (items.LauncherItem, error) {
	store, err := a.requireStore()
	if err != nil {
		return items.LauncherItem{}, err
	}
	path := strings.TrimSpace(patch.Path)
	if path == "" {
		return items.LauncherItem{}, items.ErrEmptyPath
	}
	kind := items.Classify(path)
	if strings.TrimSpace(patch.Kind) != "" {
		if kind, err = items.ParseKind(patch.Kind); err != nil {
			return items.LauncherItem{}, err
		}
	}
	return store.UpdateItem(strings.TrimSpace(id), func(it *items.LauncherItem) {
		it.Path = path
		it.Kind = kind
		if patch.DisplayName == nil {
			return
		}
		if name := strings.TrimSpace(*patch.DisplayName); name != "" {
			it.DisplayName = &name
		} else {
			it.DisplayName = nil
		}
	})
}

// RemoveItem deletes the item with id.
func (a *App) RemoveItem(id string) error {
	store, err := a.requireStore()
	if err != nil {
		return err
	}
	return store.RemoveItem(strings.TrimSpace(id))
}

// ReorderItems applies a drag-and-drop reorder. ids must be a permutation
// of the current item ids.
func (a *App) ReorderItems(ids []string) error {
	store, err := a.requireStore()
	if err != nil {
		return err
	}
	return store.ReorderItems(ids)
}

// ClearItems removes every item.
func (a *App) ClearItems() error {
	store, err := a.requireStore()
	if err != nil {
		return err
	}
	return store.ClearItems()
}

// OpenItem launches the item with id. Launch failures are reported through a
// notification, not the returned error, which only covers unknown ids.
func (a *App) OpenItem(id string) error {
	item, err := a.requireItem(id)
	if err != nil {
		return err
	}
	if a.opener == nil {
		return errors.New("opener is unavailable")
	}
	a.opener.Open(item)
	return nil
}

// RevealItem shows the item with id in the file manager.
func (a *App) RevealItem(id string) error {
	item, err := a.requireItem(id)
	if err != nil {
		return err
	}
	if a.opener == nil {
		return errors.New("opener is unavailable")
	}
	a.opener.Reveal(item)
	return nil
}

// CopyItemPath puts the item's path on the clipboard.
func (a *App) CopyItemPath(id string) error {
	item, err := a.requireItem(id)
	if err != nil {
		return err
	}
	ctx := a.runtimeContext()
	if ctx == nil {
		return errors.New("runtime context is unavailable")
	}
	if err := runtimeClipboardSetTextFn(ctx, item.Path); err != nil {
		slog.Warn("[WARN-UI] clipboard write failed", "id", item.ID, "error", err)
		return fmt.Errorf("copy path: %w", err)
	}
	return nil
}

// ClassifyPath reports the kind an item with path would get.
func (a *App) ClassifyPath(path string) string {
	return string(items.Classify(path))
}

// SearchItems filters items by label or path, ignoring case.
func (a *App) SearchItems(query string) []items.LauncherItem {
	return items.Filter(a.GetItems(), query)
}

// GetRecentItems returns the most recently opened items, newest first.
func (a *App) GetRecentItems() []items.LauncherItem {
	recent := items.Recent(a.GetItems(), items.MaxRecent)
	if recent == nil {
		return []items.LauncherItem{}
	}
	return recent
}
