package items

import (
	"slices"
	"strings"

	"github.com/samber/lo"
)

// MaxRecent is the number of recent items offered outside the main window.
const MaxRecent = 8

// Filter returns items whose label or path contains query, ignoring case.
// Order is preserved. A blank query returns a copy of all items.
func Filter(list []LauncherItem, query string) []LauncherItem {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return CloneAll(list)
	}
	matched := lo.Filter(list, func(it LauncherItem, _ int) bool {
		return strings.Contains(strings.ToLower(it.Label()), needle) ||
			strings.Contains(strings.ToLower(it.Path), needle)
	})
	return CloneAll(matched)
}

// Recent returns up to n opened items, most recently opened first.
// Items never opened are excluded. Ties keep list order.
func Recent(list []LauncherItem, n int) []LauncherItem {
	if n <= 0 {
		return nil
	}
	opened := lo.Filter(list, func(it LauncherItem, _ int) bool {
		return it.LastOpenedAt != nil
	})
	opened = CloneAll(opened)
	slices.SortStableFunc(opened, func(a, b LauncherItem) int {
		return b.LastOpenedAt.Compare(*a.LastOpenedAt)
	})
	if len(opened) > n {
		opened = opened[:n]
	}
	return opened
}

// CloneAll deep-copies list.
func CloneAll(list []LauncherItem) []LauncherItem {
	if list == nil {
		return nil
	}
	return lo.Map(list, func(it LauncherItem, _ int) LauncherItem {
		return it.Clone()
	})
}

// IndexOf returns the position of the item with id, or -1.
func IndexOf(list []LauncherItem, id string) int {
	return slices.IndexFunc(list, func(it LauncherItem) bool { return it.ID == id })
}
