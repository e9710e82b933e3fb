// Package hotkeys owns the single system-wide launcher shortcut.
package hotkeys

import "strings"

// Modifier is a platform-neutral modifier bitset.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModAlt
	ModShift
	ModSuper
)

// DefaultModifiers is applied when a shortcut names no modifier.
const DefaultModifiers = ModAlt | ModShift

// DefaultShortcut is the out-of-the-box launcher chord.
const DefaultShortcut = "Alt+Shift+Q"

// Binding describes a parsed global hotkey.
// Construct only via ParseBinding to guarantee invariant consistency.
type Binding struct {
	modifiers  Modifier
	key        string
	normalized string
	defaulted  bool
}

// Modifiers returns the modifier bitset. It is never zero for a parsed binding.
func (b Binding) Modifiers() Modifier { return b.modifiers }

// Has reports whether all bits of mod are set.
func (b Binding) Has(mod Modifier) bool { return b.modifiers&mod == mod }

// Key returns the upper-case key token ("Q", "5", "F5").
func (b Binding) Key() string { return b.key }

// Normalized returns the canonical human-readable binding string.
func (b Binding) Normalized() string { return b.normalized }

// Defaulted reports whether DefaultModifiers were substituted for a bare key.
func (b Binding) Defaulted() bool { return b.defaulted }

// IsZero reports whether b was not produced by ParseBinding.
func (b Binding) IsZero() bool { return b.key == "" }

func (m Modifier) String() string {
	names := make([]string, 0, 4)
	for _, mod := range modifierOrder {
		if m&mod != 0 {
			names = append(names, modifierDisplayName[mod])
		}
	}
	return strings.Join(names, "+")
}

var modifierOrder = []Modifier{ModCtrl, ModAlt, ModShift, ModSuper}

var modifierDisplayName = map[Modifier]string{
	ModCtrl:  "Ctrl",
	ModAlt:   "Alt",
	ModShift: "Shift",
	ModSuper: "Win",
}
