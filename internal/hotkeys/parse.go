package hotkeys

import (
	"fmt"
	"strconv"
	"strings"
)

var modifierByName = map[string]Modifier{
	"CTRL":    ModCtrl,
	"CONTROL": ModCtrl,
	"ALT":     ModAlt,
	"SHIFT":   ModShift,
	"WIN":     ModSuper,
	"SUPER":   ModSuper,
	"META":    ModSuper,
}

// maxFunctionKey bounds F-keys to the range every backend can register.
const maxFunctionKey = 12

// ParseBinding parses a binding like "Alt+Shift+Q".
// Tokens are case-insensitive. A bare key gets DefaultModifiers.
func ParseBinding(spec string) (Binding, error) {
	raw := strings.TrimSpace(spec)
	if raw == "" {
		return Binding{}, fmt.Errorf("hotkey spec is empty")
	}

	parts := strings.Split(raw, "+")
	var modifiers Modifier
	for _, token := range parts[:len(parts)-1] {
		name := strings.ToUpper(strings.TrimSpace(token))
		mod, ok := modifierByName[name]
		if !ok {
			return Binding{}, fmt.Errorf("unknown modifier %q in hotkey %q", token, raw)
		}
		modifiers |= mod
	}

	key, err := parseKey(parts[len(parts)-1])
	if err != nil {
		return Binding{}, fmt.Errorf("%w in hotkey %q", err, raw)
	}

	defaulted := false
	if modifiers == 0 {
		modifiers = DefaultModifiers
		defaulted = true
	}

	return Binding{
		modifiers:  modifiers,
		key:        key,
		normalized: modifiers.String() + "+" + key,
		defaulted:  defaulted,
	}, nil
}

func parseKey(raw string) (string, error) {
	token := strings.ToUpper(strings.TrimSpace(raw))
	if token == "" {
		return "", fmt.Errorf("missing hotkey key token")
	}
	if _, isModifier := modifierByName[token]; isModifier {
		return "", fmt.Errorf("hotkey must end with a non-modifier key, got %q", raw)
	}

	if len(token) == 1 {
		ch := token[0]
		if (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			return token, nil
		}
	}

	if n, ok := functionKeyNumber(token); ok {
		return "F" + strconv.Itoa(n), nil
	}
	return "", fmt.Errorf("unknown key %q", raw)
}

// functionKeyNumber returns n for "F<n>" within the supported range.
func functionKeyNumber(token string) (int, bool) {
	if len(token) < 2 || token[0] != 'F' {
		return 0, false
	}
	n, err := strconv.Atoi(token[1:])
	if err != nil || n < 1 || n > maxFunctionKey {
		return 0, false
	}
	return n, true
}
