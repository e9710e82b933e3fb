//go:build linux

package hotkeys

import (
	"errors"
	"fmt"

	"golang.design/x/hotkey"
)

// X11: Alt is typically Mod1 and Super is typically Mod4.
var x11ModifierOf = map[Modifier]hotkey.Modifier{
	ModCtrl:  hotkey.ModCtrl,
	ModAlt:   hotkey.Mod1,
	ModShift: hotkey.ModShift,
	ModSuper: hotkey.Mod4,
}

var x11KeyOf = map[string]hotkey.Key{
	"A": hotkey.KeyA, "B": hotkey.KeyB, "C": hotkey.KeyC, "D": hotkey.KeyD,
	"E": hotkey.KeyE, "F": hotkey.KeyF, "G": hotkey.KeyG, "H": hotkey.KeyH,
	"I": hotkey.KeyI, "J": hotkey.KeyJ, "K": hotkey.KeyK, "L": hotkey.KeyL,
	"M": hotkey.KeyM, "N": hotkey.KeyN, "O": hotkey.KeyO, "P": hotkey.KeyP,
	"Q": hotkey.KeyQ, "R": hotkey.KeyR, "S": hotkey.KeyS, "T": hotkey.KeyT,
	"U": hotkey.KeyU, "V": hotkey.KeyV, "W": hotkey.KeyW, "X": hotkey.KeyX,
	"Y": hotkey.KeyY, "Z": hotkey.KeyZ,
	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,
	"F1": hotkey.KeyF1, "F2": hotkey.KeyF2, "F3": hotkey.KeyF3, "F4": hotkey.KeyF4,
	"F5": hotkey.KeyF5, "F6": hotkey.KeyF6, "F7": hotkey.KeyF7, "F8": hotkey.KeyF8,
	"F9": hotkey.KeyF9, "F10": hotkey.KeyF10, "F11": hotkey.KeyF11, "F12": hotkey.KeyF12,
}

type x11Backend struct{}

// x11Registration forwards keydown events until quit is closed.
type x11Registration struct {
	hk   *hotkey.Hotkey
	quit chan struct{}
	done chan struct{}
}

func newPlatformBackend() backend {
	return x11Backend{}
}

func x11Chord(binding Binding) ([]hotkey.Modifier, hotkey.Key, error) {
	key, ok := x11KeyOf[binding.Key()]
	if !ok {
		return nil, 0, fmt.Errorf("no X11 key for %q", binding.Key())
	}
	mods := make([]hotkey.Modifier, 0, len(modifierOrder))
	for _, mod := range modifierOrder {
		if binding.Has(mod) {
			mods = append(mods, x11ModifierOf[mod])
		}
	}
	return mods, key, nil
}

func (x11Backend) register(binding Binding, fire func()) (registration, error) {
	mods, key, err := x11Chord(binding)
	if err != nil {
		return nil, err
	}
	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return nil, err
	}

	r := &x11Registration{
		hk:   hk,
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	keydown := hk.Keydown()
	go func() {
		defer close(r.done)
		for {
			select {
			case <-r.quit:
				return
			case _, ok := <-keydown:
				if !ok {
					return
				}
				fire()
			}
		}
	}()
	return r, nil
}

func (r *x11Registration) stop() error {
	close(r.quit)
	unregErr := r.hk.Unregister()
	return errors.Join(unregErr, waitDone(r.done, "x11 keydown"))
}
