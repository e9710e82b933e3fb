package settings

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"quicklaunch/internal/items"
	"quicklaunch/internal/testutil"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func mustItem(t *testing.T, path string, kind items.Kind) items.LauncherItem {
	t.Helper()
	it, err := items.New(path, kind, "")
	if err != nil {
		t.Fatalf("items.New(%q): %v", path, err)
	}
	return it
}

func ids(list []items.LauncherItem) []string {
	out := make([]string, len(list))
	for i, it := range list {
		out[i] = it.ID
	}
	return out
}

func TestOpenEmptyDirUsesDefaults(t *testing.T) {
	s := openTestStore(t)
	if got := s.Items(); got == nil || len(got) != 0 {
		t.Fatalf("Items() = %#v, want empty non-nil slice", got)
	}
	got := s.Settings()
	want := Defaults()
	if got.Theme != want.Theme || got.Language != want.Language || got.Hotkey != want.Hotkey ||
		got.AutoLaunch != want.AutoLaunch || got.MainWindow.Width != 400 || got.MainWindow.Height != 600 {
		t.Fatalf("Settings() = %+v, want %+v", got, want)
	}
	if got.Hotkey.Shortcut != "Alt+Shift+Q" || !got.Hotkey.Enabled {
		t.Fatalf("hotkey = %+v", got.Hotkey)
	}
}

func TestItemMutationsPersist(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	a := mustItem(t, "https://example.com", items.KindURL)
	b := mustItem(t, "echo hi", items.KindCommand)
	c := mustItem(t, "/tmp/report.pdf", items.KindFile)
	for _, it := range []items.LauncherItem{a, b, c} {
		if err := s.AddItem(it); err != nil {
			t.Fatalf("AddItem: %v", err)
		}
	}
	if err := s.RemoveItem(b.ID); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if err := s.ReorderItems([]string{c.ID, a.ID}); err != nil {
		t.Fatalf("ReorderItems: %v", err)
	}
	opened := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	if err := s.TouchItem(a.ID, opened); err != nil {
		t.Fatalf("TouchItem: %v", err)
	}
	if _, err := s.UpdateItem(c.ID, func(it *items.LauncherItem) {
		it.DisplayName = testutil.Ptr("Report")
	}); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got := reopened.Items()
	if want := []string{c.ID, a.ID}; strings.Join(ids(got), ",") != strings.Join(want, ",") {
		t.Fatalf("ids = %v, want %v", ids(got), want)
	}
	if got[0].Label() != "Report" {
		t.Fatalf("label = %q", got[0].Label())
	}
	if got[1].LastOpenedAt == nil || !got[1].LastOpenedAt.Equal(opened) {
		t.Fatalf("lastOpenedAt = %v", got[1].LastOpenedAt)
	}
}

func TestItemErrors(t *testing.T) {
	s := openTestStore(t)
	a := mustItem(t, "https://a.example", items.KindURL)
	b := mustItem(t, "https://b.example", items.KindURL)
	if err := s.AddItem(a); err != nil {
		t.Fatal(err)
	}
	if err := s.AddItem(b); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{name: "duplicate add", run: func() error { return s.AddItem(a) }, want: ErrDuplicateItem},
		{name: "remove unknown", run: func() error { return s.RemoveItem("nope") }, want: ErrItemNotFound},
		{name: "touch unknown", run: func() error { return s.TouchItem("nope", time.Now()) }, want: ErrItemNotFound},
		{name: "reorder short", run: func() error { return s.ReorderItems([]string{a.ID}) }, want: ErrInvalidOrder},
		{name: "reorder duplicate", run: func() error { return s.ReorderItems([]string{a.ID, a.ID}) }, want: ErrInvalidOrder},
		{name: "reorder unknown", run: func() error { return s.ReorderItems([]string{a.ID, "x"}) }, want: ErrInvalidOrder},
		{name: "add empty path", run: func() error { return s.AddItem(items.LauncherItem{ID: "z", Kind: items.KindURL}) }, want: items.ErrEmptyPath},
		{name: "update to empty path", run: func() error {
			_, err := s.UpdateItem(a.ID, func(it *items.LauncherItem) { it.Path = " " })
			return err
		}, want: items.ErrEmptyPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if got := ids(s.Items()); len(got) != 2 || got[0] != a.ID || got[1] != b.ID {
				t.Fatalf("failed mutation changed items: %v", got)
			}
		})
	}
}

func TestUpdateItemKeepsID(t *testing.T) {
	s := openTestStore(t)
	a := mustItem(t, "/tmp", items.KindFolder)
	if err := s.AddItem(a); err != nil {
		t.Fatal(err)
	}
	got, err := s.UpdateItem(a.ID, func(it *items.LauncherItem) { it.ID = "hijack" })
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if got.ID != a.ID {
		t.Fatalf("id changed to %q", got.ID)
	}
}

func TestClearItems(t *testing.T) {
	s := openTestStore(t)
	if err := s.AddItem(mustItem(t, "https://example.com", items.KindURL)); err != nil {
		t.Fatal(err)
	}
	if err := s.ClearItems(); err != nil {
		t.Fatalf("ClearItems: %v", err)
	}
	if len(s.Items()) != 0 {
		t.Fatalf("items left: %v", s.Items())
	}
	raw, err := os.ReadFile(filepath.Join(s.Dir(), ItemsFileName))
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(raw)) != "[]" {
		t.Fatalf("items.json = %s", raw)
	}
}

func TestItemsReturnsCopies(t *testing.T) {
	s := openTestStore(t)
	a := mustItem(t, "https://example.com", items.KindURL)
	if err := s.AddItem(a); err != nil {
		t.Fatal(err)
	}
	list := s.Items()
	list[0].Path = "mutated"
	if got, _ := s.Item(a.ID); got.Path != "https://example.com" {
		t.Fatalf("store mutated through copy: %q", got.Path)
	}
}

func TestOpenSkipsBadItems(t *testing.T) {
	logBuf := testutil.CaptureLogBuffer(t, slog.LevelWarn)
	dir := t.TempDir()
	content := `[
  {"id":"1","path":"https://example.com","kind":"URL","displayName":null,"lastOpenedAt":null},
  {"id":"2","path":"x","kind":"rocket"},
  {"id":"3","path":"","kind":"file"},
  {"id":"1","path":"dup","kind":"command"},
  {"id":"4","path":"echo hi","kind":"command"}
]`
	if err := os.WriteFile(filepath.Join(dir, ItemsFileName), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got := s.Items()
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "4" {
		t.Fatalf("items = %+v", got)
	}
	if got[0].Kind != items.KindURL {
		t.Fatalf("kind = %q, want url", got[0].Kind)
	}
	if strings.Count(logBuf.String(), "skipping") != 3 {
		t.Fatalf("expected 3 skip warnings:\n%s", logBuf.String())
	}
}

func TestOpenCorruptFilesUseDefaults(t *testing.T) {
	testutil.CaptureLogBuffer(t, slog.LevelError)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ItemsFileName), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, SettingsFileName), []byte("[]"), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(s.Items()) != 0 {
		t.Fatalf("items = %v", s.Items())
	}
	if s.Settings().Theme != ThemeSystem {
		t.Fatalf("theme = %q", s.Settings().Theme)
	}
}

func TestSettingsNormalizeOnLoad(t *testing.T) {
	testutil.CaptureLogBuffer(t, slog.LevelError)
	dir := t.TempDir()
	content := `{"theme":"Neon","language":"","hotkey":{"enabled":false,"shortcut":"ctrl+alt+"},"mainWindow":{"width":10,"height":800,"x":5}}`
	if err := os.WriteFile(filepath.Join(dir, SettingsFileName), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	got := s.Settings()
	if got.Theme != ThemeSystem || got.Language != "system" {
		t.Fatalf("theme/language = %q/%q", got.Theme, got.Language)
	}
	if got.Hotkey.Enabled || got.Hotkey.Shortcut != "Alt+Shift+Q" {
		t.Fatalf("hotkey = %+v", got.Hotkey)
	}
	if got.MainWindow.Width != 400 || got.MainWindow.Height != 800 {
		t.Fatalf("window = %+v", got.MainWindow)
	}
	if got.MainWindow.X == nil || *got.MainWindow.X != 5 || got.MainWindow.Y != nil {
		t.Fatalf("window position = %v/%v", got.MainWindow.X, got.MainWindow.Y)
	}
}

func TestUpdateSettings(t *testing.T) {
	s := openTestStore(t)

	got, err := s.UpdateSettings(func(st *Settings) {
		st.Theme = "DARK"
		st.Hotkey.Shortcut = "shift+ctrl+f5"
		st.AutoLaunch.Enabled = true
	})
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if got.Theme != ThemeDark || got.Hotkey.Shortcut != "Ctrl+Shift+F5" || !got.AutoLaunch.Enabled {
		t.Fatalf("settings = %+v", got)
	}

	raw, err := os.ReadFile(filepath.Join(s.Dir(), SettingsFileName))
	if err != nil {
		t.Fatal(err)
	}
	var onDisk map[string]any
	if err := json.Unmarshal(raw, &onDisk); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"theme", "language", "hotkey", "autoLaunch", "mainWindow"} {
		if _, ok := onDisk[key]; !ok {
			t.Fatalf("settings.json missing %q:\n%s", key, raw)
		}
	}
}

func TestUpdateSettingsRejectsBadShortcut(t *testing.T) {
	s := openTestStore(t)
	var notified int
	s.Subscribe(func(Change) { notified++ })

	_, err := s.UpdateSettings(func(st *Settings) { st.Hotkey.Shortcut = "Ctrl+Alt" })
	if err == nil {
		t.Fatal("invalid shortcut accepted")
	}
	if s.Settings().Hotkey.Shortcut != "Alt+Shift+Q" || notified != 0 {
		t.Fatalf("failed update leaked: %+v notified=%d", s.Settings().Hotkey, notified)
	}
}

func TestSubscribeOrderAndChanges(t *testing.T) {
	s := openTestStore(t)
	var order []string
	var changes []Change
	s.Subscribe(func(c Change) {
		order = append(order, "first")
		changes = append(changes, c)
	})
	cancel := s.Subscribe(func(Change) { order = append(order, "second") })
	s.Subscribe(func(Change) { order = append(order, "third") })

	if _, err := s.UpdateSettings(func(st *Settings) { st.Hotkey.Enabled = false }); err != nil {
		t.Fatal(err)
	}
	cancel()
	cancel()
	if _, err := s.UpdateSettings(func(st *Settings) { st.Theme = ThemeLight }); err != nil {
		t.Fatal(err)
	}
	if err := s.AddItem(mustItem(t, "https://example.com", items.KindURL)); err != nil {
		t.Fatal(err)
	}

	want := "first,second,third,first,third,first,third"
	if got := strings.Join(order, ","); got != want {
		t.Fatalf("order = %s, want %s", got, want)
	}
	if !changes[0].Settings || !changes[0].HotkeyChanged || changes[0].Items {
		t.Fatalf("change[0] = %+v", changes[0])
	}
	if changes[1].HotkeyChanged || changes[1].AutoLaunchChanged {
		t.Fatalf("theme change flagged hotkey/autolaunch: %+v", changes[1])
	}
	if !changes[2].Items || changes[2].Settings {
		t.Fatalf("change[2] = %+v", changes[2])
	}
}

func TestObserverRunsAfterUnlock(t *testing.T) {
	s := openTestStore(t)
	var seen []int
	s.Subscribe(func(c Change) {
		if c.Items {
			// Re-entering the store must not deadlock.
			seen = append(seen, len(s.Items()))
		}
	})
	if err := s.AddItem(mustItem(t, "https://example.com", items.KindURL)); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 1 || seen[0] != 1 {
		t.Fatalf("observer saw %v, want [1]", seen)
	}
}

func TestObserverPanicContained(t *testing.T) {
	logBuf := testutil.CaptureLogBuffer(t, slog.LevelError)
	s := openTestStore(t)
	var after bool
	s.Subscribe(func(Change) { panic("observer bug") })
	s.Subscribe(func(Change) { after = true })

	if err := s.ClearItems(); err != nil {
		t.Fatal(err)
	}
	if !after {
		t.Fatal("later observer skipped after panic")
	}
	if !strings.Contains(logBuf.String(), "observer bug") {
		t.Fatalf("panic not logged:\n%s", logBuf.String())
	}
}

func TestConcurrentMutations(t *testing.T) {
	s := openTestStore(t)
	var wg sync.WaitGroup
	for range 10 {
		wg.Go(func() {
			it, err := items.New("https://example.com", "", "")
			if err != nil {
				t.Error(err)
				return
			}
			if err := s.AddItem(it); err != nil {
				t.Error(err)
			}
		})
	}
	wg.Wait()
	if got := len(s.Items()); got != 10 {
		t.Fatalf("items = %d, want 10", got)
	}
}

func TestSettingsClone(t *testing.T) {
	orig := Defaults()
	orig.MainWindow.X = testutil.Ptr(10)
	cp := orig.Clone()
	*cp.MainWindow.X = 99
	if *orig.MainWindow.X != 10 {
		t.Fatal("Clone shares MainWindow.X")
	}
}
