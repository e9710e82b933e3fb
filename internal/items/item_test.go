package items

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"quicklaunch/internal/testutil"
)

func TestLauncherItemLabel(t *testing.T) {
	tests := []struct {
		name string
		item LauncherItem
		want string
	}{
		{name: "display name wins", item: LauncherItem{Path: "/a/b", DisplayName: testutil.Ptr("Docs")}, want: "Docs"},
		{name: "blank display name falls back", item: LauncherItem{Path: "/a/b", DisplayName: testutil.Ptr("  ")}, want: "b"},
		{name: "posix path", item: LauncherItem{Path: "/home/u/projects"}, want: "projects"},
		{name: "trailing separator", item: LauncherItem{Path: "/home/u/projects/"}, want: "projects"},
		{name: "windows path", item: LauncherItem{Path: `D:\Projects\app.exe`}, want: "app.exe"},
		{name: "url", item: LauncherItem{Path: "https://example.com"}, want: "example.com"},
		{name: "command", item: LauncherItem{Path: "echo Hello"}, want: "echo Hello"},
		{name: "root only", item: LauncherItem{Path: "/"}, want: "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.Label(); got != tt.want {
				t.Fatalf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("classifies when kind empty", func(t *testing.T) {
		item, err := New("  https://example.com ", "", "")
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if item.Kind != KindURL {
			t.Fatalf("Kind = %q, want %q", item.Kind, KindURL)
		}
		if item.Path != "https://example.com" {
			t.Fatalf("Path = %q, want trimmed", item.Path)
		}
		if item.ID == "" {
			t.Fatal("ID is empty")
		}
		if item.DisplayName != nil {
			t.Fatalf("DisplayName = %q, want nil", *item.DisplayName)
		}
	})

	t.Run("explicit kind is kept", func(t *testing.T) {
		item, err := New("example.com", KindCommand, "Site")
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if item.Kind != KindCommand {
			t.Fatalf("Kind = %q, want %q", item.Kind, KindCommand)
		}
		if item.DisplayName == nil || *item.DisplayName != "Site" {
			t.Fatalf("DisplayName = %v, want Site", item.DisplayName)
		}
	})

	t.Run("empty path rejected", func(t *testing.T) {
		if _, err := New("   ", "", ""); !errors.Is(err, ErrEmptyPath) {
			t.Fatalf("New() error = %v, want ErrEmptyPath", err)
		}
	})

	t.Run("unknown kind rejected", func(t *testing.T) {
		if _, err := New("x", Kind("script"), ""); err == nil {
			t.Fatal("New() error = nil, want unknown kind error")
		}
	})

	t.Run("ids are unique", func(t *testing.T) {
		a, _ := New("a", KindCommand, "")
		b, _ := New("a", KindCommand, "")
		if a.ID == b.ID {
			t.Fatalf("IDs collide: %q", a.ID)
		}
	})
}

func TestLauncherItemJSON(t *testing.T) {
	opened := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	item := LauncherItem{ID: "1", Path: "/tmp", Kind: KindFolder, LastOpenedAt: &opened}

	raw, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	got := string(raw)
	for _, want := range []string{`"kind":"folder"`, `"displayName":null`, `"lastOpenedAt":"2026-03-01T10:00:00Z"`} {
		if !strings.Contains(got, want) {
			t.Fatalf("json %s missing %s", got, want)
		}
	}

	var decoded LauncherItem
	if err := json.Unmarshal([]byte(`{"path":"x","kind":"URL"}`), &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Kind != KindURL {
		t.Fatalf("decoded Kind = %q, want %q", decoded.Kind, KindURL)
	}

	if err := json.Unmarshal([]byte(`{"path":"x","kind":"program"}`), &decoded); err == nil {
		t.Fatal("Unmarshal() error = nil for unknown kind")
	}
}

func TestCloneDoesNotShare(t *testing.T) {
	item := LauncherItem{Path: "/a", Kind: KindFile, DisplayName: testutil.Ptr("A")}
	item.Touch(time.Unix(100, 0))
	cp := item.Clone()
	*cp.DisplayName = "B"
	*cp.LastOpenedAt = time.Unix(200, 0)
	if *item.DisplayName != "A" || item.LastOpenedAt.Unix() != 100 {
		t.Fatal("Clone() shares pointers with the source")
	}
}

func TestKindRevealable(t *testing.T) {
	for kind, want := range map[Kind]bool{KindFile: true, KindFolder: true, KindURL: false, KindCommand: false} {
		if got := kind.Revealable(); got != want {
			t.Fatalf("%q.Revealable() = %v, want %v", kind, got, want)
		}
	}
}
