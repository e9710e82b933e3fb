package items

import (
	"testing"
	"time"

	"quicklaunch/internal/testutil"
)

func sampleItems() []LauncherItem {
	return []LauncherItem{
		{ID: "1", Path: "/home/u/Projects", Kind: KindFolder},
		{ID: "2", Path: "https://example.com", Kind: KindURL, DisplayName: testutil.Ptr("Example Site")},
		{ID: "3", Path: "echo hello", Kind: KindCommand},
		{ID: "4", Path: "/home/u/notes.txt", Kind: KindFile, DisplayName: testutil.Ptr("Notes")},
	}
}

func ids(list []LauncherItem) []string {
	out := make([]string, 0, len(list))
	for _, it := range list {
		out = append(out, it.ID)
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "blank returns all", query: "  ", want: []string{"1", "2", "3", "4"}},
		{name: "matches label case-insensitively", query: "SITE", want: []string{"2"}},
		{name: "matches path", query: "/home/u", want: []string{"1", "4"}},
		{name: "matches command text", query: "hello", want: []string{"3"}},
		{name: "no match", query: "zzz", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(sampleItems(), tt.query))
			if !equalIDs(got, tt.want) {
				t.Fatalf("Filter(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestRecent(t *testing.T) {
	list := sampleItems()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	list[0].Touch(base.Add(1 * time.Hour))
	list[2].Touch(base.Add(3 * time.Hour))
	list[3].Touch(base.Add(2 * time.Hour))

	if got := ids(Recent(list, MaxRecent)); !equalIDs(got, []string{"3", "4", "1"}) {
		t.Fatalf("Recent() = %v, want [3 4 1]", got)
	}
	if got := ids(Recent(list, 2)); !equalIDs(got, []string{"3", "4"}) {
		t.Fatalf("Recent(2) = %v, want [3 4]", got)
	}
	if got := Recent(list, 0); got != nil {
		t.Fatalf("Recent(0) = %v, want nil", got)
	}

	recent := Recent(list, 1)
	recent[0].Touch(base)
	if !list[2].LastOpenedAt.Equal(base.Add(3 * time.Hour)) {
		t.Fatal("Recent() result aliases the input")
	}
}

func TestIndexOf(t *testing.T) {
	list := sampleItems()
	if got := IndexOf(list, "3"); got != 2 {
		t.Fatalf("IndexOf(3) = %d, want 2", got)
	}
	if got := IndexOf(list, "nope"); got != -1 {
		t.Fatalf("IndexOf(nope) = %d, want -1", got)
	}
}
