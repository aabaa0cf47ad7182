package diff

import (
	"strings"
	"testing"
)

func joinLines(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func TestUnifiedSingleChange(t *testing.T) {
	oldText := joinLines("a", "b", "c", "d", "e", "f", "g", "h")
	newText := joinLines("a", "b", "c", "D", "e", "f", "g", "h")

	got := Unified(oldText, newText)
	want := "@@ -1,7 +1,7 @@\n" +
		" a\n b\n c\n-d\n+D\n e\n f\n g\n"
	if got != want {
		t.Errorf("Unified:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestUnifiedEqualSidesProduceNothing(t *testing.T) {
	text := joinLines("same", "same", "same")
	if got := Unified(text, text); got != "" {
		t.Errorf("equal sides: got %q, want empty", got)
	}
	if got := FilePatch("f.txt", "working", text, text); got != "" {
		t.Errorf("equal sides patch: got %q, want empty", got)
	}
}

func TestUnifiedDistantChangesSplitIntoHunks(t *testing.T) {
	var oldLines, newLines []string
	for i := 0; i < 30; i++ {
		line := string(rune('a' + i%26))
		oldLines = append(oldLines, line)
		newLines = append(newLines, line)
	}
	newLines[2] = "CHANGED-EARLY"
	newLines[27] = "CHANGED-LATE"

	got := Unified(joinLines(oldLines...), joinLines(newLines...))
	if n := strings.Count(got, "@@ -"); n != 2 {
		t.Fatalf("got %d hunks, want 2:\n%s", n, got)
	}
	if !strings.Contains(got, "+CHANGED-EARLY") || !strings.Contains(got, "+CHANGED-LATE") {
		t.Errorf("hunks missing changes:\n%s", got)
	}
}

func TestUnifiedNearbyChangesMergeIntoOneHunk(t *testing.T) {
	oldText := joinLines("1", "2", "3", "4", "5", "6", "7", "8", "9", "10")
	newText := joinLines("1", "X", "3", "4", "5", "6", "Y", "8", "9", "10")

	got := Unified(oldText, newText)
	if n := strings.Count(got, "@@ -"); n != 1 {
		t.Errorf("got %d hunks, want 1 (changes are within merge distance):\n%s", n, got)
	}
}

func TestUnifiedAppend(t *testing.T) {
	got := Unified(joinLines("a", "b"), joinLines("a", "b", "c"))
	want := "@@ -1,2 +1,3 @@\n a\n b\n+c\n"
	if got != want {
		t.Errorf("append:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestUnifiedFromEmpty(t *testing.T) {
	got := Unified("", joinLines("new", "file"))
	want := "@@ -1,0 +1,2 @@\n+new\n+file\n"
	if got != want {
		t.Errorf("from empty:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestFilePatchHeader(t *testing.T) {
	got := FilePatch("src/main.go", "staged", joinLines("old"), joinLines("new"))

	wantPrefix := "diff --strata a/src/main.go b/src/main.go (staged)\n" +
		"--- a/src/main.go\n" +
		"+++ b/src/main.go\n"
	if !strings.HasPrefix(got, wantPrefix) {
		t.Errorf("patch header:\ngot:\n%s\nwant prefix:\n%s", got, wantPrefix)
	}
	if !strings.Contains(got, "-old\n+new\n") {
		t.Errorf("patch body missing change:\n%s", got)
	}
}

func TestPatchStats(t *testing.T) {
	patch := FilePatch("f.txt", "working",
		joinLines("a", "b", "c", "d"),
		joinLines("a", "B", "c", "d", "e"))

	st := PatchStats(patch)
	if st.Additions != 2 {
		t.Errorf("Additions = %d, want 2", st.Additions)
	}
	if st.Deletions != 1 {
		t.Errorf("Deletions = %d, want 1", st.Deletions)
	}
	if st.Context != 3 {
		t.Errorf("Context = %d, want 3", st.Context)
	}
	if st.Total() != 6 {
		t.Errorf("Total = %d, want 6", st.Total())
	}

	if st := PatchStats(""); st.Total() != 0 {
		t.Errorf("empty patch stats = %+v", st)
	}
}
