package diff

import (
	"fmt"
	"strings"
)

// contextLines is the number of unchanged lines kept around each change
// in a hunk.
const contextLines = 3

// hunk is a contiguous group of changes plus surrounding context.
type hunk struct {
	oldStart, oldCount int
	newStart, newCount int
	lines              []string
}

// Unified renders the changes between oldText and newText as unified
// hunks with "@@ -i,n +j,m @@" headers. The result is empty when the
// two sides are equal.
func Unified(oldText, newText string) string {
	ops := Lines(splitLines(oldText), splitLines(newText))

	var sb strings.Builder
	for _, h := range buildHunks(ops, contextLines) {
		fmt.Fprintf(&sb, "@@ -%d,%d +%d,%d @@\n", h.oldStart, h.oldCount, h.newStart, h.newCount)
		for _, line := range h.lines {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// FilePatch renders a full per-file patch: a header naming the file and
// the comparison label, followed by the unified hunks. It returns the
// empty string when the sides are equal.
func FilePatch(path, label, oldText, newText string) string {
	body := Unified(oldText, newText)
	if body == "" {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "diff --strata a/%s b/%s (%s)\n", path, path, label)
	fmt.Fprintf(&sb, "--- a/%s\n", path)
	fmt.Fprintf(&sb, "+++ b/%s\n", path)
	sb.WriteString(body)
	return sb.String()
}

// Stat summarizes a rendered patch.
type Stat struct {
	Additions int
	Deletions int
	Context   int
}

// Total is the number of lines the patch touches or carries as context.
func (s Stat) Total() int {
	return s.Additions + s.Deletions + s.Context
}

// PatchStats counts added, deleted and context lines in a rendered
// patch. File header lines ("---", "+++") are not counted.
func PatchStats(patch string) Stat {
	var st Stat
	for _, line := range strings.Split(patch, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			st.Additions++
		case strings.HasPrefix(line, "-"):
			st.Deletions++
		case strings.HasPrefix(line, " "):
			st.Context++
		}
	}
	return st
}

// buildHunks groups an edit script into hunks, merging changes whose
// separating equal run fits within twice the context width.
func buildHunks(ops []Op, context int) []hunk {
	// Old/new line offsets at each op index, zero-based.
	oldAt := make([]int, len(ops)+1)
	newAt := make([]int, len(ops)+1)
	o, n := 0, 0
	for i, op := range ops {
		oldAt[i] = o
		newAt[i] = n
		switch op.Kind {
		case Equal:
			o++
			n++
		case Delete:
			o++
		case Insert:
			n++
		}
	}
	oldAt[len(ops)] = o
	newAt[len(ops)] = n

	var hunks []hunk
	i := 0
	for i < len(ops) {
		if ops[i].Kind == Equal {
			i++
			continue
		}

		// Extend the group over later changes separated by at most
		// 2*context equal lines.
		last := i
		equalRun := 0
		for j := i + 1; j < len(ops); j++ {
			if ops[j].Kind == Equal {
				equalRun++
				if equalRun > 2*context {
					break
				}
				continue
			}
			equalRun = 0
			last = j
		}

		lo := i
		for c := 0; c < context && lo > 0 && ops[lo-1].Kind == Equal; c++ {
			lo--
		}
		hi := last + 1
		for c := 0; c < context && hi < len(ops) && ops[hi].Kind == Equal; c++ {
			hi++
		}

		h := hunk{
			oldStart: oldAt[lo] + 1,
			newStart: newAt[lo] + 1,
			oldCount: oldAt[hi] - oldAt[lo],
			newCount: newAt[hi] - newAt[lo],
		}
		for _, op := range ops[lo:hi] {
			switch op.Kind {
			case Equal:
				h.lines = append(h.lines, " "+op.Text)
			case Delete:
				h.lines = append(h.lines, "-"+op.Text)
			case Insert:
				h.lines = append(h.lines, "+"+op.Text)
			}
		}
		hunks = append(hunks, h)

		i = hi
	}
	return hunks
}

// splitLines splits text into lines without a trailing empty element
// for a final newline. Empty text has no lines.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
