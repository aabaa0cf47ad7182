package object

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob serializes a Blob to raw bytes (identity).
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob.
func UnmarshalBlob(data []byte) (*Blob, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}, nil
}

// ---------------------------------------------------------------------------
// TreeObj
// ---------------------------------------------------------------------------

// MarshalTree serializes a TreeObj. Entries are sorted by Name for
// deterministic output. Each entry is one line:
//
//	mode hash name
//
// where mode is a Git-compatible mode string (40000, 100644, 100755).
// Name comes last so entry names may contain spaces.
func MarshalTree(tr *TreeObj) []byte {
	sorted := make([]TreeEntry, len(tr.Entries))
	copy(sorted, tr.Entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	var buf bytes.Buffer
	for _, e := range sorted {
		fmt.Fprintf(&buf, "%s %s %s\n", treeModeOrDefault(e), string(e.Hash), e.Name)
	}
	return buf.Bytes()
}

// UnmarshalTree parses a TreeObj from its serialized form.
func UnmarshalTree(data []byte) (*TreeObj, error) {
	tr := &TreeObj{}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return tr, nil
	}
	for _, line := range strings.Split(text, "\n") {
		parts := strings.SplitN(line, " ", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("unmarshal tree: malformed entry %q", line)
		}
		isDir, mode, err := parseTreeMode(parts[0])
		if err != nil {
			return nil, fmt.Errorf("unmarshal tree: %w", err)
		}
		tr.Entries = append(tr.Entries, TreeEntry{
			Name:  parts[2],
			IsDir: isDir,
			Mode:  mode,
			Hash:  Hash(parts[1]),
		})
	}
	return tr, nil
}

func treeModeOrDefault(e TreeEntry) string {
	if e.IsDir {
		return TreeModeDir
	}
	if strings.TrimSpace(e.Mode) == "" {
		return TreeModeFile
	}
	return e.Mode
}

func parseTreeMode(mode string) (bool, string, error) {
	switch mode {
	case TreeModeDir:
		return true, TreeModeDir, nil
	case TreeModeFile:
		return false, TreeModeFile, nil
	case TreeModeExecutable:
		return false, TreeModeExecutable, nil
	default:
		return false, "", fmt.Errorf("unknown mode %q", mode)
	}
}

// ---------------------------------------------------------------------------
// CommitObj
// ---------------------------------------------------------------------------

// MarshalCommit serializes a CommitObj:
//
//	tree H
//	parent H              (zero or more)
//	author Name <email>
//	author-timestamp T
//	committer Name <email>
//	committer-timestamp T
//	signature S           (optional)
//
//	message
func MarshalCommit(c *CommitObj) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", string(c.TreeHash))
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", string(p))
	}
	fmt.Fprintf(&buf, "author %s\n", c.Author.String())
	fmt.Fprintf(&buf, "author-timestamp %d\n", c.Author.Timestamp)
	fmt.Fprintf(&buf, "committer %s\n", c.Committer.String())
	fmt.Fprintf(&buf, "committer-timestamp %d\n", c.Committer.Timestamp)
	if strings.TrimSpace(c.Signature) != "" {
		fmt.Fprintf(&buf, "signature %s\n", c.Signature)
	}
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// UnmarshalCommit parses a CommitObj from its serialized form.
func UnmarshalCommit(data []byte) (*CommitObj, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("unmarshal commit: missing header/message separator")
	}
	header := string(data[:idx])
	message := string(data[idx+2:])

	c := &CommitObj{Message: message}
	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal commit: malformed header line %q", line)
		}
		switch key {
		case "tree":
			c.TreeHash = Hash(val)
		case "parent":
			c.Parents = append(c.Parents, Hash(val))
		case "author":
			name, email, err := parseIdentity(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: %w", err)
			}
			c.Author.Name, c.Author.Email = name, email
		case "author-timestamp":
			ts, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: bad timestamp %q: %w", val, err)
			}
			c.Author.Timestamp = ts
		case "committer":
			name, email, err := parseIdentity(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: %w", err)
			}
			c.Committer.Name, c.Committer.Email = name, email
		case "committer-timestamp":
			ts, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: bad timestamp %q: %w", val, err)
			}
			c.Committer.Timestamp = ts
		case "signature":
			c.Signature = val
		default:
			return nil, fmt.Errorf("unmarshal commit: unknown header key %q", key)
		}
	}
	return c, nil
}

func parseIdentity(s string) (name, email string, err error) {
	open := strings.LastIndex(s, "<")
	if open < 0 || !strings.HasSuffix(s, ">") {
		return "", "", fmt.Errorf("malformed identity %q", s)
	}
	name = strings.TrimSpace(s[:open])
	email = s[open+1 : len(s)-1]
	return name, email, nil
}

// ---------------------------------------------------------------------------
// TagObj
// ---------------------------------------------------------------------------

// MarshalTag serializes a TagObj:
//
//	target H
//
//	<tag payload bytes>
func MarshalTag(t *TagObj) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "target %s\n", string(t.TargetHash))
	buf.WriteByte('\n')
	buf.Write(t.Data)
	return buf.Bytes()
}

// UnmarshalTag parses a TagObj from its serialized form.
func UnmarshalTag(data []byte) (*TagObj, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("unmarshal tag: missing header/payload separator")
	}
	header := string(data[:idx])
	payload := data[idx+2:]

	t := &TagObj{Data: make([]byte, len(payload))}
	copy(t.Data, payload)

	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal tag: malformed header line %q", line)
		}
		switch key {
		case "target":
			t.TargetHash = Hash(val)
		default:
			return nil, fmt.Errorf("unmarshal tag: unknown header key %q", key)
		}
	}
	return t, nil
}
