package repo

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"

	"github.com/strata-vcs/strata/pkg/object"
)

const (
	indexVersionMin     = 2
	indexVersionDefault = 3
	indexVersionMax     = 4
)

// IndexEntry records the staged state of a single file.
type IndexEntry struct {
	Path       string      `json:"path"`
	Hash       object.Hash `json:"hash"`
	Mode       string      `json:"mode"`
	Size       int64       `json:"size"`
	ModTime    int64       `json:"mod_time"`
	ChangeTime int64       `json:"change_time"`
	Stage      uint8       `json:"stage"`              // 0 normal, 1-3 conflict stages
	Checksum   string      `json:"checksum,omitempty"` // BLAKE2b-256 of staged content
	Flags      uint16      `json:"flags,omitempty"`
}

// Index holds the full staging area for a Strata repository. Entries maps
// path to blob hash; Metadata carries the per-path detail. The two maps
// always hold the same key set.
type Index struct {
	Version   int                     `json:"version"`
	Entries   map[string]object.Hash  `json:"entries"`
	Metadata  map[string]*IndexEntry  `json:"metadata"`
	Timestamp string                  `json:"timestamp,omitempty"`
	Signature string                  `json:"signature,omitempty"`
}

// NewIndex returns an empty index at the default version.
func NewIndex() *Index {
	return &Index{
		Version:  indexVersionDefault,
		Entries:  make(map[string]object.Hash),
		Metadata: make(map[string]*IndexEntry),
	}
}

// Set stages an entry, keeping Entries and Metadata in lockstep.
func (idx *Index) Set(entry *IndexEntry) {
	idx.Entries[entry.Path] = entry.Hash
	idx.Metadata[entry.Path] = entry
}

// Remove unstages a path from both maps. It reports whether the path was
// present.
func (idx *Index) Remove(path string) bool {
	_, ok := idx.Entries[path]
	delete(idx.Entries, path)
	delete(idx.Metadata, path)
	return ok
}

// Clear empties the staging area and drops the signature.
func (idx *Index) Clear() {
	idx.Entries = make(map[string]object.Hash)
	idx.Metadata = make(map[string]*IndexEntry)
	idx.Signature = ""
}

// Paths returns the staged paths sorted.
func (idx *Index) Paths() []string {
	paths := make([]string, 0, len(idx.Entries))
	for p := range idx.Entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// HasConflicts reports whether any entry sits at a non-zero merge stage.
func (idx *Index) HasConflicts() bool {
	for _, e := range idx.Metadata {
		if e.Stage != 0 {
			return true
		}
	}
	return false
}

// ConflictedPaths returns the sorted paths with non-zero merge stages.
func (idx *Index) ConflictedPaths() []string {
	var paths []string
	for p, e := range idx.Metadata {
		if e.Stage != 0 {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}

// sign computes the tamper-evidence signature: xxh3 over entry count,
// timestamp and version. Fast and non-cryptographic; it flags accidental
// corruption and casual edits, not a determined attacker.
func (idx *Index) sign() string {
	payload := strconv.Itoa(len(idx.Entries)) + "|" + idx.Timestamp + "|" + strconv.Itoa(idx.Version)
	return fmt.Sprintf("%016x", xxh3.HashString(payload))
}

// validate enforces the index invariants. A violation is a hard integrity
// error: the file parsed but its contents cannot be trusted.
func (idx *Index) validate() error {
	if idx.Version < indexVersionMin || idx.Version > indexVersionMax {
		return fmt.Errorf("%w: unsupported index version %d", ErrIntegrity, idx.Version)
	}
	for path, h := range idx.Entries {
		meta, ok := idx.Metadata[path]
		if !ok {
			return fmt.Errorf("%w: entry %q has no metadata", ErrIntegrity, path)
		}
		if meta.Hash != h {
			return fmt.Errorf("%w: entry %q hash disagrees with metadata", ErrIntegrity, path)
		}
		if meta.Stage > 3 {
			return fmt.Errorf("%w: entry %q has stage %d", ErrIntegrity, path, meta.Stage)
		}
		if object.ValidateHash(h) != nil {
			return fmt.Errorf("%w: entry %q has malformed hash %q", ErrIntegrity, path, h)
		}
	}
	for path := range idx.Metadata {
		if _, ok := idx.Entries[path]; !ok {
			return fmt.Errorf("%w: orphaned metadata for %q", ErrIntegrity, path)
		}
	}
	if idx.Signature != "" && idx.Signature != idx.sign() {
		return fmt.Errorf("%w: index signature mismatch", ErrIntegrity)
	}
	return nil
}

// indexPath returns the filesystem path to the index file.
func (r *Repo) indexPath() string {
	return filepath.Join(r.StrataDir, "index")
}

// LoadIndex loads the staging area from .strata/index.
//
// A missing or unparseable file yields a fresh empty index: there is no
// trustworthy prior state to protect. A file that parses but violates the
// index invariants is a hard integrity error, never silently replaced.
func (r *Repo) LoadIndex() (*Index, error) {
	data, err := os.ReadFile(r.indexPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewIndex(), nil
		}
		return nil, fmt.Errorf("load index: %w", err)
	}

	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return NewIndex(), nil
	}
	if idx.Entries == nil {
		idx.Entries = make(map[string]object.Hash)
	}
	if idx.Metadata == nil {
		idx.Metadata = make(map[string]*IndexEntry)
	}
	if err := idx.validate(); err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	return &idx, nil
}

// SaveIndex atomically writes the staging area to .strata/index, refreshing
// the timestamp and signature first.
func (r *Repo) SaveIndex(idx *Index) error {
	if idx.Version == 0 {
		idx.Version = indexVersionDefault
	}
	idx.Timestamp = time.Now().UTC().Format(time.RFC3339)
	idx.Signature = idx.sign()

	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("save index: marshal: %w", err)
	}

	// Atomic write via temp file + rename.
	tmp, err := os.CreateTemp(r.StrataDir, ".index-tmp-*")
	if err != nil {
		return fmt.Errorf("save index: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("save index: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save index: close: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save index: chmod: %w", err)
	}

	if err := os.Rename(tmpName, r.indexPath()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save index: rename: %w", err)
	}
	return nil
}

// Add stages the given file paths. Each path is resolved relative to the
// repo root; ignored paths are skipped. For each file the raw content is
// written as a blob to the object store and an IndexEntry is created with
// the blob hash, file metadata and a content checksum. The index is flushed
// once at the end.
func (r *Repo) Add(paths []string) error {
	idx, err := r.LoadIndex()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}

	ic := NewIgnoreChecker(r.RootDir)

	for _, p := range paths {
		relPath, err := r.repoRelPath(p)
		if err != nil {
			return fmt.Errorf("add: resolve path %q: %w", p, err)
		}
		if ic.IsIgnored(relPath) {
			continue
		}

		absPath := filepath.Join(r.RootDir, filepath.FromSlash(relPath))
		content, err := os.ReadFile(absPath)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("add: %q: %w", relPath, ErrNotFound)
			}
			return fmt.Errorf("add: read %q: %w", relPath, err)
		}

		info, err := os.Stat(absPath)
		if err != nil {
			return fmt.Errorf("add: stat %q: %w", relPath, err)
		}

		blobHash, err := r.Store.WriteBlob(&object.Blob{Data: content})
		if err != nil {
			return fmt.Errorf("add: write blob %q: %w", relPath, err)
		}

		checksum := blake2b.Sum256(content)
		idx.Set(&IndexEntry{
			Path:       relPath,
			Hash:       blobHash,
			Mode:       modeFromFileInfo(info),
			Size:       info.Size(),
			ModTime:    info.ModTime().Unix(),
			ChangeTime: time.Now().Unix(),
			Checksum:   hex.EncodeToString(checksum[:]),
		})
	}

	if err := r.SaveIndex(idx); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return nil
}

// Unstage removes the given paths from the staging area. Unknown paths are
// reported as not-found before any change is persisted.
func (r *Repo) Unstage(paths []string) error {
	idx, err := r.LoadIndex()
	if err != nil {
		return fmt.Errorf("unstage: %w", err)
	}

	rels := make([]string, 0, len(paths))
	for _, p := range paths {
		relPath, err := r.repoRelPath(p)
		if err != nil {
			return fmt.Errorf("unstage: resolve path %q: %w", p, err)
		}
		if _, ok := idx.Entries[relPath]; !ok {
			return fmt.Errorf("unstage: %q is not staged: %w", relPath, ErrNotFound)
		}
		rels = append(rels, relPath)
	}
	for _, relPath := range rels {
		idx.Remove(relPath)
	}

	if err := r.SaveIndex(idx); err != nil {
		return fmt.Errorf("unstage: %w", err)
	}
	return nil
}

// modeFromFileInfo maps an on-disk mode to the canonical tree mode string.
func modeFromFileInfo(info os.FileInfo) string {
	if info.Mode()&0o111 != 0 {
		return object.TreeModeExecutable
	}
	return object.TreeModeFile
}
