package repo

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/strata-vcs/strata/pkg/object"
)

// FileStatus represents the state of a file in the working tree or index.
type FileStatus int

const (
	StatusClean     FileStatus = iota // file matches between compared areas
	StatusNew                         // in index, not in HEAD tree
	StatusModified                    // in index, different from HEAD
	StatusDeleted                     // in HEAD but not in index, or staged but gone from disk
	StatusUntracked                   // in working dir but not in index
	StatusDirty                       // staged but working copy differs from staged
	StatusConflict                    // unresolved merge stage in index
)

// StatusEntry records the status of a single file.
type StatusEntry struct {
	Path        string     // repo-relative path
	IndexStatus FileStatus // index vs HEAD comparison
	WorkStatus  FileStatus // working tree vs index comparison
}

// Status computes the working tree status for the repository.
//
//  1. Load the index.
//  2. Walk the working directory, skipping .strata/ and ignored paths.
//  3. Compare working tree files against index entries.
//  4. Compare index entries against the HEAD tree.
//  5. Return a sorted list of status entries; clean files are omitted.
func (r *Repo) Status() ([]StatusEntry, error) {
	idx, err := r.LoadIndex()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	ic := NewIgnoreChecker(r.RootDir)

	workFiles := make(map[string]bool)
	err = filepath.WalkDir(r.RootDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(r.RootDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if rel == "." {
			return nil
		}
		if ic.IsIgnored(rel) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			workFiles[rel] = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("status: walk: %w", err)
	}

	result := make(map[string]*StatusEntry)
	at := func(path string) *StatusEntry {
		e, ok := result[path]
		if !ok {
			e = &StatusEntry{Path: path}
			result[path] = e
		}
		return e
	}

	// --- Working tree vs index ---
	for path := range workFiles {
		meta, staged := idx.Metadata[path]
		if !staged {
			e := at(path)
			e.IndexStatus = StatusUntracked
			e.WorkStatus = StatusUntracked
			continue
		}
		if meta.Stage != 0 {
			at(path).WorkStatus = StatusConflict
			continue
		}

		absPath := filepath.Join(r.RootDir, filepath.FromSlash(path))
		content, err := os.ReadFile(absPath)
		if err != nil {
			return nil, fmt.Errorf("status: read %q: %w", path, err)
		}
		if object.HashObject(object.TypeBlob, content) != meta.Hash {
			at(path).WorkStatus = StatusDirty
		}
	}

	// Staged entries missing from disk.
	for path, meta := range idx.Metadata {
		if workFiles[path] {
			continue
		}
		if meta.Stage != 0 {
			at(path).WorkStatus = StatusConflict
		} else {
			at(path).WorkStatus = StatusDeleted
		}
	}

	// --- Index vs HEAD ---
	headEntries := r.headTreeEntries()
	for path, meta := range idx.Metadata {
		e := at(path)
		headHash, inHead := headEntries[path]
		switch {
		case meta.Stage != 0:
			e.IndexStatus = StatusConflict
		case !inHead:
			e.IndexStatus = StatusNew
		case meta.Hash != headHash:
			e.IndexStatus = StatusModified
		default:
			e.IndexStatus = StatusClean
		}
	}
	for path := range headEntries {
		if _, staged := idx.Entries[path]; !staged {
			at(path).IndexStatus = StatusDeleted
		}
	}

	entries := make([]StatusEntry, 0, len(result))
	for _, e := range result {
		if e.IndexStatus == StatusClean && e.WorkStatus == StatusClean {
			continue
		}
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries, nil
}

// headTreeEntries reads the HEAD commit's tree flattened into path -> blob
// hash. A fresh repository with no commits yields an empty map.
func (r *Repo) headTreeEntries() map[string]object.Hash {
	result := make(map[string]object.Hash)

	headHash, err := r.ResolveRef("HEAD")
	if err != nil || headHash == "" {
		return result
	}

	files, err := r.ListTree(headHash)
	if err != nil {
		return result
	}
	for _, f := range files {
		result[f.Path] = f.Hash
	}
	return result
}
