package repo

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/strata-vcs/strata/pkg/object"
)

// TreeFileEntry represents a single file in a flattened tree.
type TreeFileEntry struct {
	Path string
	Hash object.Hash
	Mode string
}

// BuildTree converts the flat index entries into a hierarchical tree
// structure, writing TreeObj objects to the store and returning the root
// hash. Index paths use forward slashes (e.g. "pkg/util/util.go").
//
// Each level partitions its paths by first segment: direct children become
// blob entries, each subdirectory group recurses into a child tree that is
// persisted before the parent references it. Entries are sorted by name, so
// the same staged path/hash set always yields the same root hash no matter
// what order paths were staged in.
func (r *Repo) BuildTree(idx *Index) (object.Hash, error) {
	return r.buildTreeDir(idx, "")
}

// buildTreeDir builds a TreeObj for the given directory prefix and writes it
// to the store. It returns the tree's hash.
func (r *Repo) buildTreeDir(idx *Index, prefix string) (object.Hash, error) {
	files := make(map[string]*IndexEntry) // name -> entry
	subdirs := make(map[string]struct{})  // immediate child dir names

	for p, entry := range idx.Metadata {
		var rel string
		if prefix == "" {
			rel = p
		} else {
			if !strings.HasPrefix(p, prefix+"/") {
				continue
			}
			rel = p[len(prefix)+1:]
		}

		slash := strings.IndexByte(rel, '/')
		if slash < 0 {
			files[rel] = entry
		} else {
			subdirs[rel[:slash]] = struct{}{}
		}
	}

	names := make([]string, 0, len(files)+len(subdirs))
	for name := range files {
		names = append(names, name)
	}
	for name := range subdirs {
		// A name cannot be both a file and a directory. Add never
		// produces this, but Index.Set can.
		if _, isFile := files[name]; isFile {
			full := name
			if prefix != "" {
				full = prefix + "/" + name
			}
			return "", fmt.Errorf("build tree: %q staged as both file and directory: %w", full, ErrValidation)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var entries []object.TreeEntry
	for _, name := range names {
		if entry, isFile := files[name]; isFile {
			entries = append(entries, object.TreeEntry{
				Name: name,
				Mode: entry.Mode,
				Hash: entry.Hash,
			})
		} else {
			childPrefix := name
			if prefix != "" {
				childPrefix = prefix + "/" + name
			}
			subHash, err := r.buildTreeDir(idx, childPrefix)
			if err != nil {
				return "", fmt.Errorf("build tree %q: %w", childPrefix, err)
			}
			entries = append(entries, object.TreeEntry{
				Name:  name,
				IsDir: true,
				Mode:  object.TreeModeDir,
				Hash:  subHash,
			})
		}
	}

	treeObj := &object.TreeObj{Entries: entries}
	h, err := r.Store.WriteTree(treeObj)
	if err != nil {
		return "", fmt.Errorf("write tree (prefix=%q): %w", prefix, err)
	}
	return h, nil
}

// FlattenTree walks a tree object recursively, returning all file entries
// with their full paths (using forward slashes).
func (r *Repo) FlattenTree(h object.Hash) ([]TreeFileEntry, error) {
	return r.flattenTreeRec(h, "")
}

func (r *Repo) flattenTreeRec(h object.Hash, prefix string) ([]TreeFileEntry, error) {
	treeObj, err := r.Store.ReadTree(h)
	if err != nil {
		return nil, fmt.Errorf("flatten tree: read %s: %w", h, err)
	}

	var result []TreeFileEntry
	for _, entry := range treeObj.Entries {
		fullPath := entry.Name
		if prefix != "" {
			fullPath = path.Join(prefix, entry.Name)
		}

		if entry.IsDir {
			sub, err := r.flattenTreeRec(entry.Hash, fullPath)
			if err != nil {
				return nil, err
			}
			result = append(result, sub...)
		} else {
			result = append(result, TreeFileEntry{
				Path: fullPath,
				Hash: entry.Hash,
				Mode: entry.Mode,
			})
		}
	}
	return result, nil
}

// ListTree returns the flattened file listing for a commit's tree.
func (r *Repo) ListTree(commitHash object.Hash) ([]TreeFileEntry, error) {
	commit, err := r.Store.ReadCommit(commitHash)
	if err != nil {
		return nil, fmt.Errorf("list tree: %w", err)
	}
	return r.FlattenTree(commit.TreeHash)
}
