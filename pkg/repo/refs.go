package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/strata-vcs/strata/pkg/object"
)

// ListRefs lists references under .strata/refs.
// Names are returned relative to refs root, e.g. "heads/main", "tags/v1".
func (r *Repo) ListRefs(prefix string) (map[string]object.Hash, error) {
	root := filepath.Join(r.StrataDir, "refs")
	dir := root
	if strings.TrimSpace(prefix) != "" {
		dir = filepath.Join(root, filepath.FromSlash(prefix))
	}

	refs := make(map[string]object.Hash)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".lock") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		refs[name] = object.Hash(strings.TrimSpace(string(data)))
		return nil
	})
	if os.IsNotExist(err) {
		return refs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	return refs, nil
}

// ResolveCommitish resolves a branch name, tag name, full hash or unique hex
// prefix (at least 4 characters) to a commit hash. Tag refs pointing at tag
// objects are dereferenced to their target.
func (r *Repo) ResolveCommitish(target string) (object.Hash, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", fmt.Errorf("resolve %q: %w: empty target", target, ErrValidation)
	}

	if h, err := r.ResolveRef("refs/heads/" + target); err == nil {
		return h, nil
	}
	if h, err := r.ResolveRef("refs/tags/" + target); err == nil {
		return r.derefTag(h)
	}

	if isHexPrefix(target) && len(target) >= 4 {
		return r.expandHashPrefix(target)
	}
	return "", fmt.Errorf("resolve %q: %w", target, ErrNotFound)
}

// derefTag follows a tag object to its target; non-tag hashes pass through.
func (r *Repo) derefTag(h object.Hash) (object.Hash, error) {
	tag, err := r.Store.ReadTag(h)
	if err != nil {
		return h, nil
	}
	return tag.TargetHash, nil
}

// expandHashPrefix finds the single object whose hash starts with prefix.
func (r *Repo) expandHashPrefix(prefix string) (object.Hash, error) {
	if len(prefix) == 64 {
		if r.Store.Has(object.Hash(prefix)) {
			return object.Hash(prefix), nil
		}
		return "", fmt.Errorf("resolve %q: %w", prefix, ErrNotFound)
	}

	hashes, err := r.Store.List()
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", prefix, err)
	}
	var found object.Hash
	for _, h := range hashes {
		if strings.HasPrefix(string(h), prefix) {
			if found != "" {
				return "", fmt.Errorf("resolve %q: %w: ambiguous prefix", prefix, ErrValidation)
			}
			found = h
		}
	}
	if found == "" {
		return "", fmt.Errorf("resolve %q: %w", prefix, ErrNotFound)
	}
	return found, nil
}

func isHexPrefix(s string) bool {
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return len(s) > 0
}
