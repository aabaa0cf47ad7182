package repo

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/strata-vcs/strata/pkg/object"
)

const (
	refLockRetryDelay = 5 * time.Millisecond
	refLockWaitLimit  = 2 * time.Second
)

// Repo represents an opened Strata repository.
type Repo struct {
	RootDir   string        // working directory root
	StrataDir string        // .strata/ directory
	Store     *object.Store // content-addressed object store
}

// Init creates a new Strata repository at path. It creates the .strata/
// directory structure: HEAD, objects/, refs/heads/, refs/tags/, logs/ and
// info/, plus an empty index and default config. Returns an error if a
// .strata/ directory already exists.
func Init(path string) (*Repo, error) {
	strataDir := filepath.Join(path, ".strata")

	// Fail if .strata/ already exists.
	if _, err := os.Stat(strataDir); err == nil {
		return nil, fmt.Errorf("init: repository already exists at %s", strataDir)
	}

	dirs := []string{
		filepath.Join(strataDir, "objects"),
		filepath.Join(strataDir, "refs", "heads"),
		filepath.Join(strataDir, "refs", "tags"),
		filepath.Join(strataDir, "logs"),
		filepath.Join(strataDir, "info"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	// Write default HEAD.
	headPath := filepath.Join(strataDir, "HEAD")
	if err := os.WriteFile(headPath, []byte("ref: refs/heads/main\n"), 0o644); err != nil {
		return nil, fmt.Errorf("init: write HEAD: %w", err)
	}

	// Random repository identity.
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("init: repo id entropy: %w", err)
	}
	id := sha256.Sum256(seed[:])
	idPath := filepath.Join(strataDir, "info", "repo-id")
	if err := os.WriteFile(idPath, []byte(hex.EncodeToString(id[:])+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("init: write repo id: %w", err)
	}

	r := &Repo{
		RootDir:   path,
		StrataDir: strataDir,
		Store:     object.NewStore(strataDir),
	}

	if err := r.SaveConfig(DefaultConfig()); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	if err := r.SaveIndex(NewIndex()); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	if err := r.initAuditLog(); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	return r, nil
}

// Open searches upward from path for a .strata/ directory and opens the
// repository. Returns an error if no .strata/ directory is found.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		strataDir := filepath.Join(cur, ".strata")
		info, err := os.Stat(strataDir)
		if err == nil && info.IsDir() {
			return &Repo{
				RootDir:   cur,
				StrataDir: strataDir,
				Store:     object.NewStore(strataDir),
			}, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			// Reached filesystem root without finding .strata/.
			return nil, fmt.Errorf("open: not a strata repository (or any parent up to /)")
		}
		cur = parent
	}
}

// RepoID returns the repository identity written at init time.
func (r *Repo) RepoID() (string, error) {
	data, err := os.ReadFile(filepath.Join(r.StrataDir, "info", "repo-id"))
	if err != nil {
		return "", fmt.Errorf("repo id: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Head reads .strata/HEAD. If the content starts with "ref: ", it returns
// the ref path (e.g., "refs/heads/main"). Otherwise it returns the raw
// content as a detached hash string.
func (r *Repo) Head() (string, error) {
	data, err := os.ReadFile(filepath.Join(r.StrataDir, "HEAD"))
	if err != nil {
		return "", fmt.Errorf("head: %w", err)
	}
	content := strings.TrimRight(string(data), "\n")

	if strings.HasPrefix(content, "ref: ") {
		return strings.TrimPrefix(content, "ref: "), nil
	}
	return content, nil
}

// ResolveRef resolves a ref name to an object hash.
//
// Resolution order:
//  1. If name is "HEAD", read HEAD. If HEAD is symbolic, resolve the target ref.
//  2. If name starts with "refs/", read .strata/<name>.
//  3. Otherwise, try "refs/heads/<name>".
func (r *Repo) ResolveRef(name string) (object.Hash, error) {
	if name == "HEAD" {
		head, err := r.Head()
		if err != nil {
			return "", err
		}
		if strings.HasPrefix(head, "refs/") {
			return r.ResolveRef(head)
		}
		// Detached HEAD: the value is a hash.
		return object.Hash(head), nil
	}

	var refPath string
	if strings.HasPrefix(name, "refs/") {
		refPath = filepath.Join(r.StrataDir, name)
	} else {
		refPath = filepath.Join(r.StrataDir, "refs", "heads", name)
	}

	data, err := os.ReadFile(refPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("resolve ref %q: %w", name, ErrNotFound)
		}
		return "", fmt.Errorf("resolve ref %q: %w", name, err)
	}
	return object.Hash(strings.TrimRight(string(data), "\n")), nil
}

// UpdateRef writes a hash to the named ref file under .strata/. Parent
// directories are created as needed.
func (r *Repo) UpdateRef(name string, h object.Hash) error {
	return r.UpdateRefCAS(name, h)
}

// UpdateRefCAS writes a hash to the named ref file under .strata/ using
// lockfile + rename atomic semantics. If expectedOld is provided, the
// update only succeeds when the current ref hash matches it.
func (r *Repo) UpdateRefCAS(name string, h object.Hash, expectedOld ...object.Hash) error {
	if len(expectedOld) > 1 {
		return fmt.Errorf("update ref %q: expected at most one old hash", name)
	}
	hasExpectedOld := len(expectedOld) == 1
	wantOldHash := object.Hash("")
	if hasExpectedOld {
		wantOldHash = expectedOld[0]
	}

	refPath := filepath.Join(r.StrataDir, name)

	dir := filepath.Dir(refPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("update ref %q: mkdir: %w", name, err)
	}

	lockPath := refPath + ".lock"
	lockFile, err := acquireRefLock(lockPath)
	if err != nil {
		return fmt.Errorf("update ref %q: lock: %w", name, err)
	}
	cleanupLock := true
	defer func() {
		if lockFile != nil {
			_ = lockFile.Close()
		}
		if cleanupLock {
			_ = os.Remove(lockPath)
		}
	}()

	oldHash, err := readRefHash(refPath)
	if err != nil {
		return fmt.Errorf("update ref %q: read old hash: %w", name, err)
	}
	if hasExpectedOld && oldHash != wantOldHash {
		return fmt.Errorf(
			"update ref %q: %w (expected %s, found %s)",
			name,
			ErrRefCASMismatch,
			wantOldHash,
			oldHash,
		)
	}

	if _, err := lockFile.WriteString(string(h) + "\n"); err != nil {
		return fmt.Errorf("update ref %q: write: %w", name, err)
	}
	if err := lockFile.Sync(); err != nil {
		return fmt.Errorf("update ref %q: sync: %w", name, err)
	}
	if err := lockFile.Close(); err != nil {
		lockFile = nil
		return fmt.Errorf("update ref %q: close: %w", name, err)
	}
	lockFile = nil

	if err := os.Rename(lockPath, refPath); err != nil {
		return fmt.Errorf("update ref %q: rename: %w", name, err)
	}
	cleanupLock = false

	return nil
}

func acquireRefLock(lockPath string) (*os.File, error) {
	deadline := time.Now().Add(refLockWaitLimit)
	for {
		f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, nil
		}
		if os.IsExist(err) {
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("timeout waiting for lock %q", lockPath)
			}
			time.Sleep(refLockRetryDelay)
			continue
		}
		return nil, err
	}
}

func readRefHash(refPath string) (object.Hash, error) {
	data, err := os.ReadFile(refPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return object.Hash(strings.TrimSpace(string(data))), nil
}

// repoRelPath converts a path (absolute, or relative to CWD) into a path
// relative to the repository root. If the path is already relative and does
// not start with the repo root, it is assumed to already be repo-relative.
func (r *Repo) repoRelPath(p string) (string, error) {
	if filepath.IsAbs(p) {
		rel, err := filepath.Rel(r.RootDir, p)
		if err != nil {
			return "", fmt.Errorf("cannot make %q relative to %q: %w", p, r.RootDir, err)
		}
		return filepath.ToSlash(rel), nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return filepath.ToSlash(filepath.Clean(p)), nil
	}

	abs := filepath.Join(cwd, p)
	rel, err := filepath.Rel(r.RootDir, abs)
	if err != nil {
		return filepath.ToSlash(filepath.Clean(p)), nil
	}

	// If the relative path starts with "..", p is outside the repo.
	// In that case, treat the original p as already repo-relative.
	if len(rel) >= 2 && rel[:2] == ".." {
		return filepath.ToSlash(filepath.Clean(p)), nil
	}

	return filepath.ToSlash(rel), nil
}
