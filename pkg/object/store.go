package object

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zlib"
)

// Store is a content-addressed object store with a 2-character fan-out
// directory layout: objects/ab/cdef0123... Object files hold the
// zlib-compressed envelope "type len\0content" and are immutable.
type Store struct {
	root string
}

// NewStore creates a Store rooted at the given directory. The objects/
// subdirectory is created lazily on first write.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// objectPath returns the filesystem path for a given hash.
func (s *Store) objectPath(h Hash) string {
	return filepath.Join(s.root, "objects", string(h[:2]), string(h[2:]))
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	if ValidateHash(h) != nil {
		return false
	}
	_, err := os.Stat(s.objectPath(h))
	return err == nil
}

// Write stores an object and returns its content hash. The envelope
// "type len\0content" is hashed with SHA-256, zlib-compressed and written
// atomically via temp + rename. After the rename the object is read back,
// decompressed and rehashed; on mismatch the file is deleted and the write
// fails with ErrIntegrity. Writing an object that already exists is a no-op.
func (s *Store) Write(objType ObjectType, data []byte) (Hash, error) {
	envelope := fmt.Sprintf("%s %d\x00", objType, len(data))
	raw := append([]byte(envelope), data...)

	h := HashObject(objType, data)

	// Fast path: already exists.
	if s.Has(h) {
		return h, nil
	}

	dir := filepath.Join(s.root, "objects", string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("object write mkdir: %w", err)
	}

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(raw); err != nil {
		zw.Close()
		return "", fmt.Errorf("object write compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("object write compress close: %w", err)
	}

	// Atomic write via temp + rename.
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("object write tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(compressed.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("object write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write close: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write chmod: %w", err)
	}

	dest := s.objectPath(h)
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write rename: %w", err)
	}

	// Read-back verification: the object is not considered stored until the
	// on-disk bytes decompress and rehash to the expected digest.
	stored, err := s.readRaw(h)
	if err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("object write verify %s: %w", h, err)
	}
	if HashBytes(stored) != h {
		os.Remove(dest)
		return "", fmt.Errorf("object write verify %s: %w: stored bytes hash to %s", h, ErrIntegrity, HashBytes(stored))
	}

	return h, nil
}

// readRaw reads and decompresses the envelope bytes for a hash.
func (s *Store) readRaw(h Hash) ([]byte, error) {
	f, err := os.Open(s.objectPath(h))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, h)
		}
		return nil, fmt.Errorf("object open %s: %w", h, err)
	}
	defer f.Close()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w: not valid zlib data: %v", h, ErrIntegrity, err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w: decompress: %v", h, ErrIntegrity, err)
	}
	return raw, nil
}

// Read retrieves an object by hash, returning its type and raw content.
// Only full 64-character hashes are accepted: objects are stored under
// their full hash, so a prefix can never name a fan-out path, and the
// full hash is what the rehash check verifies against. Prefixes are
// expanded by callers before reading.
//
// The decompressed envelope is rehashed and compared against the
// requested hash before any bytes are returned, so a corrupted object
// can never be read as valid content.
func (s *Store) Read(h Hash) (ObjectType, []byte, error) {
	if err := ValidateHash(h); err != nil {
		return "", nil, err
	}
	if len(h) != hashHexLen {
		return "", nil, fmt.Errorf("read %q: %w: full %d-character hash required", h, ErrBadHash, hashHexLen)
	}

	raw, err := s.readRaw(h)
	if err != nil {
		return "", nil, err
	}

	if got := HashBytes(raw); got != h {
		return "", nil, fmt.Errorf("object %s: %w: content hashes to %s", h, ErrIntegrity, got)
	}

	// Parse envelope: "type len\0content"
	nulIdx := bytes.IndexByte(raw, 0)
	if nulIdx < 0 {
		return "", nil, fmt.Errorf("object %s: %w: no NUL separator", h, ErrIntegrity)
	}
	header := string(raw[:nulIdx])
	content := raw[nulIdx+1:]

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("object %s: %w: invalid header %q", h, ErrIntegrity, header)
	}
	objType := ObjectType(parts[0])
	length, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", nil, fmt.Errorf("object %s: %w: invalid length %q", h, ErrIntegrity, parts[1])
	}
	if len(content) != length {
		return "", nil, fmt.Errorf("object %s: %w: length mismatch (header=%d, actual=%d)", h, ErrIntegrity, length, len(content))
	}

	return objType, content, nil
}

// Size returns the uncompressed content length of an object.
func (s *Store) Size(h Hash) (int, error) {
	_, content, err := s.Read(h)
	if err != nil {
		return 0, err
	}
	return len(content), nil
}

// List returns all object hashes in the store, sorted.
func (s *Store) List() ([]Hash, error) {
	objectsDir := filepath.Join(s.root, "objects")
	fanout, err := os.ReadDir(objectsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("object list: %w", err)
	}

	var hashes []Hash
	for _, d := range fanout {
		if !d.IsDir() || len(d.Name()) != 2 {
			continue
		}
		files, err := os.ReadDir(filepath.Join(objectsDir, d.Name()))
		if err != nil {
			return nil, fmt.Errorf("object list %s: %w", d.Name(), err)
		}
		for _, f := range files {
			if f.IsDir() || strings.HasPrefix(f.Name(), ".") {
				continue
			}
			hashes = append(hashes, Hash(d.Name()+f.Name()))
		}
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })
	return hashes, nil
}

// VerifyAll sweeps the whole store and returns the hashes of every object
// that fails verification. The sweep never aborts early: a corrupt object
// is recorded and the scan continues.
func (s *Store) VerifyAll() ([]Hash, error) {
	hashes, err := s.List()
	if err != nil {
		return nil, err
	}

	var corrupt []Hash
	for _, h := range hashes {
		if _, _, err := s.Read(h); err != nil {
			corrupt = append(corrupt, h)
		}
	}
	return corrupt, nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// WriteBlob serializes and stores a Blob.
func (s *Store) WriteBlob(b *Blob) (Hash, error) {
	return s.Write(TypeBlob, MarshalBlob(b))
}

// ReadBlob reads and deserializes a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeBlob {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, TypeBlob)
	}
	return UnmarshalBlob(data)
}

// WriteTree serializes and stores a TreeObj.
func (s *Store) WriteTree(tr *TreeObj) (Hash, error) {
	return s.Write(TypeTree, MarshalTree(tr))
}

// ReadTree reads and deserializes a TreeObj.
func (s *Store) ReadTree(h Hash) (*TreeObj, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeTree {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, TypeTree)
	}
	return UnmarshalTree(data)
}

// WriteCommit serializes and stores a CommitObj.
func (s *Store) WriteCommit(c *CommitObj) (Hash, error) {
	return s.Write(TypeCommit, MarshalCommit(c))
}

// ReadCommit reads and deserializes a CommitObj.
func (s *Store) ReadCommit(h Hash) (*CommitObj, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeCommit {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, TypeCommit)
	}
	return UnmarshalCommit(data)
}

// WriteTag serializes and stores a TagObj.
func (s *Store) WriteTag(t *TagObj) (Hash, error) {
	return s.Write(TypeTag, MarshalTag(t))
}

// ReadTag reads and deserializes a TagObj.
func (s *Store) ReadTag(h Hash) (*TagObj, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeTag {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, TypeTag)
	}
	return UnmarshalTag(data)
}
