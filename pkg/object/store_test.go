package object

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zlib"
)

func TestHashBytesDeterminism(t *testing.T) {
	data := []byte("hello world")
	h1 := HashBytes(data)
	h2 := HashBytes(data)
	if h1 != h2 {
		t.Errorf("HashBytes not deterministic: %q != %q", h1, h2)
	}
	if len(h1) != 64 {
		t.Errorf("Hash length: got %d, want 64", len(h1))
	}
}

func TestHashObjectEnvelope(t *testing.T) {
	data := []byte("hello")
	h1 := HashObject(TypeBlob, data)
	h2 := HashBytes(data)
	if h1 == h2 {
		t.Error("HashObject should differ from HashBytes due to envelope")
	}

	// Same type+data => same hash
	h3 := HashObject(TypeBlob, data)
	if h1 != h3 {
		t.Error("HashObject not deterministic")
	}

	// Different type => different hash
	h4 := HashObject(TypeTree, data)
	if h1 == h4 {
		t.Error("Different types should produce different hashes")
	}
}

func TestValidateHash(t *testing.T) {
	good := []Hash{
		"abcd1234",
		HashBytes([]byte("anything")),
	}
	for _, h := range good {
		if err := ValidateHash(h); err != nil {
			t.Errorf("ValidateHash(%q): unexpected error %v", h, err)
		}
	}

	bad := []Hash{
		"",
		"abc123",  // too short
		"ABCD1234", // uppercase
		"abcd123g", // non-hex
		Hash(strings.Repeat("a", 65)),
	}
	for _, h := range bad {
		err := ValidateHash(h)
		if !errors.Is(err, ErrBadHash) {
			t.Errorf("ValidateHash(%q): got %v, want ErrBadHash", h, err)
		}
	}
}

func tempStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	return NewStore(dir)
}

func TestStoreWriteRead(t *testing.T) {
	s := tempStore(t)
	data := []byte("hello world")
	h, err := s.Write(TypeBlob, data)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(h) != 64 {
		t.Errorf("Hash length: got %d, want 64", len(h))
	}

	gotType, gotData, err := s.Read(h)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if gotType != TypeBlob {
		t.Errorf("Type: got %q, want %q", gotType, TypeBlob)
	}
	if !bytes.Equal(gotData, data) {
		t.Errorf("Data: got %q, want %q", gotData, data)
	}
}

func TestStoreHas(t *testing.T) {
	s := tempStore(t)
	h, err := s.Write(TypeBlob, []byte("exists"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !s.Has(h) {
		t.Error("Has returned false for existing object")
	}
	if s.Has(Hash("0000000000000000000000000000000000000000000000000000000000000000")) {
		t.Error("Has returned true for non-existing object")
	}
	if s.Has(Hash("not a hash")) {
		t.Error("Has returned true for malformed hash")
	}
}

func TestStoreFanoutLayout(t *testing.T) {
	s := tempStore(t)
	h, err := s.Write(TypeBlob, []byte("fanout test"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	objPath := filepath.Join(s.root, "objects", string(h[:2]), string(h[2:]))
	if _, err := os.Stat(objPath); os.IsNotExist(err) {
		t.Errorf("Expected fan-out file at %s", objPath)
	}
}

func TestStoreDuplicateWrite(t *testing.T) {
	s := tempStore(t)
	data := []byte("duplicate")
	h1, err := s.Write(TypeBlob, data)
	if err != nil {
		t.Fatalf("Write 1: %v", err)
	}
	h2, err := s.Write(TypeBlob, data)
	if err != nil {
		t.Fatalf("Write 2: %v", err)
	}
	if h1 != h2 {
		t.Errorf("Same content produced different hashes: %q vs %q", h1, h2)
	}
}

func TestStoreReadMissing(t *testing.T) {
	s := tempStore(t)
	_, _, err := s.Read(Hash("0000000000000000000000000000000000000000000000000000000000000000"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Read of missing object: got %v, want ErrNotFound", err)
	}
}

func TestStoreReadBadHash(t *testing.T) {
	s := tempStore(t)
	_, _, err := s.Read(Hash("zz"))
	if !errors.Is(err, ErrBadHash) {
		t.Errorf("Read with malformed hash: got %v, want ErrBadHash", err)
	}
}

func TestStoreReadRequiresFullHash(t *testing.T) {
	s := tempStore(t)
	h, err := s.Write(TypeBlob, []byte("prefix reads must go through expansion"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	// A syntactically valid prefix is still not a readable address: objects
	// live under their full hash and the rehash check needs all 64 chars.
	if _, _, err := s.Read(h[:12]); !errors.Is(err, ErrBadHash) {
		t.Errorf("Read with 12-char prefix: got %v, want ErrBadHash", err)
	}

	if _, _, err := s.Read(h); err != nil {
		t.Errorf("Read with full hash: %v", err)
	}
}

func TestStoreOnDiskCompression(t *testing.T) {
	// The object file holds the zlib-compressed envelope "type len\0content".
	s := tempStore(t)
	data := []byte("format check")
	h, err := s.Write(TypeBlob, data)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := os.Open(filepath.Join(s.root, "objects", string(h[:2]), string(h[2:])))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	zr, err := zlib.NewReader(f)
	if err != nil {
		t.Fatalf("object file is not zlib data: %v", err)
	}
	defer zr.Close()

	var raw bytes.Buffer
	if _, err := raw.ReadFrom(zr); err != nil {
		t.Fatalf("decompress: %v", err)
	}
	expected := "blob 12\x00format check"
	if raw.String() != expected {
		t.Errorf("Decompressed format: got %q, want %q", raw.String(), expected)
	}
}

func TestStoreReadDetectsBitFlip(t *testing.T) {
	s := tempStore(t)
	h, err := s.Write(TypeBlob, []byte("pristine content that should stay pristine"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	// Replace the object file with a valid zlib stream of different content.
	// The decompressed bytes no longer hash to h, so Read must refuse them.
	var forged bytes.Buffer
	zw := zlib.NewWriter(&forged)
	zw.Write([]byte("blob 6\x00forged"))
	zw.Close()
	objPath := filepath.Join(s.root, "objects", string(h[:2]), string(h[2:]))
	if err := os.WriteFile(objPath, forged.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, _, err = s.Read(h)
	if !errors.Is(err, ErrIntegrity) {
		t.Errorf("Read of tampered object: got %v, want ErrIntegrity", err)
	}
}

func TestStoreReadDetectsGarbage(t *testing.T) {
	s := tempStore(t)
	h, err := s.Write(TypeBlob, []byte("will be clobbered"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	objPath := filepath.Join(s.root, "objects", string(h[:2]), string(h[2:]))
	if err := os.WriteFile(objPath, []byte("not zlib at all"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, _, err = s.Read(h)
	if !errors.Is(err, ErrIntegrity) {
		t.Errorf("Read of garbage object: got %v, want ErrIntegrity", err)
	}
}

func TestStoreSize(t *testing.T) {
	s := tempStore(t)
	data := []byte("twelve bytes")
	h, err := s.Write(TypeBlob, data)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	n, err := s.Size(h)
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if n != len(data) {
		t.Errorf("Size: got %d, want %d", n, len(data))
	}
}

func TestStoreList(t *testing.T) {
	s := tempStore(t)

	empty, err := s.List()
	if err != nil {
		t.Fatalf("List empty: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("List of empty store: got %d hashes", len(empty))
	}

	var want []Hash
	for _, content := range []string{"one", "two", "three"} {
		h, err := s.Write(TypeBlob, []byte(content))
		if err != nil {
			t.Fatalf("Write %q: %v", content, err)
		}
		want = append(want, h)
	}

	got, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("List length: got %d, want %d", len(got), len(want))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1] >= got[i] {
			t.Errorf("List not sorted at %d: %q >= %q", i, got[i-1], got[i])
		}
	}
}

func TestStoreVerifyAll(t *testing.T) {
	s := tempStore(t)
	var hashes []Hash
	for _, content := range []string{"alpha", "beta", "gamma"} {
		h, err := s.Write(TypeBlob, []byte(content))
		if err != nil {
			t.Fatalf("Write %q: %v", content, err)
		}
		hashes = append(hashes, h)
	}

	corrupt, err := s.VerifyAll()
	if err != nil {
		t.Fatalf("VerifyAll: %v", err)
	}
	if len(corrupt) != 0 {
		t.Errorf("VerifyAll on healthy store: got %v", corrupt)
	}

	// Clobber two of the three objects; the sweep must report both.
	for _, h := range hashes[:2] {
		objPath := filepath.Join(s.root, "objects", string(h[:2]), string(h[2:]))
		if err := os.WriteFile(objPath, []byte("corrupted"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	corrupt, err = s.VerifyAll()
	if err != nil {
		t.Fatalf("VerifyAll after corruption: %v", err)
	}
	if len(corrupt) != 2 {
		t.Fatalf("VerifyAll: got %d corrupt hashes, want 2", len(corrupt))
	}
	found := map[Hash]bool{}
	for _, h := range corrupt {
		found[h] = true
	}
	if !found[hashes[0]] || !found[hashes[1]] {
		t.Errorf("VerifyAll reported %v, want %v and %v", corrupt, hashes[0], hashes[1])
	}
}

func TestStoreWriteReadBlob(t *testing.T) {
	s := tempStore(t)
	orig := &Blob{Data: []byte("blob content\nwith newlines")}
	h, err := s.WriteBlob(orig)
	if err != nil {
		t.Fatalf("WriteBlob: %v", err)
	}
	got, err := s.ReadBlob(h)
	if err != nil {
		t.Fatalf("ReadBlob: %v", err)
	}
	if !bytes.Equal(got.Data, orig.Data) {
		t.Errorf("Blob round-trip: got %q, want %q", got.Data, orig.Data)
	}
}

func TestStoreWriteReadTree(t *testing.T) {
	s := tempStore(t)
	orig := &TreeObj{
		Entries: []TreeEntry{
			{
				Name: "main.go",
				Hash: Hash("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"),
			},
			{
				Name:  "pkg",
				IsDir: true,
				Hash:  Hash("cccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccc"),
			},
		},
	}
	h, err := s.WriteTree(orig)
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	got, err := s.ReadTree(h)
	if err != nil {
		t.Fatalf("ReadTree: %v", err)
	}
	if len(got.Entries) != 2 {
		t.Fatalf("Entries length: got %d, want 2", len(got.Entries))
	}
	// Should be sorted: main.go before pkg
	if got.Entries[0].Name != "main.go" || got.Entries[1].Name != "pkg" {
		t.Errorf("Tree entries not sorted correctly")
	}
	if !got.Entries[1].IsDir || got.Entries[1].Mode != TreeModeDir {
		t.Errorf("Directory entry lost its mode: %+v", got.Entries[1])
	}
}

func TestStoreWriteReadCommit(t *testing.T) {
	s := tempStore(t)
	orig := &CommitObj{
		TreeHash:  Hash("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"),
		Parents:   []Hash{Hash("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")},
		Author:    Signature{Name: "Test User", Email: "test@example.com", Timestamp: 1700000000},
		Committer: Signature{Name: "Test User", Email: "test@example.com", Timestamp: 1700000000},
		Message:   "test commit\n\nWith details.",
	}
	h, err := s.WriteCommit(orig)
	if err != nil {
		t.Fatalf("WriteCommit: %v", err)
	}
	got, err := s.ReadCommit(h)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if got.TreeHash != orig.TreeHash {
		t.Errorf("TreeHash mismatch")
	}
	if got.Author != orig.Author {
		t.Errorf("Author mismatch: got %+v, want %+v", got.Author, orig.Author)
	}
	if got.Committer != orig.Committer {
		t.Errorf("Committer mismatch")
	}
	if got.Message != orig.Message {
		t.Errorf("Message mismatch: got %q, want %q", got.Message, orig.Message)
	}
}

func TestStoreWriteReadTag(t *testing.T) {
	s := tempStore(t)
	target := Hash("dddddddddddddddddddddddddddddddddddddddddddddddddddddddddddddddd")
	orig := &TagObj{TargetHash: target, Data: []byte("tag v1.0.0\n\nrelease\n")}
	h, err := s.WriteTag(orig)
	if err != nil {
		t.Fatalf("WriteTag: %v", err)
	}
	got, err := s.ReadTag(h)
	if err != nil {
		t.Fatalf("ReadTag: %v", err)
	}
	if got.TargetHash != target {
		t.Errorf("TargetHash: got %q, want %q", got.TargetHash, target)
	}
	if !bytes.Equal(got.Data, orig.Data) {
		t.Errorf("Tag payload round-trip mismatch")
	}
}

func TestStoreReadBlobTypeMismatch(t *testing.T) {
	s := tempStore(t)
	h, err := s.WriteTree(&TreeObj{})
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	_, err = s.ReadBlob(h)
	if err == nil {
		t.Error("ReadBlob on tree object should return error")
	}
	if !strings.Contains(err.Error(), "type mismatch") {
		t.Errorf("Expected type mismatch error, got: %v", err)
	}
}
