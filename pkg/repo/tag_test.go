package repo

import (
	"errors"
	"strings"
	"testing"
)

func TestLightweightTag(t *testing.T) {
	r := initTestRepo(t)
	chain := commitChain(t, r, 1)

	if err := r.CreateTag("v1.0.0", chain[0], false); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	h, err := r.ResolveTag("v1.0.0")
	if err != nil {
		t.Fatalf("ResolveTag: %v", err)
	}
	if h != chain[0] {
		t.Errorf("tag target = %s, want %s", h, chain[0])
	}

	// Duplicate without force is refused.
	err = r.CreateTag("v1.0.0", chain[0], false)
	if !errors.Is(err, ErrState) {
		t.Errorf("duplicate tag: got %v, want ErrState", err)
	}
	// Force overwrites.
	if err := r.CreateTag("v1.0.0", chain[0], true); err != nil {
		t.Errorf("forced tag: %v", err)
	}
}

func TestAnnotatedTag(t *testing.T) {
	r := initTestRepo(t)
	chain := commitChain(t, r, 1)

	tagHash, err := r.CreateAnnotatedTag("v2.0.0", chain[0], "Rel Eng <rel@example.com>", "second release", false)
	if err != nil {
		t.Fatalf("CreateAnnotatedTag: %v", err)
	}

	tag, err := r.Store.ReadTag(tagHash)
	if err != nil {
		t.Fatalf("ReadTag: %v", err)
	}
	if tag.TargetHash != chain[0] {
		t.Errorf("TargetHash = %s, want %s", tag.TargetHash, chain[0])
	}
	payload := string(tag.Data)
	if !strings.Contains(payload, "tag v2.0.0") || !strings.Contains(payload, "second release") {
		t.Errorf("payload missing fields:\n%s", payload)
	}

	// The ref points at the tag object, not the commit.
	refTarget, err := r.ResolveTag("v2.0.0")
	if err != nil {
		t.Fatalf("ResolveTag: %v", err)
	}
	if refTarget != tagHash {
		t.Errorf("ref target = %s, want tag object %s", refTarget, tagHash)
	}

	// Annotated tag requires a message.
	_, err = r.CreateAnnotatedTag("v3", chain[0], "", "", false)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("annotated tag without message: got %v, want ErrValidation", err)
	}
}

func TestListAndDeleteTags(t *testing.T) {
	r := initTestRepo(t)
	chain := commitChain(t, r, 1)

	for _, name := range []string{"v1", "v2", "beta"} {
		if err := r.CreateTag(name, chain[0], false); err != nil {
			t.Fatalf("CreateTag(%s): %v", name, err)
		}
	}

	names, err := r.ListTags()
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	want := []string{"beta", "v1", "v2"}
	if len(names) != 3 || names[0] != want[0] || names[1] != want[1] || names[2] != want[2] {
		t.Errorf("ListTags = %v, want %v", names, want)
	}

	if err := r.DeleteTag("beta"); err != nil {
		t.Fatalf("DeleteTag: %v", err)
	}
	err = r.DeleteTag("beta")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteTag of missing tag: got %v, want ErrNotFound", err)
	}
}

func TestTagNameValidation(t *testing.T) {
	r := initTestRepo(t)
	chain := commitChain(t, r, 1)

	bad := []string{"", "/leading", "trailing/", "dot..dot", "with space"}
	for _, name := range bad {
		err := r.CreateTag(name, chain[0], false)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("CreateTag(%q): got %v, want ErrValidation", name, err)
		}
	}
}
