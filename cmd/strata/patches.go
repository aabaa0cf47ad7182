package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/strata-vcs/strata/pkg/diff"
	"github.com/strata-vcs/strata/pkg/repo"
)

// headBlobs returns path -> content for the HEAD commit's tree. A repo
// with no commits yields an empty map.
func headBlobs(r *repo.Repo) (map[string]string, error) {
	head, err := r.CurrentCommit()
	if err != nil || head == "" {
		return map[string]string{}, nil
	}
	entries, err := r.ListTree(head)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		b, err := r.Store.ReadBlob(e.Hash)
		if err != nil {
			return nil, err
		}
		m[e.Path] = string(b.Data)
	}
	return m, nil
}

// stagedPatch renders the index against HEAD: one unified patch per
// staged file that differs from its HEAD content. The index is emptied
// by each commit, so only freshly staged files appear.
func stagedPatch(r *repo.Repo) (string, error) {
	idx, err := r.LoadIndex()
	if err != nil {
		return "", err
	}
	head, err := headBlobs(r)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, path := range idx.Paths() {
		b, err := r.Store.ReadBlob(idx.Entries[path])
		if err != nil {
			return "", err
		}
		sb.WriteString(diff.FilePatch(path, "staged", head[path], string(b.Data)))
	}
	return sb.String(), nil
}

// workingPatch renders the working tree against the index for every
// staged file. Files missing from disk diff against empty content.
func workingPatch(r *repo.Repo) (string, error) {
	idx, err := r.LoadIndex()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, path := range idx.Paths() {
		b, err := r.Store.ReadBlob(idx.Entries[path])
		if err != nil {
			return "", err
		}

		var onDisk string
		data, err := os.ReadFile(filepath.Join(r.RootDir, filepath.FromSlash(path)))
		if err == nil {
			onDisk = string(data)
		} else if !os.IsNotExist(err) {
			return "", err
		}

		sb.WriteString(diff.FilePatch(path, "working", string(b.Data), onDisk))
	}
	return sb.String(), nil
}
