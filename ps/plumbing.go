package ps

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/filemode"
	"github.com/go-git/go-git/v6/plumbing/object"

	"github.com/nickyhof/SchemaSpec/core"
)

// TreeChange is one blob to place in a tree being built.
type TreeChange struct {
	Path     string // e.g. "database/table.table"
	BlobHash plumbing.Hash
}

// createBlob stores data as a blob object without touching the worktree.
func (p *Persistence) createBlob(data []byte) (plumbing.Hash, error) {
	obj := p.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(data)))

	writer, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to create blob writer: %w", err)
	}

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return plumbing.ZeroHash, fmt.Errorf("failed to write blob data: %w", err)
	}
	writer.Close()

	hash, err := p.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to store blob: %w", err)
	}

	return hash, nil
}

// headCommit returns the commit HEAD points at, or nil before the first
// snapshot.
func (p *Persistence) headCommit() (*object.Commit, error) {
	headRef, err := p.repo.Head()
	if err != nil {
		return nil, nil
	}

	commit, err := p.repo.CommitObject(headRef.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get head commit: %w", err)
	}
	return commit, nil
}

// storeTree encodes entries (sorted the way Git requires) as a tree object.
func (p *Persistence) storeTree(entries []object.TreeEntry) (plumbing.Hash, error) {
	sort.Slice(entries, func(i, j int) bool {
		nameI := entries[i].Name
		nameJ := entries[j].Name
		if entries[i].Mode == filemode.Dir {
			nameI += "/"
		}
		if entries[j].Mode == filemode.Dir {
			nameJ += "/"
		}
		return nameI < nameJ
	})

	tree := &object.Tree{Entries: entries}

	obj := p.repo.Storer.NewEncodedObject()
	if err := tree.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to encode tree: %w", err)
	}

	hash, err := p.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to store tree: %w", err)
	}

	return hash, nil
}

// buildTree writes a tree containing exactly the given changes, creating
// intermediate directories as needed.
func (p *Persistence) buildTree(changes []TreeChange) (plumbing.Hash, error) {
	leaves := make([]object.TreeEntry, 0)
	grouped := make(map[string][]TreeChange)

	for _, change := range changes {
		dir, rest, nested := strings.Cut(change.Path, "/")
		if !nested {
			leaves = append(leaves, object.TreeEntry{
				Name: change.Path,
				Mode: filemode.Regular,
				Hash: change.BlobHash,
			})
			continue
		}
		grouped[dir] = append(grouped[dir], TreeChange{Path: rest, BlobHash: change.BlobHash})
	}

	entries := leaves
	for dir, subChanges := range grouped {
		subTreeHash, err := p.buildTree(subChanges)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		entries = append(entries, object.TreeEntry{
			Name: dir,
			Mode: filemode.Dir,
			Hash: subTreeHash,
		})
	}

	return p.storeTree(entries)
}

// createCommit commits treeHash on top of HEAD and advances the branch HEAD
// refers to.
func (p *Persistence) createCommit(treeHash plumbing.Hash, identity core.Identity, message string) (Transaction, error) {
	var parentHashes []plumbing.Hash
	headRef, err := p.repo.Head()
	if err == nil {
		parentHashes = []plumbing.Hash{headRef.Hash()}
	}

	sig := object.Signature{
		Name:  identity.Name,
		Email: identity.Email,
		When:  time.Now(),
	}

	commit := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      message,
		TreeHash:     treeHash,
		ParentHashes: parentHashes,
	}

	obj := p.repo.Storer.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		return Transaction{}, fmt.Errorf("failed to encode commit: %w", err)
	}

	commitHash, err := p.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to store commit: %w", err)
	}

	ref := plumbing.NewHashReference(p.headBranch(), commitHash)
	if err := p.repo.Storer.SetReference(ref); err != nil {
		return Transaction{}, fmt.Errorf("failed to update HEAD: %w", err)
	}

	return Transaction{
		Id:      commitHash.String(),
		When:    sig.When,
		Author:  identity.String(),
		Message: message,
	}, nil
}

// headBranch is the branch HEAD refers to, even before it has commits.
func (p *Persistence) headBranch() plumbing.ReferenceName {
	head, err := p.repo.Storer.Reference(plumbing.HEAD)
	if err == nil && head.Type() == plumbing.SymbolicReference && head.Target().IsBranch() {
		return head.Target()
	}
	return plumbing.Master
}

func readTreeFile(tree *object.Tree, path string) ([]byte, error) {
	file, err := tree.File(path)
	if err != nil {
		return nil, fmt.Errorf("file not found: %w", err)
	}

	content, err := file.Contents()
	if err != nil {
		return nil, fmt.Errorf("failed to read contents: %w", err)
	}

	return []byte(content), nil
}

// treeEntryNames lists regular files in dir whose names end in suffix,
// with the suffix removed.
func treeEntryNames(tree *object.Tree, dir, suffix string) []string {
	target := tree
	if dir != "" {
		sub, err := tree.Tree(dir)
		if err != nil {
			return nil
		}
		target = sub
	}

	var names []string
	for _, entry := range target.Entries {
		if entry.Mode == filemode.Dir || !strings.HasSuffix(entry.Name, suffix) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name, suffix))
	}
	sort.Strings(names)
	return names
}
