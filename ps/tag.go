package ps

import (
	"fmt"
	"sort"

	"github.com/go-git/go-git/v6/plumbing"
)

// Tag names a transaction so it can be restored or diffed later. A nil
// transaction tags HEAD.
func (p *Persistence) Tag(name string, txn *Transaction) (Transaction, error) {
	if err := p.ensureInitialized(); err != nil {
		return Transaction{}, err
	}
	if name == "" {
		return Transaction{}, fmt.Errorf("tag name is required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	target := Transaction{}
	if txn != nil {
		target = *txn
	}

	commit, err := p.resolveCommit(target)
	if err != nil {
		return Transaction{}, err
	}

	if _, err := p.repo.CreateTag(name, commit.Hash, nil); err != nil {
		return Transaction{}, fmt.Errorf("failed to create tag '%s': %w", name, err)
	}

	return transactionFromCommit(commit), nil
}

// ResolveTag returns the transaction a tag points at.
func (p *Persistence) ResolveTag(name string) (Transaction, error) {
	if err := p.ensureInitialized(); err != nil {
		return Transaction{}, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	ref, err := p.repo.Tag(name)
	if err != nil {
		return Transaction{}, fmt.Errorf("tag '%s' not found: %w", name, err)
	}

	commit, err := p.repo.CommitObject(ref.Hash())
	if err != nil {
		return Transaction{}, fmt.Errorf("tag '%s' does not point at a snapshot: %w", name, err)
	}
	return transactionFromCommit(commit), nil
}

// ListTags returns all tag names, sorted.
func (p *Persistence) ListTags() ([]string, error) {
	if err := p.ensureInitialized(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	iter, err := p.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer iter.Close()

	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}
