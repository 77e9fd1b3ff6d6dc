package ps

import (
	"errors"
	"os"
	"sync"

	"github.com/go-git/go-billy/v6/memfs"
	"github.com/go-git/go-billy/v6/osfs"
	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/cache"
	"github.com/go-git/go-git/v6/storage/filesystem"
	"github.com/go-git/go-git/v6/storage/memory"
)

var (
	ErrNotInitialized = errors.New("persistence layer not initialized")
	ErrNoSnapshot     = errors.New("no snapshot recorded")
)

type Persistence struct {
	repo *git.Repository
	mu   sync.RWMutex
}

// IsInitialized returns true if the persistence layer has a valid repository
func (p *Persistence) IsInitialized() bool {
	return p != nil && p.repo != nil
}

func (p *Persistence) ensureInitialized() error {
	if !p.IsInitialized() {
		return ErrNotInitialized
	}
	return nil
}

func NewMemoryPersistence() (Persistence, error) {
	repo, err := git.Init(memory.NewStorage(), git.WithWorkTree(memfs.New()))
	if err != nil {
		return Persistence{}, err
	}

	return Persistence{repo: repo}, nil
}

// NewFilePersistence opens the snapshot repository under baseDir, creating
// it when absent. A non-nil gitUrl clones that repository instead.
func NewFilePersistence(baseDir string, gitUrl *string) (Persistence, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return Persistence{}, err
	}

	wt := osfs.New(baseDir)
	fs, err := wt.Chroot(".git")
	if err != nil {
		return Persistence{}, err
	}

	storer := filesystem.NewStorageWithOptions(
		fs,
		cache.NewObjectLRUDefault(),
		filesystem.Options{ExclusiveAccess: true})

	var repo *git.Repository

	switch {
	case gitUrl != nil:
		repo, err = git.Clone(storer, wt, &git.CloneOptions{URL: *gitUrl})
	default:
		if _, statErr := os.Stat(fs.Root()); statErr != nil {
			repo, err = git.Init(storer, git.WithWorkTree(wt))
		} else {
			repo, err = git.Open(storer, wt)
		}
	}
	if err != nil {
		return Persistence{}, err
	}

	return Persistence{repo: repo}, nil
}
