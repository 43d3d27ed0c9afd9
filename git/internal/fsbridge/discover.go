package fsbridge

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
)

// DotGit is the name of the git directory inside a work tree.
const DotGit = ".git"

var (
	// ErrNotFound is returned when no enclosing work tree exists.
	ErrNotFound = errors.New("no .git directory found")

	// ErrGitFile is returned when the enclosing .git is a file, as in linked
	// work trees and submodules.
	ErrGitFile = errors.New(".git is a file")
)

// Location describes a discovered repository.
type Location struct {
	// WorkTree is the directory containing .git.
	WorkTree string
	// GitDir is WorkTree/.git.
	GitDir string
}

// Discover walks from dir towards the filesystem root and returns the first
// directory containing a .git entry. dir must be absolute. Only Stat is
// used, so osfs.Default serves for the host filesystem.
func Discover(fsys billy.Basic, dir string) (Location, error) {
	if !filepath.IsAbs(dir) {
		return Location{}, fmt.Errorf("discover from relative path %q", dir)
	}

	current := filepath.Clean(dir)
	for {
		candidate := filepath.Join(current, DotGit)
		info, err := fsys.Stat(candidate)
		switch {
		case err == nil && info.IsDir():
			return Location{WorkTree: current, GitDir: candidate}, nil
		case err == nil:
			return Location{}, fmt.Errorf("%w: %s", ErrGitFile, candidate)
		case !errors.Is(err, os.ErrNotExist):
			return Location{}, fmt.Errorf("stat %s: %w", candidate, err)
		}

		parent := filepath.Dir(current)
		if parent == current {
			return Location{}, fmt.Errorf("%w above %s", ErrNotFound, dir)
		}
		current = parent
	}
}
