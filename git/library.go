package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"

	"github.com/input-output-hk/catalyst-forge-libs/gitinfo/git/internal/fsbridge"
)

// LibraryProvider answers queries by reading the repository with go-git.
// Linked work trees are not supported.
type LibraryProvider struct {
	repo     *git.Repository
	storage  *filesystem.Storage
	gitDir   string
	workTree string
	logger   *slog.Logger
}

var _ Provider = (*LibraryProvider)(nil)

func probeLibrary(ctx context.Context, dir string, o *Options) (*LibraryProvider, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, probeFailed(WrapErrorf(err, "resolve %s", dir))
	}

	info, err := osfs.Default.Stat(abs)
	if err != nil {
		return nil, probeFailed(WrapErrorf(err, "stat %s", abs))
	}
	if !info.IsDir() {
		return nil, probeFailed(WrapErrorf(ErrNotARepository, "%s is not a directory", abs))
	}

	loc, err := fsbridge.Discover(osfs.Default, abs)
	switch {
	case errors.Is(err, fsbridge.ErrGitFile):
		return nil, probeFailed(fmt.Errorf("%w: linked work trees: %w", ErrUnsupported, err))
	case errors.Is(err, fsbridge.ErrNotFound):
		return nil, probeFailed(fmt.Errorf("%w: %w", ErrNotARepository, err))
	case err != nil:
		return nil, probeFailed(err)
	}

	storage := fsbridge.NewStorage(osfs.New(loc.GitDir), o.StorerCacheSize)
	repo, err := git.Open(storage, osfs.New(loc.WorkTree))
	if err != nil {
		_ = storage.Close()
		return nil, probeFailed(WrapErrorf(err, "open repository at %s", loc.GitDir))
	}

	return &LibraryProvider{
		repo:     repo,
		storage:  storage,
		gitDir:   loc.GitDir,
		workTree: loc.WorkTree,
		logger:   o.Logger,
	}, nil
}

// Backend implements Provider.
func (p *LibraryProvider) Backend() BackendKind { return BackendLibrary }

// Close releases open pack files.
func (p *LibraryProvider) Close() error {
	if p.storage == nil {
		return nil
	}
	err := p.storage.Close()
	p.storage = nil
	return err
}

// DotGitDirectory implements Provider.
func (p *LibraryProvider) DotGitDirectory(_ context.Context) (string, error) {
	return p.gitDir, nil
}

// Head implements Provider.
func (p *LibraryProvider) Head(_ context.Context) (string, error) {
	head, err := p.repo.Head()
	if err != nil {
		return "", fmt.Errorf("%w: HEAD: %w", ErrResolveFailed, err)
	}
	return head.Hash().String(), nil
}

// AbbreviateRef implements Provider. The abbreviation is unique among all
// objects in the repository.
func (p *LibraryProvider) AbbreviateRef(ctx context.Context, ref string, minimumLength int) (string, error) {
	if err := validateAbbrevLength(minimumLength); err != nil {
		return "", err
	}
	hash, err := p.resolveObject(ref)
	if err != nil {
		return "", err
	}
	if minimumLength == 0 {
		minimumLength = DefaultAbbrevLength
	}
	return p.uniqueAbbrev(ctx, hash, minimumLength)
}

// ShortenRef implements Provider.
func (p *LibraryProvider) ShortenRef(_ context.Context, ref string) (string, error) {
	return ShortenRef(ref), nil
}

// ResolveCommit implements Provider.
func (p *LibraryProvider) ResolveCommit(_ context.Context, rev string) (string, error) {
	c, err := p.resolveCommit(rev)
	if err != nil {
		return "", err
	}
	return c.Hash.String(), nil
}

// MergeBase implements Provider.
func (p *LibraryProvider) MergeBase(_ context.Context, a, b string) (string, error) {
	ca, err := p.resolveCommit(a)
	if err != nil {
		return "", err
	}
	cb, err := p.resolveCommit(b)
	if err != nil {
		return "", err
	}

	bases, err := ca.MergeBase(cb)
	if err != nil {
		return "", WrapErrorf(err, "merge-base %s %s", a, b)
	}
	if len(bases) == 0 {
		return "", WrapErrorf(ErrNoMergeBase, "%s and %s", a, b)
	}
	return bases[0].Hash.String(), nil
}

// Describe implements Provider.
func (p *LibraryProvider) Describe() *DescribeCall {
	return NewDescribeCall(p.describe)
}

// resolveCommit resolves rev to a commit, peeling annotated tags.
func (p *LibraryProvider) resolveCommit(rev string) (*object.Commit, error) {
	if rev == "" {
		return nil, WrapError(ErrInvalidArgument, "empty revision")
	}

	hash, err := p.repo.ResolveRevision(plumbing.Revision(rev))
	if err == nil {
		c, cerr := p.repo.CommitObject(*hash)
		if cerr == nil {
			return c, nil
		}
		err = cerr
	}

	// ResolveRevision peels a single tag level only.
	if ref, rerr := p.repo.Reference(plumbing.NewTagReferenceName(rev), true); rerr == nil {
		if target, perr := peelTag(p.repo, ref.Hash()); perr == nil {
			if c, cerr := p.repo.CommitObject(target); cerr == nil {
				return c, nil
			}
		}
	}

	return nil, fmt.Errorf("%w: %q: %w", ErrResolveFailed, rev, err)
}

// resolveObject resolves rev to an object id without requiring a commit.
// A ref naming an annotated tag yields the tag object, not its commit.
func (p *LibraryProvider) resolveObject(rev string) (plumbing.Hash, error) {
	if rev == "" {
		return plumbing.ZeroHash, WrapError(ErrInvalidArgument, "empty revision")
	}
	if plumbing.IsHash(rev) {
		h := plumbing.NewHash(rev)
		if _, err := p.repo.Storer.EncodedObject(plumbing.AnyObject, h); err == nil {
			return h, nil
		}
	}
	for _, name := range refCandidates(rev) {
		if ref, err := p.repo.Reference(name, true); err == nil {
			return ref.Hash(), nil
		}
	}
	c, err := p.resolveCommit(rev)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	return c.Hash, nil
}

// refCandidates lists the reference names rev may abbreviate, in git's
// lookup order.
func refCandidates(rev string) []plumbing.ReferenceName {
	return []plumbing.ReferenceName{
		plumbing.ReferenceName(rev),
		plumbing.ReferenceName("refs/" + rev),
		plumbing.NewTagReferenceName(rev),
		plumbing.NewBranchReferenceName(rev),
		plumbing.ReferenceName("refs/remotes/" + rev),
		plumbing.ReferenceName("refs/remotes/" + rev + "/HEAD"),
	}
}
