package git

import (
	"context"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Commits implements Provider. Both ends are inclusive: everything reachable
// from a parent of earliestRev is hidden, so earliestRev itself is listed.
// Commits are ordered by committer time, newest first.
func (p *LibraryProvider) Commits(ctx context.Context, latestRev, earliestRev string) ([]CommitData, error) {
	latest, err := p.resolveCommit(latestRev)
	if err != nil {
		return nil, err
	}

	hidden := map[plumbing.Hash]bool{}
	if earliestRev != "" {
		earliest, err := p.resolveCommit(earliestRev)
		if err != nil {
			return nil, err
		}
		for _, parent := range earliest.ParentHashes {
			if err := p.markReachable(ctx, parent, hidden); err != nil {
				return nil, err
			}
		}
	}

	var commits []CommitData
	iter := object.NewCommitIterCTime(latest, hidden, nil)
	defer iter.Close()

	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		full := c.Hash.String()
		commits = append(commits, CommitData{
			FullHash:        full,
			AbbreviatedHash: abbreviate(full),
			CommitTime:      c.Committer.When,
			Message:         messageWithNewline(c.Message),
		})
		return nil
	})
	if err != nil {
		return nil, WrapErrorf(err, "walk %s..%s", earliestRev, latestRev)
	}
	return commits, nil
}

// markReachable adds from and every ancestor of it to seen.
func (p *LibraryProvider) markReachable(ctx context.Context, from plumbing.Hash, seen map[plumbing.Hash]bool) error {
	if seen[from] {
		return nil
	}
	c, err := p.repo.CommitObject(from)
	if err != nil {
		return WrapErrorf(err, "read commit %s", from)
	}

	iter := object.NewCommitPreorderIter(c, seen, nil)
	defer iter.Close()

	return iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		seen[c.Hash] = true
		return nil
	})
}

// countReachable returns the number of commits reachable from c, c included.
func (p *LibraryProvider) countReachable(ctx context.Context, c *object.Commit) (int, error) {
	n := 0
	iter := object.NewCommitPreorderIter(c, nil, nil)
	defer iter.Close()

	err := iter.ForEach(func(*object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		n++
		return nil
	})
	return n, err
}
