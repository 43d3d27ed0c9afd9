package git

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// maxDescribeCandidates matches git describe's default --candidates.
const maxDescribeCandidates = 10

type describeCandidate struct {
	tag    tagRef
	commit *object.Commit
	depth  int
}

// describe names opts.Target after the nearest eligible tag. Candidates are
// collected in committer-time order from the target; the one with the
// fewest commits between it and the target wins, earlier finds breaking ties.
func (p *LibraryProvider) describe(ctx context.Context, opts DescribeOptions) (string, error) {
	matcher, err := newTagMatcher(opts.Match)
	if err != nil {
		return "", err
	}

	target, err := p.resolveCommit(opts.Target)
	if err != nil {
		return "", err
	}

	refs, err := listTagRefs(ctx, p.repo, opts.IncludeLightweightTags)
	if err != nil {
		return "", err
	}

	byCommit := make(map[plumbing.Hash]tagRef)
	for _, r := range refs {
		if !matcher.Match(r.name) {
			continue
		}
		if cur, ok := byCommit[r.target]; !ok || preferTag(r, cur) {
			byCommit[r.target] = r
		}
	}

	if t, ok := byCommit[target.Hash]; ok && !opts.Long {
		return t.name, nil
	}

	candidates, err := p.describeCandidates(ctx, target, byCommit)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", WrapErrorf(ErrNoTagFound, "describe %s", opts.Target)
	}

	total, err := p.countReachable(ctx, target)
	if err != nil {
		return "", WrapErrorf(err, "count commits from %s", opts.Target)
	}

	best := -1
	for i := range candidates {
		n, err := p.countReachable(ctx, candidates[i].commit)
		if err != nil {
			return "", WrapErrorf(err, "count commits from %s", candidates[i].tag.name)
		}
		candidates[i].depth = total - n
		if best < 0 || candidates[i].depth < candidates[best].depth {
			best = i
		}
	}

	winner := candidates[best]
	p.logger.DebugContext(ctx, "describe candidate selected",
		"target", opts.Target, "tag", winner.tag.name, "depth", winner.depth, "candidates", len(candidates))

	if winner.depth == 0 && !opts.Long {
		return winner.tag.name, nil
	}

	abbrev, err := p.uniqueAbbrev(ctx, target.Hash, DefaultAbbrevLength)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-g%s", winner.tag.name, winner.depth, abbrev), nil
}

// describeCandidates walks history from target and returns up to
// maxDescribeCandidates tagged commits in the order they were reached.
func (p *LibraryProvider) describeCandidates(
	ctx context.Context,
	target *object.Commit,
	byCommit map[plumbing.Hash]tagRef,
) ([]describeCandidate, error) {
	if len(byCommit) == 0 {
		return nil, nil
	}

	var candidates []describeCandidate
	iter := object.NewCommitIterCTime(target, nil, nil)
	defer iter.Close()

	err := iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		t, ok := byCommit[c.Hash]
		if !ok {
			return nil
		}
		candidates = append(candidates, describeCandidate{tag: t, commit: c})
		if len(candidates) == maxDescribeCandidates || len(candidates) == len(byCommit) {
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return nil, WrapError(err, "walk history")
	}
	return candidates, nil
}

// preferTag reports whether a should name a commit instead of b: annotated
// before lightweight, then the newer tagger date, then the smaller name.
func preferTag(a, b tagRef) bool {
	if a.annotated != b.annotated {
		return a.annotated
	}
	if !a.tagged.Equal(b.tagged) {
		return a.tagged.After(b.tagged)
	}
	return a.name < b.name
}
