package git

import (
	"context"

	"github.com/go-git/go-git/v5/plumbing"
)

// FullBranch implements Provider.
func (p *LibraryProvider) FullBranch(_ context.Context) (string, bool, error) {
	head, err := p.repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", false, WrapError(err, "failed to read HEAD")
	}
	if head.Type() != plumbing.SymbolicReference {
		return "", false, nil
	}
	return head.Target().String(), true, nil
}

// Upstream implements Provider. The tracking ref is derived from the
// branch's remote and merge settings through the remote's fetch refspecs.
func (p *LibraryProvider) Upstream(ctx context.Context) (string, bool, error) {
	branch, ok, err := p.FullBranch(ctx)
	if err != nil || !ok {
		return "", false, err
	}

	cfg, err := p.repo.Config()
	if err != nil {
		return "", false, WrapError(err, "failed to read config")
	}

	short := plumbing.ReferenceName(branch).Short()
	b, ok := cfg.Branches[short]
	if !ok || b.Remote == "" || b.Merge == "" {
		return "", false, nil
	}
	if b.Remote == "." {
		return b.Merge.String(), true, nil
	}

	remote, ok := cfg.Remotes[b.Remote]
	if !ok {
		return "", false, nil
	}
	for _, spec := range remote.Fetch {
		if spec.Match(b.Merge) {
			return spec.Dst(b.Merge).String(), true, nil
		}
	}
	return "", false, nil
}
