package git

import (
	"context"
	"sort"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// maxTagChain bounds how many tag objects are followed when peeling.
const maxTagChain = 64

// tagRef is a tag reference after peeling.
type tagRef struct {
	name      string
	target    plumbing.Hash
	annotated bool
	// tagged is the tagger date of the outermost tag object.
	tagged time.Time
}

// Tags implements Provider.
func (p *LibraryProvider) Tags(ctx context.Context, includeLightweight bool) ([]Tag, error) {
	refs, err := listTagRefs(ctx, p.repo, includeLightweight)
	if err != nil {
		return nil, err
	}

	tags := make([]Tag, 0, len(refs))
	for _, r := range refs {
		tags = append(tags, Tag{Name: r.name, TargetCommitHash: r.target.String()})
	}
	return tags, nil
}

// listTagRefs returns every refs/tags/ reference peeled to its final target,
// sorted by name. Lightweight tags are skipped unless requested.
func listTagRefs(ctx context.Context, repo *git.Repository, includeLightweight bool) ([]tagRef, error) {
	iter, err := repo.References()
	if err != nil {
		return nil, WrapError(err, "failed to get references")
	}
	defer iter.Close()

	var out []tagRef
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		name, ok := tagName(ref.Name().String())
		if !ok {
			return nil
		}

		tr, err := peelTagRef(repo, name, ref.Hash())
		if err != nil {
			return err
		}
		if tr.annotated || includeLightweight {
			out = append(out, tr)
		}
		return nil
	})
	if err != nil {
		return nil, WrapError(err, "failed to iterate tags")
	}

	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out, nil
}

func peelTagRef(repo *git.Repository, name string, hash plumbing.Hash) (tagRef, error) {
	tag, err := repo.TagObject(hash)
	switch {
	case err == plumbing.ErrObjectNotFound:
		return tagRef{name: name, target: hash}, nil
	case err != nil:
		return tagRef{}, WrapErrorf(err, "read tag %s", name)
	}

	target, err := peelTag(repo, tag.Target)
	if err != nil {
		return tagRef{}, WrapErrorf(err, "peel tag %s", name)
	}
	return tagRef{name: name, target: target, annotated: true, tagged: tag.Tagger.When}, nil
}

// peelTag follows tag objects starting at hash until it reaches a non-tag
// object and returns that object's id.
func peelTag(repo *git.Repository, hash plumbing.Hash) (plumbing.Hash, error) {
	for i := 0; i < maxTagChain; i++ {
		tag, err := repo.TagObject(hash)
		if err == plumbing.ErrObjectNotFound {
			return hash, nil
		}
		if err != nil {
			return plumbing.ZeroHash, err
		}
		hash = tag.Target
	}
	return plumbing.ZeroHash, WrapErrorf(ErrUnexpectedOutput, "tag chain longer than %d at %s", maxTagChain, hash)
}

// uniqueAbbrev returns the shortest prefix of hash, at least minLen long,
// that no other object in the store shares. Only objects sharing the first
// minLen/2 bytes are considered, read from pack indexes and loose object
// directory names without decoding any object.
func (p *LibraryProvider) uniqueAbbrev(ctx context.Context, hash plumbing.Hash, minLen int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.storage == nil {
		return "", WrapError(ErrInvalidArgument, "provider is closed")
	}

	full := hash.String()
	candidates, err := p.storage.HashesWithPrefix(hash[:minLen/2])
	if err != nil {
		return "", WrapErrorf(err, "abbreviate %s", full)
	}

	need := minLen
	for _, other := range candidates {
		if other == hash {
			continue
		}
		if n := commonHexPrefix(full, other.String()) + 1; n > need {
			need = n
		}
	}

	if need > len(full) {
		need = len(full)
	}
	return full[:need], nil
}

func commonHexPrefix(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
