package git

import (
	"context"
	"sort"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/gitinfo/executor"
)

// Tags implements Provider using show-ref, whose dereferenced "^{}" lines
// identify annotated tags and their peeled targets.
func (p *CLIProvider) Tags(ctx context.Context, includeLightweight bool) ([]Tag, error) {
	args := []string{"show-ref", "--tags", "--dereference"}
	res, err := p.git.Execute(ctx, args, executor.WithRequireSuccess(false))
	if err != nil {
		return nil, WrapError(err, "git show-ref")
	}

	switch {
	case res.ExitCode == 1 && strings.TrimSpace(res.Combined) == "":
		return []Tag{}, nil
	case res.ExitCode != 0:
		return nil, p.classify(args, res)
	}

	return parseShowRefTags(res.Lines, includeLightweight)
}

type showRefEntry struct {
	hash string
	name string
}

func parseShowRefTags(lines []string, includeLightweight bool) ([]Tag, error) {
	peeled := map[string]string{}
	var entries []showRefEntry

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) != 2 {
			return nil, WrapErrorf(ErrUnexpectedOutput, "show-ref line %q", raw)
		}
		hash, ref := parts[0], parts[1]
		if base, ok := strings.CutSuffix(ref, "^{}"); ok {
			peeled[base] = hash
			continue
		}
		entries = append(entries, showRefEntry{hash: hash, name: ref})
	}

	tags := make([]Tag, 0, len(entries))
	for _, e := range entries {
		name, ok := tagName(e.name)
		if !ok {
			continue
		}
		if target, annotated := peeled[e.name]; annotated {
			tags = append(tags, Tag{Name: name, TargetCommitHash: target})
			continue
		}
		if includeLightweight {
			tags = append(tags, Tag{Name: name, TargetCommitHash: e.hash})
		}
	}

	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}
