package changelog

import (
	"strings"

	"github.com/leodido/go-conventionalcommits"
	"github.com/leodido/go-conventionalcommits/parser"

	"github.com/input-output-hk/catalyst-forge-libs/gitinfo/git"
)

// Group is a changelog section for conventional commits.
type Group int

const (
	// GroupBreaking holds commits marked as breaking changes.
	GroupBreaking Group = iota

	// GroupFeatures holds feat commits.
	GroupFeatures

	// GroupFixes holds fix commits.
	GroupFixes

	// GroupOther holds everything else, including non-conventional messages.
	GroupOther
)

var groupOrder = []Group{GroupBreaking, GroupFeatures, GroupFixes, GroupOther}

// String returns the section heading.
func (g Group) String() string {
	switch g {
	case GroupBreaking:
		return "Breaking changes"
	case GroupFeatures:
		return "Features"
	case GroupFixes:
		return "Fixes"
	default:
		return "Other"
	}
}

// Classify parses a commit message as a conventional commit and returns its
// group. Messages that do not parse fall into GroupOther.
func Classify(message string) Group {
	cc, ok := parseConventional(message)
	if !ok {
		return GroupOther
	}
	switch {
	case cc.IsBreakingChange():
		return GroupBreaking
	case strings.EqualFold(cc.Type, "feat"):
		return GroupFeatures
	case strings.EqualFold(cc.Type, "fix"):
		return GroupFixes
	default:
		return GroupOther
	}
}

// parseConventional tries the whole message first so breaking-change
// footers are seen, then the subject line alone.
func parseConventional(message string) (*conventionalcommits.ConventionalCommit, bool) {
	msg := strings.TrimSpace(strings.ReplaceAll(message, "\r\n", "\n"))
	if msg == "" {
		return nil, false
	}

	candidates := []string{msg}
	if subject, _, found := strings.Cut(msg, "\n"); found {
		candidates = append(candidates, subject)
	}

	for _, c := range candidates {
		m := parser.NewMachine(parser.WithTypes(conventionalcommits.TypesConventional))
		res, err := m.Parse([]byte(c))
		if err != nil || res == nil {
			continue
		}
		if cc, ok := res.(*conventionalcommits.ConventionalCommit); ok && cc.Type != "" {
			return cc, true
		}
	}
	return nil, false
}

// groupCommits buckets commits by group, keeping their order.
func groupCommits(commits []git.CommitData) map[Group][]git.CommitData {
	out := make(map[Group][]git.CommitData, len(groupOrder))
	for _, c := range commits {
		g := Classify(c.Message)
		out[g] = append(out[g], c)
	}
	return out
}
