package git

import (
	"context"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultDescribeTarget is the revision described when none is set.
const DefaultDescribeTarget = "HEAD"

// DescribeOptions is an immutable snapshot of a describe request.
type DescribeOptions struct {
	// Long always emits the <tag>-<n>-g<hash> form, even at distance zero.
	Long bool

	// IncludeLightweightTags makes lightweight tags candidates as well as
	// annotated ones.
	IncludeLightweightTags bool

	// Match restricts candidates to tags whose name matches any of these
	// glob patterns. Empty means every tag is a candidate.
	Match []string

	// Target is the revision to describe.
	Target string
}

// DescribeFunc executes a describe request with the given options.
type DescribeFunc func(ctx context.Context, opts DescribeOptions) (string, error)

// DescribeCall is a fluent describe request. Setters return the same call
// so they can be chained; Run executes it.
//
//	desc, err := p.Describe().
//		LongFormat(true).
//		Matching("v*").
//		Run(ctx)
type DescribeCall struct {
	opts DescribeOptions
	run  DescribeFunc
}

// NewDescribeCall returns a call targeting DefaultDescribeTarget that
// hands its options to run. Provider implementations outside this package
// use it to back their Describe method.
func NewDescribeCall(run DescribeFunc) *DescribeCall {
	return &DescribeCall{
		opts: DescribeOptions{Target: DefaultDescribeTarget},
		run:  run,
	}
}

// LongFormat enables or disables the long output form.
func (d *DescribeCall) LongFormat(long bool) *DescribeCall {
	d.opts.Long = long
	return d
}

// IncludeLightweightTags controls whether lightweight tags are candidates.
func (d *DescribeCall) IncludeLightweightTags(include bool) *DescribeCall {
	d.opts.IncludeLightweightTags = include
	return d
}

// Matching appends glob patterns. Called with no patterns it clears every
// pattern added so far.
func (d *DescribeCall) Matching(patterns ...string) *DescribeCall {
	if len(patterns) == 0 {
		d.opts.Match = nil
		return d
	}
	d.opts.Match = append(d.opts.Match, patterns...)
	return d
}

// Target sets the revision to describe. An empty rev resets it to HEAD.
func (d *DescribeCall) Target(rev string) *DescribeCall {
	if rev == "" {
		rev = DefaultDescribeTarget
	}
	d.opts.Target = rev
	return d
}

// Options returns a copy of the current request.
func (d *DescribeCall) Options() DescribeOptions {
	opts := d.opts
	opts.Match = slices.Clone(d.opts.Match)
	return opts
}

// Run executes the request and returns the single-line description.
// Every call runs the backend again.
func (d *DescribeCall) Run(ctx context.Context) (string, error) {
	return d.run(ctx, d.Options())
}

// tagMatcher reports whether a short tag name passes a set of globs.
type tagMatcher struct {
	globs []glob.Glob
}

func newTagMatcher(patterns []string) (*tagMatcher, error) {
	m := &tagMatcher{globs: make([]glob.Glob, 0, len(patterns))}
	for _, p := range patterns {
		g, err := glob.Compile(literalBraces(p))
		if err != nil {
			return nil, WrapErrorf(ErrInvalidArgument, "invalid match pattern %q: %v", p, err)
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// literalBraces escapes the characters gobwas/glob reads as alternation.
// git's wildmatch has no alternation, so they match themselves there.
func literalBraces(pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern))
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '{' || r == '}' || r == ',':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Match reports whether name matches any pattern, or true when there are none.
func (m *tagMatcher) Match(name string) bool {
	if len(m.globs) == 0 {
		return true
	}
	for _, g := range m.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}
