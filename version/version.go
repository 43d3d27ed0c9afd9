// Package version derives semantic versions from git describe output.
//
// A commit carrying a release tag gets that tag's version. A commit n
// commits past it gets the next patch version with n as prerelease and the
// abbreviated hash as build metadata:
//
//	v1.2.3           => 1.2.3
//	v1.2.3-4-gabc1234 => 1.2.4-4+gabc1234
package version

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/input-output-hk/catalyst-forge-libs/gitinfo/git"
)

// DefaultTagPrefix is stripped from tag names before parsing them.
const DefaultTagPrefix = "v"

// ErrInvalidTag is returned when the described tag is not a semantic version.
var ErrInvalidTag = errors.New("tag is not a semantic version")

// Options controls how a version is derived.
type Options struct {
	// TagPrefix is stripped from tag names. Defaults to DefaultTagPrefix;
	// set NoPrefix to use tags without a prefix.
	TagPrefix string

	// NoPrefix disables TagPrefix.
	NoPrefix bool

	// TagPattern restricts the tags considered by Compute. Defaults to
	// TagPrefix followed by "*".
	TagPattern string

	// PrereleaseLabel is put in front of the commit count, e.g. "dev"
	// gives 1.2.4-dev.4. Empty uses the count alone.
	PrereleaseLabel string

	// Metadata appends the abbreviated commit hash as build metadata.
	Metadata bool
}

func (o Options) prefix() string {
	if o.NoPrefix {
		return ""
	}
	if o.TagPrefix == "" {
		return DefaultTagPrefix
	}
	return o.TagPrefix
}

func (o Options) pattern() string {
	if o.TagPattern != "" {
		return o.TagPattern
	}
	return o.prefix() + "*"
}

// Describe is parsed git describe output.
type Describe struct {
	Tag      string
	Distance int
	Hash     string
}

var longDescribe = regexp.MustCompile(`^(.+)-(\d+)-g([0-9a-f]{4,64})$`)

// ParseDescribe splits describe output into its tag, distance and
// abbreviated hash. Short output (a bare tag name) has distance zero.
func ParseDescribe(s string) (Describe, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Describe{}, fmt.Errorf("%w: empty describe output", ErrInvalidTag)
	}

	m := longDescribe.FindStringSubmatch(s)
	if m == nil {
		return Describe{Tag: s}, nil
	}

	n, err := strconv.Atoi(m[2])
	if err != nil {
		return Describe{}, fmt.Errorf("%w: distance in %q: %w", ErrInvalidTag, s, err)
	}
	return Describe{Tag: m[1], Distance: n, Hash: m[3]}, nil
}

// FromDescribe converts describe output into a version.
func FromDescribe(describe string, opts Options) (*semver.Version, error) {
	d, err := ParseDescribe(describe)
	if err != nil {
		return nil, err
	}

	raw, ok := strings.CutPrefix(d.Tag, opts.prefix())
	if !ok {
		return nil, fmt.Errorf("%w: %q lacks prefix %q", ErrInvalidTag, d.Tag, opts.prefix())
	}

	v, err := semver.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidTag, d.Tag, err)
	}
	if d.Distance == 0 {
		return v, nil
	}

	next := v.IncPatch()
	pre := strconv.Itoa(d.Distance)
	if opts.PrereleaseLabel != "" {
		pre = opts.PrereleaseLabel + "." + pre
	}
	if next, err = next.SetPrerelease(pre); err != nil {
		return nil, fmt.Errorf("set prerelease %q: %w", pre, err)
	}
	if opts.Metadata && d.Hash != "" {
		if next, err = next.SetMetadata("g" + d.Hash); err != nil {
			return nil, fmt.Errorf("set metadata %q: %w", d.Hash, err)
		}
	}
	return &next, nil
}

// Compute describes HEAD against the tags matching opts and converts the
// result into a version.
func Compute(ctx context.Context, p git.Provider, opts Options) (*semver.Version, error) {
	desc, err := p.Describe().
		LongFormat(true).
		Matching(opts.pattern()).
		Run(ctx)
	if err != nil {
		return nil, git.WrapErrorf(err, "describe HEAD matching %q", opts.pattern())
	}
	return FromDescribe(desc, opts)
}
