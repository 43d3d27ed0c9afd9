// Package changelog renders the commit history between a starting point and
// HEAD as a plain-text or markdown document.
//
// # Basic Usage
//
//	p, err := git.Open(ctx, dir, git.WithBackends(git.BackendLibrary))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	doc, err := changelog.Generate(ctx, p, changelog.Options{
//	    StartingTag: "v1.0.0",
//	    Markdown:    true,
//	    ProjectURL:  "https://github.com/org/repo",
//	})
//
// Listing commits needs a backend that implements git.Provider.Commits; the
// command-line backend reports git.ErrUnsupported.
package changelog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/input-output-hk/catalyst-forge-libs/gitinfo/git"
)

// ErrConfigurationConflict is returned when both a starting commit and a
// starting tag are supplied.
var ErrConfigurationConflict = errors.New("both starting commit and starting tag are set")

// DefaultBaseRefs are tried, after the current branch's upstream, as the
// reference whose merge-base with HEAD starts the changelog.
var DefaultBaseRefs = []string{
	"refs/remotes/origin/HEAD",
	"origin/main",
	"origin/master",
}

// Options configures Generate and Render.
type Options struct {
	// StartingCommit is the oldest commit included. Mutually exclusive with
	// StartingTag.
	StartingCommit string

	// StartingTag names a tag whose target is the oldest commit included.
	StartingTag string

	// ProjectURL is the web URL commits are linked under in markdown mode.
	// Empty disables links.
	ProjectURL string

	// Markdown selects markdown output instead of plain text.
	Markdown bool

	// ConventionalGroups groups markdown entries by conventional commit kind.
	ConventionalGroups bool

	// Logger receives debug diagnostics. Defaults to a discarding logger.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// Validate reports configuration errors that can be detected without Git.
func (o Options) Validate() error {
	if o.StartingCommit != "" && o.StartingTag != "" {
		return fmt.Errorf("%w: commit %q, tag %q", ErrConfigurationConflict, o.StartingCommit, o.StartingTag)
	}
	return nil
}

// Generate selects the starting point, lists the commits from there to HEAD
// and renders them.
func Generate(ctx context.Context, p git.Provider, opts Options) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}

	earliest, err := StartingPoint(ctx, p, opts)
	if err != nil {
		return "", err
	}
	opts.logger().DebugContext(ctx, "changelog start point selected", "earliest", earliest)

	commits, err := p.Commits(ctx, git.DefaultDescribeTarget, earliest)
	if err != nil {
		return "", git.WrapErrorf(err, "list commits since %q", earliest)
	}
	return Render(commits, opts), nil
}

// StartingPoint returns the revision of the oldest commit to include, or ""
// for the full history.
func StartingPoint(ctx context.Context, p git.Provider, opts Options) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}

	switch {
	case opts.StartingCommit != "":
		return opts.StartingCommit, nil
	case opts.StartingTag != "":
		return tagTarget(ctx, p, opts.StartingTag)
	default:
		return defaultStart(ctx, p, opts.logger())
	}
}

func tagTarget(ctx context.Context, p git.Provider, name string) (string, error) {
	tags, err := p.Tags(ctx, true)
	if err != nil {
		return "", git.WrapError(err, "list tags")
	}
	for _, t := range tags {
		if t.Name == name {
			return t.TargetCommitHash, nil
		}
	}
	return "", git.WrapErrorf(git.ErrTagMissing, "starting tag %q", name)
}

// defaultStart returns the merge-base of HEAD with the first base reference
// that resolves.
func defaultStart(ctx context.Context, p git.Provider, logger *slog.Logger) (string, error) {
	var refs []string
	upstream, ok, err := p.Upstream(ctx)
	if err != nil {
		return "", git.WrapError(err, "read upstream")
	}
	if ok {
		refs = append(refs, upstream)
	}
	refs = append(refs, DefaultBaseRefs...)

	for _, ref := range refs {
		base, err := p.MergeBase(ctx, git.DefaultDescribeTarget, ref)
		switch {
		case err == nil:
			return base, nil
		case errors.Is(err, git.ErrResolveFailed), errors.Is(err, git.ErrNoMergeBase):
			logger.DebugContext(ctx, "changelog base ref skipped", "ref", ref, "error", err)
		default:
			return "", git.WrapErrorf(err, "merge-base of HEAD and %s", ref)
		}
	}
	return "", nil
}

// RemoteProjectURL returns the project URL derived from the push URL of the
// named remote, or "" when the remote does not exist.
func RemoteProjectURL(ctx context.Context, p git.Provider, remote string) (string, error) {
	if remote == "" {
		remote = git.DefaultRemoteName
	}
	url, ok, err := p.RemotePushURL(ctx, remote)
	if err != nil {
		return "", git.WrapErrorf(err, "read push URL of remote %s", remote)
	}
	if !ok {
		return "", nil
	}
	return ProjectURL(url), nil
}
