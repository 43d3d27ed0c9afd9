package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/encoding"

	"github.com/input-output-hk/catalyst-forge-libs/gitinfo/executor"
)

const (
	// DefaultStorerCacheSize is the default size, in MiB, of the library
	// backend's LRU object cache.
	DefaultStorerCacheSize = 96

	// DefaultGitExecutable is the program run by the command-line backend.
	DefaultGitExecutable = "git"

	// DefaultRemoteName is the remote consulted when none is configured.
	DefaultRemoteName = "origin"

	// DefaultAbbrevLength is the abbreviation length used when none is requested.
	DefaultAbbrevLength = 7

	// MinAbbrevLength is the shortest abbreviation that may be requested.
	MinAbbrevLength = 4
)

// Provider exposes read-only Git state for one working directory.
//
// A Provider is not safe for concurrent use. Open one per goroutine.
type Provider interface {
	io.Closer

	// Backend reports which implementation serves this provider.
	Backend() BackendKind

	// DotGitDirectory returns the absolute path of the repository's git directory.
	DotGitDirectory(ctx context.Context) (string, error)

	// Head returns the full object id HEAD resolves to.
	Head(ctx context.Context) (string, error)

	// AbbreviateRef resolves ref and returns a unique prefix of its object id
	// at least minimumLength characters long. Zero selects the default length.
	AbbreviateRef(ctx context.Context, ref string, minimumLength int) (string, error)

	// ShortenRef returns the human-readable form of a full reference name.
	ShortenRef(ctx context.Context, ref string) (string, error)

	// FullBranch returns the full reference name HEAD points at, or ok == false
	// when HEAD is detached.
	FullBranch(ctx context.Context) (name string, ok bool, err error)

	// RemotePushURL returns the push URL of the named remote, or ok == false
	// when the remote does not exist.
	RemotePushURL(ctx context.Context, name string) (url string, ok bool, err error)

	// RemotesCount returns the number of configured remotes.
	RemotesCount(ctx context.Context) (int, error)

	// Upstream returns the full reference name of the current branch's
	// upstream, or ok == false when there is none.
	Upstream(ctx context.Context) (ref string, ok bool, err error)

	// MergeBase returns the best common ancestor of two revisions.
	MergeBase(ctx context.Context, a, b string) (string, error)

	// ResolveCommit returns the full id of the commit rev names.
	ResolveCommit(ctx context.Context, rev string) (string, error)

	// Commits returns the commits reachable from latestRev down to and
	// including earliestRev, latest first. An empty earliestRev selects the
	// full history.
	Commits(ctx context.Context, latestRev, earliestRev string) ([]CommitData, error)

	// Tags lists annotated tags, plus lightweight tags when requested.
	Tags(ctx context.Context, includeLightweight bool) ([]Tag, error)

	// Describe returns a new describe request against this repository.
	Describe() *DescribeCall
}

// CommitData is a read-only summary of one commit.
type CommitData struct {
	FullHash        string
	AbbreviatedHash string
	CommitTime      time.Time
	// Message always ends with a newline.
	Message string
}

// Subject returns the first line of the commit message.
func (c CommitData) Subject() string {
	subject, _, _ := strings.Cut(c.Message, "\n")
	return strings.TrimSuffix(subject, "\r")
}

// Tag names a tag and the object it finally points at. Annotated tags are
// peeled through every tag object to the underlying target.
type Tag struct {
	Name             string
	TargetCommitHash string
}

// BackendKind identifies a Provider implementation.
type BackendKind int

const (
	// BackendCLI runs the git command-line tool.
	BackendCLI BackendKind = iota

	// BackendLibrary reads the repository with go-git.
	BackendLibrary
)

// String returns a human-readable string representation of the BackendKind.
func (k BackendKind) String() string {
	switch k {
	case BackendCLI:
		return "cli"
	case BackendLibrary:
		return "library"
	default:
		return "unknown"
	}
}

// ParseBackendKind parses the names produced by BackendKind.String.
func ParseBackendKind(s string) (BackendKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cli":
		return BackendCLI, nil
	case "library":
		return BackendLibrary, nil
	default:
		return 0, WrapErrorf(ErrInvalidArgument, "unknown backend %q", s)
	}
}

// DefaultBackends is the probe order used by Open.
func DefaultBackends() []BackendKind {
	return []BackendKind{BackendCLI, BackendLibrary}
}

// Options configures backend selection and backend behavior.
type Options struct {
	// Backends is the probe order. Defaults to DefaultBackends().
	Backends []BackendKind

	// Logger receives debug diagnostics. Defaults to a discarding logger.
	Logger *slog.Logger

	// Encoding decodes git output in the command-line backend.
	// Nil selects executor.NativeEncoding().
	Encoding encoding.Encoding

	// GitExecutable is the program the command-line backend runs.
	// Defaults to DefaultGitExecutable.
	GitExecutable string

	// StorerCacheSize sets the library backend's object cache size in MiB.
	// Defaults to DefaultStorerCacheSize.
	StorerCacheSize int

	encodingSet bool
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithBackends sets the backend probe order.
func WithBackends(kinds ...BackendKind) Option {
	return func(o *Options) {
		o.Backends = append([]BackendKind(nil), kinds...)
	}
}

// WithLogger sets the logger for probe and command diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithEncoding sets the encoding of git's output. A nil encoding means
// output is taken as UTF-8.
func WithEncoding(enc encoding.Encoding) Option {
	return func(o *Options) {
		o.Encoding = enc
		o.encodingSet = true
	}
}

// WithGitExecutable sets the git program used by the command-line backend.
func WithGitExecutable(path string) Option {
	return func(o *Options) {
		o.GitExecutable = path
	}
}

// WithStorerCacheSize sets the library backend's object cache size in MiB.
func WithStorerCacheSize(size int) Option {
	return func(o *Options) {
		o.StorerCacheSize = size
	}
}

// Validate checks that the Options are properly configured.
func (o *Options) Validate() error {
	if o.StorerCacheSize < 0 {
		return WrapError(ErrInvalidArgument, "StorerCacheSize cannot be negative")
	}
	for _, k := range o.Backends {
		if k != BackendCLI && k != BackendLibrary {
			return WrapErrorf(ErrInvalidArgument, "unknown backend kind %d", int(k))
		}
	}
	return nil
}

// applyDefaults sets default values for any unset fields in Options.
func (o *Options) applyDefaults() {
	if len(o.Backends) == 0 {
		o.Backends = DefaultBackends()
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if !o.encodingSet {
		o.Encoding = executor.NativeEncoding()
	}
	if o.GitExecutable == "" {
		o.GitExecutable = DefaultGitExecutable
	}
	if o.StorerCacheSize == 0 {
		o.StorerCacheSize = DefaultStorerCacheSize
	}
}

func buildOptions(opts []Option) (*Options, error) {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	if err := o.Validate(); err != nil {
		return nil, WrapError(err, "invalid options")
	}
	o.applyDefaults()
	return o, nil
}

// Open returns a Provider for dir using the first backend whose probe
// succeeds. Probe failures are logged and the next backend is tried. When
// none succeeds the error wraps ErrNoBackend and lists every probe failure.
func Open(ctx context.Context, dir string, opts ...Option) (Provider, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}

	var failures []string
	for _, kind := range o.Backends {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p, err := probe(ctx, kind, dir, o)
		if err == nil {
			o.Logger.DebugContext(ctx, "git backend selected", "backend", kind.String(), "dir", dir)
			return p, nil
		}

		o.Logger.DebugContext(ctx, "git backend probe failed", "backend", kind.String(), "dir", dir, "error", err)
		failures = append(failures, fmt.Sprintf("%s: %v", kind, err))
	}

	return nil, fmt.Errorf("%w for %s (%s)", ErrNoBackend, dir, strings.Join(failures, "; "))
}

// OpenCLI opens dir with the command-line backend only.
func OpenCLI(ctx context.Context, dir string, opts ...Option) (*CLIProvider, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	return probeCLI(ctx, dir, o)
}

// OpenLibrary opens dir with the go-git backend only.
func OpenLibrary(ctx context.Context, dir string, opts ...Option) (*LibraryProvider, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	return probeLibrary(ctx, dir, o)
}

func probe(ctx context.Context, kind BackendKind, dir string, o *Options) (Provider, error) {
	switch kind {
	case BackendCLI:
		p, err := probeCLI(ctx, dir, o)
		if err != nil {
			return nil, err
		}
		return p, nil
	case BackendLibrary:
		p, err := probeLibrary(ctx, dir, o)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, WrapErrorf(ErrInvalidArgument, "unknown backend kind %d", int(kind))
	}
}

func probeFailed(err error) error {
	if errors.Is(err, ErrProbeFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrProbeFailed, err)
}

// validateAbbrevLength checks a requested abbreviation length.
func validateAbbrevLength(n int) error {
	if n == 0 || n >= MinAbbrevLength {
		return nil
	}
	return WrapErrorf(ErrInvalidArgument, "minimum abbreviation length must be 0 or at least %d, got %d",
		MinAbbrevLength, n)
}

// messageWithNewline normalizes a commit message to end with "\n".
func messageWithNewline(msg string) string {
	if strings.HasSuffix(msg, "\n") {
		return msg
	}
	return msg + "\n"
}

func abbreviate(hash string) string {
	if len(hash) <= DefaultAbbrevLength {
		return hash
	}
	return hash[:DefaultAbbrevLength]
}
