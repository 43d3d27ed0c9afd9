package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/gitinfo/executor"
)

// CLIProvider answers queries by running the git command-line tool in the
// working directory.
type CLIProvider struct {
	dir    string
	git    executor.Executor
	logger *slog.Logger
}

var _ Provider = (*CLIProvider)(nil)

func probeCLI(ctx context.Context, dir string, o *Options) (*CLIProvider, error) {
	runner := executor.NewWrappedExecutor(o.GitExecutable,
		executor.WithWorkingDir(dir),
		executor.WithEncoding(o.Encoding),
		executor.WithLogger(o.Logger),
	)
	return newCLIProvider(ctx, dir, runner, o.Logger)
}

func newCLIProvider(ctx context.Context, dir string, runner executor.Executor, logger *slog.Logger) (*CLIProvider, error) {
	p := &CLIProvider{dir: dir, git: runner, logger: logger}

	res, err := p.git.Execute(ctx, []string{"rev-parse", "--is-inside-work-tree"}, executor.WithRequireSuccess(false))
	if err != nil {
		return nil, probeFailed(err)
	}
	if res.ExitCode != 0 || res.FirstLine() != "true" {
		return nil, probeFailed(WrapErrorf(ErrNotARepository, "git rev-parse in %s exited %d", dir, res.ExitCode))
	}
	return p, nil
}

// Backend implements Provider.
func (p *CLIProvider) Backend() BackendKind { return BackendCLI }

// Close implements Provider. The command-line backend holds no resources.
func (p *CLIProvider) Close() error { return nil }

// DotGitDirectory implements Provider.
func (p *CLIProvider) DotGitDirectory(ctx context.Context) (string, error) {
	return p.line(ctx, "rev-parse", "--absolute-git-dir")
}

// Head implements Provider.
func (p *CLIProvider) Head(ctx context.Context) (string, error) {
	return p.line(ctx, "rev-parse", "HEAD")
}

// AbbreviateRef implements Provider. A zero minimumLength leaves the
// length to git's own default.
func (p *CLIProvider) AbbreviateRef(ctx context.Context, ref string, minimumLength int) (string, error) {
	if err := validateAbbrevLength(minimumLength); err != nil {
		return "", err
	}
	short := "--short"
	if minimumLength > 0 {
		short = fmt.Sprintf("--short=%d", minimumLength)
	}
	return p.line(ctx, "rev-parse", short, ref)
}

// ShortenRef implements Provider.
func (p *CLIProvider) ShortenRef(_ context.Context, ref string) (string, error) {
	return ShortenRef(ref), nil
}

// FullBranch implements Provider.
func (p *CLIProvider) FullBranch(ctx context.Context) (string, bool, error) {
	return p.optionalLine(ctx, "symbolic-ref", "HEAD")
}

// RemotePushURL implements Provider.
func (p *CLIProvider) RemotePushURL(ctx context.Context, name string) (string, bool, error) {
	return p.optionalLine(ctx, "remote", "get-url", "--push", name)
}

// RemotesCount implements Provider.
func (p *CLIProvider) RemotesCount(ctx context.Context) (int, error) {
	res, err := p.run(ctx, "remote")
	if err != nil {
		return 0, err
	}
	n := 0
	for _, l := range res.Lines {
		if strings.TrimSpace(l) != "" {
			n++
		}
	}
	return n, nil
}

// Upstream implements Provider.
func (p *CLIProvider) Upstream(ctx context.Context) (string, bool, error) {
	return p.optionalLine(ctx, "rev-parse", "--symbolic-full-name", "@{upstream}")
}

// MergeBase implements Provider.
func (p *CLIProvider) MergeBase(ctx context.Context, a, b string) (string, error) {
	args := []string{"merge-base", a, b}
	res, err := p.git.Execute(ctx, args, executor.WithRequireSuccess(false))
	if err != nil {
		return "", WrapErrorf(err, "git %s", strings.Join(args, " "))
	}
	switch {
	case res.ExitCode == 0 && res.FirstLine() != "":
		return res.FirstLine(), nil
	case res.ExitCode == 1 && strings.TrimSpace(res.Combined) == "":
		return "", WrapErrorf(ErrNoMergeBase, "%s and %s", a, b)
	default:
		return "", p.classify(args, res)
	}
}

// ResolveCommit implements Provider.
func (p *CLIProvider) ResolveCommit(ctx context.Context, rev string) (string, error) {
	return p.line(ctx, "rev-parse", "--verify", rev+"^{commit}")
}

// Commits is not available in the command-line backend.
func (p *CLIProvider) Commits(_ context.Context, latestRev, earliestRev string) ([]CommitData, error) {
	return nil, WrapErrorf(ErrUnsupported, "listing commits %s..%s with the git command-line backend",
		earliestRev, latestRev)
}

// Describe implements Provider.
func (p *CLIProvider) Describe() *DescribeCall {
	return NewDescribeCall(p.describe)
}

func (p *CLIProvider) describe(ctx context.Context, opts DescribeOptions) (string, error) {
	args := []string{"describe"}
	if opts.Long {
		args = append(args, "--long")
	}
	if opts.IncludeLightweightTags {
		args = append(args, "--tags")
	}
	for _, m := range opts.Match {
		args = append(args, "--match", m)
	}
	args = append(args, opts.Target)

	res, err := p.git.Execute(ctx, args, executor.WithRequireSuccess(false))
	if err != nil {
		return "", WrapErrorf(err, "git %s", strings.Join(args, " "))
	}
	if res.ExitCode != 0 {
		if noTagOutput(res.Combined) {
			return "", errors.Join(WrapErrorf(ErrNoTagFound, "describe %s", opts.Target), p.commandError(args, res))
		}
		return "", p.classify(args, res)
	}
	if res.FirstLine() == "" {
		return "", WrapErrorf(ErrUnexpectedOutput, "git describe %s printed nothing", opts.Target)
	}
	return res.FirstLine(), nil
}

// run executes git with args and requires success.
func (p *CLIProvider) run(ctx context.Context, args ...string) (*executor.Result, error) {
	res, err := p.git.Execute(ctx, args, executor.WithRequireSuccess(false))
	if err != nil {
		return nil, WrapErrorf(err, "git %s", strings.Join(args, " "))
	}
	if res.ExitCode != 0 {
		return nil, p.classify(args, res)
	}
	return res, nil
}

// line executes git and returns the first line of its output.
func (p *CLIProvider) line(ctx context.Context, args ...string) (string, error) {
	res, err := p.run(ctx, args...)
	if err != nil {
		return "", err
	}
	if res.FirstLine() == "" {
		return "", WrapErrorf(ErrUnexpectedOutput, "git %s printed nothing", strings.Join(args, " "))
	}
	return res.FirstLine(), nil
}

// optionalLine is like line but reports a non-zero exit as absence.
func (p *CLIProvider) optionalLine(ctx context.Context, args ...string) (string, bool, error) {
	res, err := p.git.Execute(ctx, args, executor.WithRequireSuccess(false))
	if err != nil {
		return "", false, WrapErrorf(err, "git %s", strings.Join(args, " "))
	}
	if res.ExitCode != 0 || res.FirstLine() == "" {
		p.logger.DebugContext(ctx, "git query reported no value",
			"args", args, "exit_code", res.ExitCode)
		return "", false, nil
	}
	return res.FirstLine(), true, nil
}

// classify turns a failed invocation into an error, marking unresolvable
// revisions with ErrResolveFailed.
func (p *CLIProvider) classify(args []string, res *executor.Result) error {
	cmdErr := p.commandError(args, res)
	if res.ExitCode == 128 && unresolvedOutput(res.Combined) {
		return errors.Join(WrapErrorf(ErrResolveFailed, "git %s", strings.Join(args, " ")), cmdErr)
	}
	return cmdErr
}

func (p *CLIProvider) commandError(args []string, res *executor.Result) *executor.CommandError {
	return &executor.CommandError{
		Command:  "git " + strings.Join(args, " "),
		Dir:      p.dir,
		ExitCode: res.ExitCode,
		Output:   res.Combined,
		Kind:     executor.ErrCommandFailed,
	}
}

var unresolvedMarkers = []string{
	"unknown revision",
	"bad revision",
	"needed a single revision",
	"not a valid",
	"invalid object name",
	"ambiguous argument",
}

func unresolvedOutput(out string) bool {
	lower := strings.ToLower(out)
	for _, m := range unresolvedMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func noTagOutput(out string) bool {
	lower := strings.ToLower(out)
	return strings.Contains(lower, "no names found") ||
		strings.Contains(lower, "no tags can describe") ||
		strings.Contains(lower, "no annotated tags can describe")
}
