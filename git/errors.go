package git

import (
	"context"
	"errors"
	"fmt"

	ferrors "github.com/input-output-hk/catalyst-forge-libs/gitinfo/errors"
	"github.com/input-output-hk/catalyst-forge-libs/gitinfo/executor"
)

// Common sentinel errors that can be checked with errors.Is().
// Backend failures are wrapped so callers never depend on go-git or on the
// wording of git's own diagnostics.

// ErrProbeFailed is returned when a backend cannot serve a directory.
// Open swallows it while other backends remain to be tried.
var ErrProbeFailed = errors.New("git backend unavailable")

// ErrNoBackend is returned by Open when every backend probe failed.
var ErrNoBackend = errors.New("no git backend available")

// ErrNotARepository is returned when the directory is not inside a Git
// working tree.
var ErrNotARepository = errors.New("not a git repository")

// ErrUnsupported is returned when the chosen backend cannot perform the
// requested operation or cannot handle the repository layout.
var ErrUnsupported = errors.New("operation not supported by this backend")

// ErrInvalidArgument is returned when an argument is rejected before any
// Git access takes place.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrResolveFailed is returned when a revision specification cannot be
// resolved to an object (e.g., branch/tag doesn't exist, invalid SHA).
var ErrResolveFailed = errors.New("cannot resolve revision")

// ErrNoTagFound is returned by describe when no tag is reachable from the
// target that satisfies the lightweight and pattern filters.
var ErrNoTagFound = errors.New("no names found, cannot describe anything")

// ErrNoMergeBase is returned when two commits share no common ancestor.
var ErrNoMergeBase = errors.New("no merge base")

// ErrTagMissing is returned when a named tag does not exist.
var ErrTagMissing = errors.New("tag does not exist")

// ErrUnexpectedOutput is returned when git produced output this package
// cannot interpret.
var ErrUnexpectedOutput = errors.New("unexpected git output")

// WrapError wraps an error with additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// WrapErrorf wraps an error with formatted additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// ErrorCode maps an error returned by this package to a platform error code.
func ErrorCode(err error) ferrors.ErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ferrors.CodeCanceled
	case errors.Is(err, ErrResolveFailed), errors.Is(err, ErrTagMissing),
		errors.Is(err, ErrNoTagFound), errors.Is(err, ErrNoMergeBase):
		return ferrors.CodeNotFound
	case errors.Is(err, ErrInvalidArgument):
		return ferrors.CodeInvalidInput
	case errors.Is(err, ErrUnsupported):
		return ferrors.CodeNotImplemented
	case errors.Is(err, ErrNoBackend), errors.Is(err, ErrProbeFailed),
		errors.Is(err, ErrNotARepository), errors.Is(err, executor.ErrCommandNotFound):
		return ferrors.CodeUnavailable
	case errors.Is(err, executor.ErrCommandFailed), errors.Is(err, executor.ErrProcessStart):
		return ferrors.CodeExecutionFailed
	default:
		return ferrors.GetCode(err)
	}
}
