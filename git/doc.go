// Package git answers read-only questions about a Git repository.
//
// Two interchangeable backends implement the Provider interface: one runs
// the installed git command-line tool, the other reads the repository in
// process with go-git. Callers open a directory and get whichever backend
// is available, then query it without caring which one they got.
//
// # Opening a Repository
//
// Open probes the backends in order (command line first, then go-git) and
// returns the first that can serve the directory:
//
//	p, err := git.Open(ctx, "/path/to/worktree",
//	    git.WithLogger(logger),
//	)
//	if err != nil {
//	    // errors.Is(err, git.ErrNoBackend)
//	}
//	defer p.Close()
//
// A specific backend can be forced with OpenCLI or OpenLibrary, or by
// passing WithBackends.
//
// # Repository State
//
//	head, err := p.Head(ctx)
//	short, err := p.AbbreviateRef(ctx, "HEAD", 0)
//	branch, ok, err := p.FullBranch(ctx)         // ok == false on detached HEAD
//	url, ok, err := p.RemotePushURL(ctx, "origin") // ok == false if no such remote
//	tags, err := p.Tags(ctx, true)
//
// # Describe
//
// Describe returns a builder mirroring git describe. Each Run executes the
// request again:
//
//	desc, err := p.Describe().
//	    LongFormat(true).
//	    IncludeLightweightTags(true).
//	    Matching("v*").
//	    Run(ctx)
//
// # History
//
// Commits lists the commits between two revisions, both included, newest
// first. Only the go-git backend supports it; the command-line backend
// returns ErrUnsupported.
//
//	commits, err := p.Commits(ctx, "HEAD", "v1.0.0")
//
// # Error Handling
//
// Failures wrap the package's sentinel errors and can be tested with
// errors.Is:
//
//	_, err := p.ResolveCommit(ctx, "no-such-branch")
//	if errors.Is(err, git.ErrResolveFailed) {
//	    // unknown revision
//	}
//
// ErrorCode maps these errors onto the platform error codes.
//
// # Thread Safety
//
// A Provider is NOT safe for concurrent use. Open one Provider per
// goroutine.
//
// # Limitations
//
// This package never writes objects or references, never talks to remotes
// and does not read linked work trees with the go-git backend.
package git
