// Package executor runs external programs and captures their output as
// decoded text lines.
//
// Stdin of the child is the null device. Stdout and stderr are drained
// concurrently so a chatty child cannot block on a full pipe, and both
// readers are joined before a result is returned. Output bytes are decoded
// with the platform's native text encoding unless another encoding is
// configured.
package executor

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// Result holds the captured output of a finished command.
type Result struct {
	// Stdout is the decoded standard output.
	Stdout string
	// Stderr is the decoded standard error.
	Stderr string
	// Combined holds stdout and stderr lines in the order they were read.
	Combined string
	// Lines are the stdout lines with line terminators removed.
	Lines []string
	// ExitCode is the exit status, or -1 if the process did not exit normally.
	ExitCode int
}

// FirstLine returns the first stdout line, or "" when there was no output.
func (r *Result) FirstLine() string {
	if r == nil || len(r.Lines) == 0 {
		return ""
	}
	return r.Lines[0]
}

// Executor defines the interface for command execution.
type Executor interface {
	// Execute runs the program with args.
	Execute(ctx context.Context, args []string, opts ...Option) (*Result, error)
}

// CommandExecutor runs a single program with fixed arguments.
type CommandExecutor struct {
	program string
	args    []string
	options *Options
}

// Options configures command execution behavior.
type Options struct {
	// WorkingDir is the directory the child runs in.
	WorkingDir string

	// Env holds variables appended to the current environment.
	Env map[string]string

	// RequireSuccess turns a non-zero exit status into an error.
	RequireSuccess bool

	// Encoding decodes child output. Nil means the bytes are taken as UTF-8.
	Encoding encoding.Encoding

	// Logger receives debug records for every command.
	Logger *slog.Logger
}

// Option is a function that modifies Options.
type Option func(*Options)

// DefaultOptions returns default execution options.
func DefaultOptions() *Options {
	return &Options{
		RequireSuccess: true,
		Encoding:       NativeEncoding(),
		Env:            make(map[string]string),
		Logger:         slog.New(slog.DiscardHandler),
	}
}

// New creates a new CommandExecutor.
func New(program string, args ...string) *CommandExecutor {
	return &CommandExecutor{
		program: program,
		args:    args,
		options: DefaultOptions(),
	}
}

// NewWrappedExecutor creates an executor for a specific program. The given
// options become the base for every command it runs.
func NewWrappedExecutor(program string, opts ...Option) *WrappedExecutor {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	return &WrappedExecutor{
		program: program,
		options: options,
	}
}

// WrappedExecutor provides a clean interface for a specific program.
type WrappedExecutor struct {
	program string
	options *Options
}

// Program returns the wrapped program name.
func (w *WrappedExecutor) Program() string {
	return w.program
}

// Command creates a new executor for the wrapped program with specific arguments.
func (w *WrappedExecutor) Command(args ...string) *CommandExecutor {
	return &CommandExecutor{
		program: w.program,
		args:    args,
		options: w.options,
	}
}

// Execute runs the wrapped program with args.
func (w *WrappedExecutor) Execute(ctx context.Context, args []string, opts ...Option) (*Result, error) {
	return w.Command(args...).Execute(ctx, opts...)
}

// Execute runs the command to completion.
func (c *CommandExecutor) Execute(ctx context.Context, opts ...Option) (*Result, error) {
	options := c.mergeOptions(opts...)
	logger := options.Logger.With("command", c.commandLine())
	logger.DebugContext(ctx, "running command", "dir", options.WorkingDir)

	result, err := c.executeOnce(ctx, options)
	if err != nil {
		logger.DebugContext(ctx, "command failed", "exit_code", exitCodeOf(result), "error", err)
		return result, err
	}

	logger.DebugContext(ctx, "command finished", "exit_code", result.ExitCode, "lines", len(result.Lines))
	return result, nil
}

// setupCommand configures the exec.Cmd with working directory and environment.
func (c *CommandExecutor) setupCommand(cmd *exec.Cmd, options *Options) {
	if options.WorkingDir != "" {
		cmd.Dir = options.WorkingDir
	}

	if len(options.Env) > 0 {
		keys := make([]string, 0, len(options.Env))
		for k := range options.Env {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		cmd.Env = os.Environ()
		for _, k := range keys {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, options.Env[k]))
		}
	}

	// A nil Stdin is connected to the null device.
	cmd.Stdin = nil
}

func (c *CommandExecutor) executeOnce(ctx context.Context, options *Options) (*Result, error) {
	cmd := exec.CommandContext(ctx, c.program, c.args...)
	c.setupCommand(cmd, options)

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, c.newError(options, -1, "", ErrProcessStart, err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, c.newError(options, -1, "", ErrProcessStart, err)
	}

	if err := cmd.Start(); err != nil {
		kind := ErrProcessStart
		if errors.Is(err, exec.ErrNotFound) || (errors.Is(err, os.ErrNotExist) && cmd.Dir == "") {
			kind = ErrCommandNotFound
		}
		return nil, c.newError(options, -1, "", kind, err)
	}

	var (
		stdoutBuf, stderrBuf bytes.Buffer
		combined             lockedBuffer
		g                    errgroup.Group
	)
	g.Go(func() error {
		return drain(stdoutPipe, options.Encoding, &stdoutBuf, &combined)
	})
	g.Go(func() error {
		return drain(stderrPipe, options.Encoding, &stderrBuf, &combined)
	})

	// Both pipes must be fully read before Wait closes them.
	readErr := g.Wait()
	waitErr := cmd.Wait()

	result := &Result{
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		Combined: combined.String(),
		Lines:    splitLines(stdoutBuf.String()),
		ExitCode: exitCode(cmd, waitErr),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, c.newError(options, result.ExitCode, result.Combined, ErrCommandFailed, ctxErr)
	}
	if readErr != nil {
		return result, c.newError(options, result.ExitCode, result.Combined, ErrOutputRead, readErr)
	}

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return result, c.newError(options, result.ExitCode, result.Combined, ErrCommandFailed, waitErr)
	}
	if options.RequireSuccess && result.ExitCode != 0 {
		return result, c.newError(options, result.ExitCode, result.Combined, ErrCommandFailed, waitErr)
	}

	return result, nil
}

func (c *CommandExecutor) newError(options *Options, code int, output string, kind, cause error) *CommandError {
	return &CommandError{
		Command:  c.commandLine(),
		Dir:      options.WorkingDir,
		ExitCode: code,
		Output:   output,
		Kind:     kind,
		Cause:    cause,
	}
}

func (c *CommandExecutor) commandLine() string {
	parts := make([]string, 0, len(c.args)+1)
	parts = append(parts, quoteArg(c.program))
	for _, a := range c.args {
		parts = append(parts, quoteArg(a))
	}
	return strings.Join(parts, " ")
}

func (c *CommandExecutor) mergeOptions(opts ...Option) *Options {
	merged := *c.options

	env := make(map[string]string, len(c.options.Env))
	for k, v := range c.options.Env {
		env[k] = v
	}
	merged.Env = env

	for _, opt := range opts {
		opt(&merged)
	}

	if merged.Logger == nil {
		merged.Logger = slog.New(slog.DiscardHandler)
	}
	return &merged
}

// drain reads r line by line, decoding with enc, into own and shared.
// After a read or decode error the rest of the pipe is discarded so the
// child never blocks on a full pipe.
func drain(pipe io.Reader, enc encoding.Encoding, own *bytes.Buffer, shared *lockedBuffer) error {
	r := pipe
	if enc != nil {
		r = transform.NewReader(pipe, enc.NewDecoder())
	}

	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			own.WriteString(line)
			shared.WriteString(line)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			_, _ = io.Copy(io.Discard, pipe)
			return err
		}
	}
}

// splitLines splits decoded output on '\n' and strips a trailing '\r'
// from each line. A final empty segment is not reported as a line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func exitCode(cmd *exec.Cmd, waitErr error) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	if waitErr == nil {
		return 0
	}
	return -1
}

func exitCodeOf(r *Result) int {
	if r == nil {
		return -1
	}
	return r.ExitCode
}

func quoteArg(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"'\\") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) WriteString(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.WriteString(s)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// WithWorkingDir sets the working directory.
func WithWorkingDir(dir string) Option {
	return func(o *Options) {
		o.WorkingDir = dir
	}
}

// WithEnv adds environment variables.
func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string)
		}
		for k, v := range env {
			o.Env[k] = v
		}
	}
}

// WithEnvVar adds a single environment variable.
func WithEnvVar(key, value string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string)
		}
		o.Env[key] = value
	}
}

// WithRequireSuccess controls whether a non-zero exit status is an error.
// When disabled the caller inspects Result.ExitCode itself.
func WithRequireSuccess(require bool) Option {
	return func(o *Options) {
		o.RequireSuccess = require
	}
}

// WithEncoding sets the encoding used to decode child output.
// A nil encoding passes bytes through unchanged.
func WithEncoding(enc encoding.Encoding) Option {
	return func(o *Options) {
		o.Encoding = enc
	}
}

// WithLogger sets the logger for command diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}
