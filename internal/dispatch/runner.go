package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/runger/grepl/internal/matchlist"
)

// CompleteFunc receives the parsed result of one search run. The error is
// the external tool's own failure, with its stderr text kept literal. The
// returned error reports a problem installing the result.
type CompleteFunc func(matchlist.List, error) error

// Runner executes a compiled search command line and delivers the parsed
// match list to done. The two implementations share this contract and are
// picked once at startup: SyncRunner invokes done before returning and
// propagates its outcome; JobRunner returns immediately and delivers the
// result from a background goroutine.
type Runner interface {
	Run(ctx context.Context, cmdline string, done CompleteFunc) error
}

// SyncRunner blocks for the full duration of the search process. Simple and
// predictable; the deliberate tradeoff is that a slow search stalls the
// caller.
type SyncRunner struct {
	Shell string
	proc  ProcessController
}

// NewSyncRunner returns a Runner that executes searches in the foreground.
func NewSyncRunner() *SyncRunner {
	return &SyncRunner{proc: NewProcessController()}
}

func (r *SyncRunner) Run(ctx context.Context, cmdline string, done CompleteFunc) error {
	list, err := runShell(ctx, r.Shell, cmdline, r.proc)
	return done(list, err)
}

// JobRunner launches each search out-of-band so the caller is not blocked on
// long-running searches. Completion is delivered via done; cancellation is
// the context's, handled by the process controller.
type JobRunner struct {
	Shell string
	proc  ProcessController
	log   *slog.Logger
	wg    sync.WaitGroup
}

// NewJobRunner returns a Runner that executes searches in the background.
func NewJobRunner(log *slog.Logger) *JobRunner {
	return &JobRunner{proc: NewProcessController(), log: log}
}

func (r *JobRunner) Run(ctx context.Context, cmdline string, done CompleteFunc) error {
	job := uuid.NewString()
	r.log.Debug("search job launched", "job", job, "command", cmdline)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		list, err := runShell(ctx, r.Shell, cmdline, r.proc)
		if err != nil {
			r.log.Error("search job failed", "job", job, "error", err)
		} else {
			r.log.Debug("search job finished", "job", job, "matches", len(list))
		}
		if installErr := done(list, err); installErr != nil {
			r.log.Error("search job result discarded", "job", job, "error", installErr)
		}
	}()
	return nil
}

// Wait blocks until every launched job has delivered its result.
func (r *JobRunner) Wait() {
	r.wg.Wait()
}

// runShell executes cmdline through the shell so the compiled escaping is
// honored, capturing stdout in full and a stderr tail for diagnostics.
func runShell(ctx context.Context, shell, cmdline string, proc ProcessController) (matchlist.List, error) {
	cmd := shellCommand(shell, cmdline)
	var stdout bytes.Buffer
	stderr := newTailBuffer(DefaultStderrTail)
	cmd.Stdout = &stdout
	cmd.Stderr = stderr

	if err := proc.Start(cmd); err != nil {
		return nil, err
	}
	if err := proc.Wait(ctx, cmd, DefaultGracePeriod); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			// Exit 1 is the grep convention for "no matches": an empty
			// result, not a failure.
			return parseMatches(stdout.Bytes()), nil
		}
		// Surface the tool's own error text unmodified; it is more useful
		// than anything we could wrap around it.
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, errors.New(msg)
		}
		return nil, fmt.Errorf("search program: %w", err)
	}
	return parseMatches(stdout.Bytes()), nil
}

func shellCommand(shell, cmdline string) *exec.Cmd {
	if shell == "" {
		shell = defaultShell()
	}
	if runtime.GOOS == "windows" {
		return exec.Command(shell, "/C", cmdline)
	}
	return exec.Command(shell, "-c", cmdline)
}

func defaultShell() string {
	if runtime.GOOS == "windows" {
		return "cmd"
	}
	return "/bin/sh"
}
