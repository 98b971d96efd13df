package executor

import (
	"context"
	"errors"
	"os/exec"
	"sync"
	"time"

	"github.com/alessio/shellescape"
)

// Command is a single process invocation
type Command struct {
	Dir  string
	Name string
	Args []string
}

// String renders the command as a line that can be pasted into a shell
func (c Command) String() string {
	return shellescape.QuoteCommand(append([]string{c.Name}, c.Args...))
}

// Outcome holds what a finished process produced
type Outcome struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandRunner starts processes. A non-zero exit is reported through
// Outcome.ExitCode; the error is reserved for processes that could not be
// started or were stopped by the context.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (Outcome, error)
}

// how long to wait for output pipes after the process was killed
const waitDelay = 2 * time.Second

type execRunner struct {
	maxOutput int
}

func (r execRunner) Run(ctx context.Context, c Command) (Outcome, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.WaitDelay = waitDelay

	stdout := &limitedBuffer{max: r.maxOutput}
	stderr := &limitedBuffer{max: r.maxOutput}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	out := Outcome{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return out, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		out.ExitCode = -1
		return out, ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}
	return out, err
}

const truncatedMarker = "\n...[output truncated]"

// limitedBuffer keeps the first max bytes written and silently drops the rest
type limitedBuffer struct {
	mu        sync.Mutex
	buf       []byte
	max       int
	truncated bool
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.max <= 0 {
		b.buf = append(b.buf, p...)
		return len(p), nil
	}
	room := b.max - len(b.buf)
	if room <= 0 {
		b.truncated = b.truncated || len(p) > 0
		return len(p), nil
	}
	if len(p) > room {
		b.buf = append(b.buf, p[:room]...)
		b.truncated = true
		return len(p), nil
	}
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.truncated {
		return string(b.buf) + truncatedMarker
	}
	return string(b.buf)
}
