package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"vfsemu/internal/source"
)

const (
	// DefaultStartDelay is the pause before the first script command
	DefaultStartDelay = time.Second
	// DefaultInterval is the pause between script commands
	DefaultInterval = 500 * time.Millisecond
)

// ParseScript reads one command per line, trimming whitespace and dropping
// blank lines and lines starting with '#'.
func ParseScript(r io.Reader) ([]string, error) {
	var commands []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		commands = append(commands, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return commands, nil
}

// LoadScript opens path with opener and parses it with ParseScript.
func LoadScript(ctx context.Context, opener source.Opener, path string) ([]string, error) {
	rc, err := opener.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open script %s: %w", path, err)
	}
	defer rc.Close()

	commands, err := ParseScript(rc)
	if err != nil {
		return nil, fmt.Errorf("read script %s: %w", path, err)
	}
	shellLogger.Info("Loaded script %s with %d commands", path, len(commands))
	return commands, nil
}

// ReplayOptions controls script pacing.
type ReplayOptions struct {
	StartDelay time.Duration
	Interval   time.Duration
}

// Replay runs commands one per tick, echoing each as if typed. A command
// that fails unexpectedly is reported and skipped. Cancelling ctx stops
// before the next command; a running command is never interrupted. Replay
// reports whether the script ran exit.
func (sh *Shell) Replay(ctx context.Context, commands []string, opts ReplayOptions) (exit bool, err error) {
	if len(commands) == 0 {
		return false, nil
	}

	sh.printf("Running script (%d commands)...\n", len(commands))
	if err := sleep(ctx, opts.StartDelay); err != nil {
		return false, err
	}

	var tick <-chan time.Time
	if opts.Interval > 0 {
		ticker := time.NewTicker(opts.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for i, command := range commands {
		if i > 0 && tick != nil {
			select {
			case <-ctx.Done():
				shellLogger.Info("Script cancelled after %d of %d commands", i, len(commands))
				return false, ctx.Err()
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return false, ctx.Err()
		}

		sh.printf(">>> %s\n", command)
		if sh.safeExecute(command) {
			return true, nil
		}
	}

	sh.printf("Script finished\n")
	return false, nil
}

func (sh *Shell) safeExecute(command string) (exit bool) {
	defer func() {
		if r := recover(); r != nil {
			shellLogger.Error("Command %q failed: %v", command, r)
			sh.printf("Skipping failed command: %v\n", r)
			exit = false
		}
	}()
	return sh.Execute(command)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
