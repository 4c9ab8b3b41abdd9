package platform

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/1broseidon/halo/internal/radial"
)

// ErrNoCommand is returned by RunOrRaise when no window matches and there
// is nothing to launch.
var ErrNoCommand = errors.New("no matching window and no command to run")

// Launcher starts a shell command without waiting for it.
type Launcher func(command string) error

// Launch runs command through sh -c in its own session with stdio
// detached, so it outlives the daemon.
func Launch(command string) error {
	command = strings.TrimSpace(command)
	if command == "" {
		return ErrNoCommand
	}
	cmd := exec.Command("sh", "-c", command)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Env = os.Environ()
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch %q: %w", command, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// RaiseResult reports what RunOrRaise did.
type RaiseResult struct {
	Raised   bool
	Window   radial.Window
	Score    MatchScore
	Launched bool
}

// RunOrRaise focuses the best window matching class, or launches command
// when none matches.
func RunOrRaise(b Backend, class, command string, launch Launcher) (RaiseResult, error) {
	if launch == nil {
		launch = Launch
	}

	if strings.TrimSpace(class) != "" {
		windows, err := b.Windows()
		if err != nil {
			return RaiseResult{}, fmt.Errorf("list windows: %w", err)
		}
		if w, score, ok := BestMatch(windows, class); ok {
			if err := b.Focus(w.ID); err != nil {
				return RaiseResult{}, fmt.Errorf("focus %s: %w", w.ID, err)
			}
			return RaiseResult{Raised: true, Window: w, Score: score}, nil
		}
	}

	if strings.TrimSpace(command) == "" {
		return RaiseResult{}, ErrNoCommand
	}
	if err := launch(command); err != nil {
		return RaiseResult{}, err
	}
	return RaiseResult{Launched: true}, nil
}

// CloseClass closes every window whose class equals class, ignoring case,
// and returns how many close requests were sent.
func CloseClass(b Backend, class string) (int, error) {
	class = strings.TrimSpace(class)
	if class == "" {
		return 0, nil
	}
	windows, err := b.Windows()
	if err != nil {
		return 0, fmt.Errorf("list windows: %w", err)
	}

	var (
		closed int
		errs   []error
	)
	for _, w := range windows {
		if !strings.EqualFold(w.Class, class) {
			continue
		}
		if err := b.Close(w.ID); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", w.ID, err))
			continue
		}
		closed++
	}
	return closed, errors.Join(errs...)
}
