// Package shell is the interactive terminal front end. It reads commands with
// readline and runs each one on the event loop that owns the alignment
// sessions.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chrissnell/motionsync/internal/align"
	"github.com/chrissnell/motionsync/internal/eventloop"
	"github.com/chrissnell/motionsync/internal/syncerr"
	"github.com/chrissnell/motionsync/internal/video"
	"github.com/chrissnell/motionsync/pkg/config"
	"github.com/chzyer/readline"
	"go.uber.org/zap"
)

// Shell drives one Aligner from typed commands.
type Shell struct {
	loop    *eventloop.Loop
	aligner *align.Aligner
	cfg     config.ShellData
	logger  *zap.SugaredLogger

	// out is only written from the loop goroutine.
	out io.Writer
}

// New creates a Shell and the Aligner it drives. The aligner's deferred steps
// are scheduled on loop, and navigator notifications are printed to out.
func New(loop *eventloop.Loop, alignCfg align.Config, shellCfg config.ShellData, out io.Writer) *Shell {
	s := &Shell{
		loop:   loop,
		cfg:    shellCfg,
		logger: alignCfg.Logger,
		out:    out,
	}

	alignCfg.Scheduler = loop
	alignCfg.NavigatorOptions = append(alignCfg.NavigatorOptions,
		video.WithBoundaryHandler(s.onBoundary),
		video.WithStepHandler(s.onStep))
	s.aligner = align.New(alignCfg)
	return s
}

// Run reads commands until exit, EOF, an interrupt on an empty line, or ctx
// is cancelled.
func (s *Shell) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.cfg.Prompt,
		HistoryFile:     s.historyFile(),
		AutoComplete:    s.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer rl.Close()

	// Unblock Readline when the process is told to stop.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			rl.Close()
		case <-done:
		}
	}()

	err = s.loop.Do(ctx, func() error {
		s.out = rl.Stdout()
		fmt.Fprintln(s.out, "=== motionsync ===")
		fmt.Fprintln(s.out, "Type 'help' for commands.")
		return nil
	})
	if err != nil {
		return err
	}

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					return nil
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		if !s.Execute(ctx, line) {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// Execute runs one command line on the event loop and waits for it. It
// reports false when the shell should exit.
func (s *Shell) Execute(ctx context.Context, line string) bool {
	cmd, args := parseCommand(line)
	switch cmd {
	case "":
		return true
	case "exit", "quit", "q":
		return false
	}

	err := s.loop.Do(ctx, func() error {
		if err := s.dispatch(ctx, cmd, args); err != nil {
			s.report(err)
		}
		return nil
	})
	if err != nil {
		s.logger.Warnw("command not run", "command", cmd, "error", err)
		return !errors.Is(err, eventloop.ErrStopped)
	}
	return true
}

func (s *Shell) historyFile() string {
	if s.cfg.HistoryFile != "" {
		return s.cfg.HistoryFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".motionsync_history")
}

// usageError is a malformed command line.
type usageError struct {
	usage string
}

func (e *usageError) Error() string { return "usage: " + e.usage }

func usage(format string, a ...any) error {
	return &usageError{usage: fmt.Sprintf(format, a...)}
}

// report prints err in terms the user can act on.
func (s *Shell) report(err error) {
	var (
		ue     *usageError
		notice *syncerr.RetryNotice
		unres  *syncerr.AlignmentUnresolvedError
	)
	switch {
	case errors.As(err, &ue):
		fmt.Fprintln(s.out, ue.Error())
	case errors.Is(err, syncerr.ErrLocked):
		fmt.Fprintln(s.out, "The alignment is locked. Run 'modify' to edit the inputs.")
	case errors.As(err, &unres):
		fmt.Fprintf(s.out, "No %s yet. Set the inputs and run 'apply'.\n", unres.What)
	case errors.As(err, &notice):
		fmt.Fprintf(s.out, "Could not %s. Please check the input and try again.\n", notice.Action)
		s.logger.Debugw("command failed", "error", notice.Err)
	default:
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
}

func (s *Shell) onBoundary(b video.Boundary) {
	if b.AtStart() {
		fmt.Fprintln(s.out, "Already at the first frame.")
		return
	}
	fmt.Fprintln(s.out, "Already at the last frame.")
}

func (s *Shell) onStep(task *video.StepTask) {
	if _, err := task.Result(); err != nil {
		fmt.Fprintf(s.out, "Step %+d failed: %v\n", task.Delta, err)
		return
	}
	s.printReadout()
}

func (s *Shell) printReadout() {
	r, err := s.aligner.Readout()
	if err != nil {
		return
	}
	fmt.Fprintf(s.out, "frame %s/%d  %s  %s fps\n", r.FrameText(), r.FrameCount, r.ElapsedText(), r.FPSText())
}

func (s *Shell) outputPath(name string) string {
	if filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) {
		return name
	}
	return filepath.Join(s.cfg.OutputDir, name)
}
