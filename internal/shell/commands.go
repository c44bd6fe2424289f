package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/chrissnell/motionsync/internal/align"
	"github.com/chrissnell/motionsync/internal/video"
)

// parseCommand splits a line into a lower-cased command and its arguments.
// A bare signed integer such as "+5" or "-10" is shorthand for "jump".
func parseCommand(line string) (string, []string) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return "", nil
	}

	cmd := strings.ToLower(parts[0])
	if isSignedInt(cmd) {
		return "jump", parts[:1]
	}
	return cmd, parts[1:]
}

func isSignedInt(s string) bool {
	if len(s) < 2 || (s[0] != '+' && s[0] != '-') {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil
}

func (s *Shell) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help", "h", "?":
		s.showHelp()
		return nil

	case "open-video", "video":
		if len(args) != 1 {
			return usage("open-video <path>")
		}
		if err := s.aligner.OpenVideo(ctx, args[0]); err != nil {
			return err
		}
		s.printReadout()
		return nil

	case "open-capture", "capture":
		if len(args) < 1 || len(args) > 2 {
			return usage("open-capture <path> [right-marker]")
		}
		marker := ""
		if len(args) == 2 {
			marker = args[1]
		}
		if err := s.aligner.OpenCapture(ctx, args[0], marker); err != nil {
			return err
		}
		s.showCapture()
		return nil

	case "jump", "j":
		return s.jump(ctx, args)

	case "next", "n":
		return s.jump(ctx, []string{"+1"})

	case "prev", "p":
		return s.jump(ctx, []string{"-1"})

	case "goto", "g":
		return s.gotoFrame(ctx, args)

	case "step":
		return s.step(ctx, args)

	case "ref", "date", "time", "tz":
		return s.setInput(cmd, args)

	case "inputs", "i":
		s.showInputs()
		return nil

	case "apply", "a":
		if err := s.aligner.Apply(ctx); err != nil {
			return err
		}
		s.showAlignment()
		s.printReadout()
		return nil

	case "modify", "m":
		s.aligner.Modify()
		fmt.Fprintf(s.out, "Alignment is %s.\n", s.aligner.State())
		return nil

	case "reset":
		s.aligner.Reset()
		fmt.Fprintln(s.out, "Sessions closed and inputs restored to defaults.")
		return nil

	case "status", "s":
		s.showStatus()
		return nil

	case "stats":
		return s.showStats(args)

	case "snapshot":
		return s.snapshot(args)

	case "export":
		return s.export(args)
	}

	return usage("unknown command %q, type 'help'", cmd)
}

func (s *Shell) navigator() (*video.Navigator, error) {
	nav, err := s.aligner.Navigator()
	if err != nil {
		return nil, errors.New("open a video first")
	}
	return nav, nil
}

func (s *Shell) jump(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("jump <+N|-N>")
	}
	delta, err := strconv.Atoi(args[0])
	if err != nil {
		return usage("jump <+N|-N>")
	}
	nav, err := s.navigator()
	if err != nil {
		return err
	}

	before := nav.Current()
	if _, err := nav.Jump(ctx, delta); err != nil {
		return err
	}
	if nav.Current() != before || delta == 0 {
		s.printReadout()
	}
	return nil
}

func (s *Shell) gotoFrame(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("goto <frame-number|MM:SS>")
	}
	store := s.aligner.Video()
	nav, err := s.navigator()
	if err != nil {
		return err
	}
	index, err := align.ResolveVideoReference(args[0], store.FPS())
	if err != nil {
		return err
	}
	if _, err := nav.JumpAbsolute(ctx, index); err != nil {
		return err
	}
	s.printReadout()
	return nil
}

func (s *Shell) step(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usage("step <+N|-N> [count]")
	}
	delta, err := strconv.Atoi(args[0])
	if err != nil {
		return usage("step <+N|-N> [count]")
	}
	count := 1
	if len(args) == 2 {
		count, err = strconv.Atoi(args[1])
		if err != nil || count < 1 {
			return usage("step <+N|-N> [count]")
		}
	}
	nav, err := s.navigator()
	if err != nil {
		return err
	}

	for i := 0; i < count; i++ {
		nav.ScheduleStep(ctx, delta)
	}
	return nil
}

func (s *Shell) setInput(field string, args []string) error {
	in := s.aligner.Inputs()
	if len(args) == 0 {
		s.showInputs()
		return nil
	}
	value := strings.Join(args, " ")

	switch field {
	case "ref":
		in.VideoReference = value
	case "date":
		in.Date = value
	case "time":
		in.Time = value
	case "tz":
		in.Timezone = value
	}
	if err := s.aligner.SetInputs(in); err != nil {
		return err
	}
	s.showInputs()
	return nil
}
