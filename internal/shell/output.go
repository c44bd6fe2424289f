package shell

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/chrissnell/motionsync/internal/motion"
	"github.com/dustin/go-humanize"
)

func (s *Shell) showHelp() {
	fmt.Fprintf(s.out, "\nCommands:\n")
	fmt.Fprintf(s.out, "  open-video <path>               Open a video file\n")
	fmt.Fprintf(s.out, "  open-capture <path> [marker]    Open a sensor capture, optionally naming the right-side marker\n")
	fmt.Fprintf(s.out, "  jump <+N|-N>, +N, -N            Move N frames\n")
	fmt.Fprintf(s.out, "  next, prev                      Move one frame\n")
	fmt.Fprintf(s.out, "  goto <frame|MM:SS>              Move to a frame number or elapsed time\n")
	fmt.Fprintf(s.out, "  step <+N|-N> [count]            Move N frames after one frame period, count times\n")
	fmt.Fprintf(s.out, "  ref <frame|MM:SS>               Set the video reference\n")
	fmt.Fprintf(s.out, "  date <YYYY/MM/DD>               Set the reference date\n")
	fmt.Fprintf(s.out, "  time <HH:MM:SS>                 Set the reference time\n")
	fmt.Fprintf(s.out, "  tz <zone>                       Set the reference timezone (IANA name)\n")
	fmt.Fprintf(s.out, "  inputs                          Show the alignment inputs\n")
	fmt.Fprintf(s.out, "  apply                           Align the capture to the video and lock the inputs\n")
	fmt.Fprintf(s.out, "  modify                          Unlock the inputs for editing\n")
	fmt.Fprintf(s.out, "  reset                           Close both files and restore default inputs\n")
	fmt.Fprintf(s.out, "  status                          Show sessions and alignment\n")
	fmt.Fprintf(s.out, "  stats [label]                   Summarize the aligned signals\n")
	fmt.Fprintf(s.out, "  snapshot [file.png]             Save the current frame\n")
	fmt.Fprintf(s.out, "  export [file.csv]               Save the aligned signals\n")
	fmt.Fprintf(s.out, "  help                            Show this help\n")
	fmt.Fprintf(s.out, "  exit                            Leave the shell\n")
	fmt.Fprintf(s.out, "\n")
}

func (s *Shell) showInputs() {
	in := s.aligner.Inputs()
	fmt.Fprintf(s.out, "Inputs (%s):\n", s.aligner.State())
	fmt.Fprintf(s.out, "  ref:  %s\n", orUnset(in.VideoReference))
	fmt.Fprintf(s.out, "  date: %s\n", orUnset(in.Date))
	fmt.Fprintf(s.out, "  time: %s\n", orUnset(in.Time))
	fmt.Fprintf(s.out, "  tz:   %s\n", orUnset(in.Timezone))
}

func orUnset(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}

func (s *Shell) showVideo() {
	store := s.aligner.Video()
	if store == nil {
		fmt.Fprintln(s.out, "Video: none")
		return
	}
	info := store.Info()
	fmt.Fprintf(s.out, "Video: %s\n", store.Path)
	fmt.Fprintf(s.out, "  session: %s\n", store.ID)
	fmt.Fprintf(s.out, "  codec:   %s %dx%d\n", info.Codec, info.Width, info.Height)
	fmt.Fprintf(s.out, "  frames:  %s at %.2f fps\n", humanize.Comma(int64(info.FrameCount)), info.FPS)
}

func (s *Shell) showCapture() {
	sensor := s.aligner.Capture()
	if sensor == nil {
		fmt.Fprintln(s.out, "Capture: none")
		return
	}
	sum := sensor.Summary()
	fmt.Fprintf(s.out, "Capture: %s\n", sensor.Path)
	fmt.Fprintf(s.out, "  session: %s\n", sensor.ID)
	if fi, err := os.Stat(sensor.Path); err == nil {
		fmt.Fprintf(s.out, "  format:  %s, %s layout, %s\n", sensor.Container, sensor.Convention, humanize.Bytes(uint64(fi.Size())))
	} else {
		fmt.Fprintf(s.out, "  format:  %s, %s layout\n", sensor.Container, sensor.Convention)
	}
	fmt.Fprintf(s.out, "  labels:  %v\n", sensor.Labels())
	fmt.Fprintf(s.out, "  samples: %s over %s (%s Hz)\n",
		humanize.Comma(int64(sum.Samples)), sum.Duration.Round(time.Millisecond), humanize.FtoaWithDigits(sum.SampleRate, 2))
	fmt.Fprintf(s.out, "  span:    %s to %s UTC\n",
		sum.Start.Format("2006-01-02 15:04:05.000"), sum.End.Format("2006-01-02 15:04:05.000"))
}

func (s *Shell) showAlignment() {
	al, err := s.aligner.Alignment()
	if err != nil {
		fmt.Fprintf(s.out, "Alignment: %s, nothing published\n", s.aligner.State())
		return
	}
	fmt.Fprintf(s.out, "Alignment: %s\n", s.aligner.State())
	fmt.Fprintf(s.out, "  instant:         %s\n", al.Instant.Format(time.RFC3339))
	fmt.Fprintf(s.out, "  sample index:    %s\n", humanize.Comma(int64(al.Index)))
	fmt.Fprintf(s.out, "  reference frame: %d\n", al.ReferenceFrame+1)
	if sensor := s.aligner.Capture(); sensor != nil {
		fmt.Fprintf(s.out, "  aligned samples: %s per label\n", humanize.Comma(int64(sensor.Len()-al.Index)))
	}
}

func (s *Shell) showStatus() {
	s.showVideo()
	s.printReadout()
	s.showCapture()
	s.showInputs()
	s.showAlignment()
}

func (s *Shell) showStats(args []string) error {
	if len(args) > 1 {
		return usage("stats [label]")
	}
	signals, err := s.aligner.Signals()
	if err != nil {
		return err
	}

	found := false
	for _, sig := range signals {
		if len(args) == 1 && sig.Label != args[0] {
			continue
		}
		found = true
		st := motion.Describe(sig.Values)
		fmt.Fprintf(s.out, "%-6s n=%s mean=%.4f sd=%.4f min=%.4f max=%.4f\n",
			sig.Label, humanize.Comma(int64(st.Count)), st.Mean, st.StdDev, st.Min, st.Max)
	}
	if !found && len(args) == 1 {
		return fmt.Errorf("no signal labelled %q", args[0])
	}
	return nil
}

func (s *Shell) snapshot(args []string) error {
	if len(args) > 1 {
		return usage("snapshot [file.png]")
	}
	nav, err := s.navigator()
	if err != nil {
		return err
	}
	frame := nav.Frame()
	if frame == nil {
		return errors.New("no frame has been decoded")
	}

	name := fmt.Sprintf("frame-%06d.png", frame.Index+1)
	if len(args) == 1 {
		name = args[0]
	}
	path := s.outputPath(name)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := frame.WritePNG(w); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(s.out, "Saved frame %d to %s\n", frame.Index+1, path)
	return nil
}

// export writes one row per aligned sample: its position, capture
// timestamp, and the value of every label.
func (s *Shell) export(args []string) error {
	if len(args) > 1 {
		return usage("export [file.csv]")
	}
	al, err := s.aligner.Alignment()
	if err != nil {
		return err
	}
	signals, err := s.aligner.Signals()
	if err != nil {
		return err
	}
	timestamps := s.aligner.Capture().Timestamps()[al.Index:]

	name := "aligned-signals.csv"
	if len(args) == 1 {
		name = args[0]
	}
	path := s.outputPath(name)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"sample", "time_us", "offset_s"}
	for _, sig := range signals {
		header = append(header, sig.Label)
	}
	if err := w.Write(header); err != nil {
		return err
	}

	origin := timestamps[0]
	row := make([]string, len(header))
	for i, ts := range timestamps {
		row[0] = strconv.Itoa(al.Index + i)
		row[1] = strconv.FormatInt(ts, 10)
		row[2] = strconv.FormatFloat(float64(ts-origin)/1e6, 'f', 6, 64)
		for j, sig := range signals {
			row[3+j] = strconv.FormatFloat(sig.Values[i], 'f', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	fmt.Fprintf(s.out, "Wrote %s samples of %d signals to %s\n", humanize.Comma(int64(len(timestamps))), len(signals), path)
	return nil
}
