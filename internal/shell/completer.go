package shell

import (
	"os"
	"path/filepath"

	"github.com/chzyer/readline"
)

func (s *Shell) completer() readline.AutoCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("open-video", readline.PcItemDynamic(listFiles)),
		readline.PcItem("open-capture", readline.PcItemDynamic(listFiles)),
		readline.PcItem("jump"),
		readline.PcItem("next"),
		readline.PcItem("prev"),
		readline.PcItem("goto"),
		readline.PcItem("step"),
		readline.PcItem("ref"),
		readline.PcItem("date"),
		readline.PcItem("time"),
		readline.PcItem("tz",
			readline.PcItem("UTC"),
		),
		readline.PcItem("inputs"),
		readline.PcItem("apply"),
		readline.PcItem("modify"),
		readline.PcItem("reset"),
		readline.PcItem("status"),
		readline.PcItem("stats"),
		readline.PcItem("snapshot"),
		readline.PcItem("export"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)
}

// listFiles offers the regular files of the working directory.
func listFiles(string) []string {
	entries, err := os.ReadDir(".")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, filepath.Clean(e.Name()))
		}
	}
	return names
}
