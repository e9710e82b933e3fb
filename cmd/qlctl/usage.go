package main

import (
	"flag"
	"fmt"
	"io"
)

var commandOrder = []struct{ name, summary string }{
	{"classify <path>...", "print the item kind of each path"},
	{"open <path>...", "open each path once (-remote: through the running launcher)"},
	{"add <path>...", "add paths to the running launcher"},
	{"activate", "bring the launcher window to the front"},
	{"history", "print recent launches (-n limits the count)"},
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	// NOTE: Usage output is best-effort; write failures are ignored.
	_, _ = fmt.Fprintln(w, "qlctl for Quick Launch")
	_, _ = fmt.Fprintln(w, "Usage: qlctl [flags] <command> [args]")
	_, _ = fmt.Fprintln(w, "Commands:")
	for _, c := range commandOrder {
		_, _ = fmt.Fprintf(w, "  %-20s %s\n", c.name, c.summary)
	}
	_, _ = fmt.Fprintln(w, "Flags:")
	fs.SetOutput(w)
	fs.PrintDefaults()
}
