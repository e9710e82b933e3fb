// Command qlctl classifies and opens launcher items from a shell and talks to
// the running launcher over its IPC endpoint.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"quicklaunch/internal/config"
	"quicklaunch/internal/history"
	"quicklaunch/internal/ipc"
	"quicklaunch/internal/items"
	"quicklaunch/internal/notify"
	"quicklaunch/internal/opener"
	"quicklaunch/internal/procutil"
)

// Test seams.
var (
	sendFn           = ipc.Send
	detectPlatformFn = opener.Detect
	configPathFn     = config.DefaultPath
)

const historyTimeout = 5 * time.Second

var errFlagAfterArgs = errors.New("flags must come before the arguments")

func main() {
	procutil.ConsoleUTF8()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	addr     string
	terminal string
	remote   bool
	verbose  bool
	limit    int
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("qlctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stderr, fs) }

	var opts options
	fs.StringVar(&opts.addr, "addr", "", "IPC address of the running launcher (default: per-user address)")
	fs.StringVar(&opts.terminal, "terminal", "", "terminal emulator for command items (default: from config)")
	fs.BoolVar(&opts.remote, "remote", false, "open through the running launcher instead of locally")
	fs.BoolVar(&opts.verbose, "v", false, "debug logging to stderr")
	fs.IntVar(&opts.limit, "n", 20, "number of history entries to print")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	rest := fs.Args()
	if len(rest) == 0 {
		printUsage(stderr, fs)
		return 2
	}
	cmd := rest[0]
	cmdArgs, err := parseCommandArgs(fs, rest[1:])
	switch {
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errFlagAfterArgs):
		fmt.Fprintln(stderr, err.Error())
		printUsage(stderr, fs)
		return 2
	case err != nil:
		// flag has already reported the bad flag and printed usage.
		return 2
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	switch cmd {
	case "classify":
		return runClassify(cmdArgs, stdout, stderr)
	case "open":
		if opts.remote {
			return runRemote(opts, ipc.CommandOpen, cmdArgs, stdout, stderr)
		}
		return runOpen(opts, cmdArgs, stderr)
	case "add":
		return runRemote(opts, ipc.CommandAdd, cmdArgs, stdout, stderr)
	case "activate":
		return runRemote(opts, ipc.CommandActivate, nil, stdout, stderr)
	case "history":
		return runHistory(opts, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		printUsage(stderr, fs)
		return 2
	}
}

func runClassify(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "classify requires a path")
		return 2
	}
	for _, arg := range args {
		fmt.Fprintf(stdout, "%s\t%s\n", items.Classify(arg), arg)
	}
	return 0
}

// parseCommandArgs lets global flags follow the command name, as in
// "qlctl open -remote foo". Flags after the first argument are rejected
// unless a "--" ended flag parsing.
func parseCommandArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	rest := fs.Args()
	consumed := args[:len(args)-len(rest)]
	if len(consumed) > 0 && consumed[len(consumed)-1] == "--" {
		return rest, nil
	}
	for _, arg := range rest {
		if len(arg) > 1 && strings.HasPrefix(arg, "-") {
			return nil, fmt.Errorf("%w: %q", errFlagAfterArgs, arg)
		}
	}
	return rest, nil
}

// runOpen opens each argument once in this process. The exit code reflects
// whether every launch was accepted by the OS.
func runOpen(opts options, args []string, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "open requires a path")
		return 2
	}
	terminal := opts.terminal
	if terminal == "" {
		terminal = loadConfig().Terminal
	}

	failed := 0
	o := opener.New(detectPlatformFn(opener.Options{Terminal: terminal}), notify.Nop{},
		opener.WithObserver(func(out opener.Outcome) {
			if out.Err != nil {
				failed++
				fmt.Fprintf(stderr, "open %s: %v\n", out.Item.Path, out.Err)
			}
		}))
	for _, arg := range args {
		item, err := items.New(arg, "", "")
		if err != nil {
			failed++
			fmt.Fprintf(stderr, "open %q: %v\n", arg, err)
			continue
		}
		o.Open(item)
	}
	if failed > 0 {
		return 1
	}
	return 0
}

func runRemote(opts options, command string, args []string, stdout, stderr io.Writer) int {
	if command != ipc.CommandActivate && len(args) == 0 {
		fmt.Fprintf(stderr, "%s requires at least one argument\n", command)
		return 2
	}
	if command == ipc.CommandAdd {
		args = absArgs(args)
	}
	resp, err := sendFn(opts.addr, ipc.Request{Command: command, Args: args})
	if err != nil {
		if ipc.IsConnectionError(err) {
			fmt.Fprintln(stderr, "launcher is not running")
			return 1
		}
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(stdout, resp.Message)
	}
	if resp.Error != "" {
		fmt.Fprintln(stderr, resp.Error)
	}
	if !resp.OK {
		return 1
	}
	return 0
}

func runHistory(opts options, stdout, stderr io.Writer) int {
	configPath := configPathFn()
	cfg := loadConfig()
	path := filepath.Join(cfg.ResolveDataDir(configPath), history.FileName)
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(stderr, "no launch history at %s\n", path)
		return 1
	}
	journal, err := history.Open(path, 0)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	defer journal.Close()

	ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
	defer cancel()
	entries, err := journal.Recent(ctx, opts.limit)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	for _, e := range entries {
		status := "ok"
		if !e.OK {
			status = "failed: " + e.Error
		}
		fmt.Fprintf(stdout, "%s\t%s\t%s\t%s\n", e.OpenedAt.Format(time.DateTime), e.Kind, e.Path, status)
	}
	return 0
}

// loadConfig reads the launcher's runtime config without creating it.
func loadConfig() config.Config {
	path := configPathFn()
	cfg, err := config.Load(path)
	if err != nil {
		slog.Debug("[DEBUG-CONFIG] config unreadable, using defaults", "path", path, "error", err)
		cfg = config.DefaultConfig()
	}
	if withEnv, err := config.LoadEnv(path, cfg); err == nil {
		cfg = withEnv
	}
	return cfg
}

// absArgs makes existing filesystem arguments absolute for the running
// launcher, which has its own working directory.
func absArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		if _, err := os.Stat(arg); err == nil {
			if abs, err := filepath.Abs(arg); err == nil {
				arg = abs
			}
		}
		out = append(out, strings.TrimSpace(arg))
	}
	return out
}
