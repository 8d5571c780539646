package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/subseqio/lz/internal/config"
	"github.com/subseqio/lz/internal/logging"
	"github.com/subseqio/lz/internal/search"
	"github.com/subseqio/lz/internal/tui"
	"github.com/subseqio/lz/internal/watch"
)

func handleInteractive(args []string) {
	fs := flag.NewFlagSet("interactive", flag.ExitOnError)
	topK := fs.Int("top-k", 0, "number of results to keep (0 = use config file or default 100)")
	ignoreCase := fs.Bool("ignore-case", false, "case-insensitive matching")
	smartCase := fs.Bool("smart-case", false, "ignore case unless the query has an uppercase letter")
	preserveOrder := fs.Bool("preserve-order", false, "require fuzzy queries to match in order")
	parallel := fs.Bool("parallel", false, "dispatch batches across GOMAXPROCS workers")
	debug := fs.Bool("debug", false, "enable debug logging")

	fs.Usage = func() {
		fmt.Println("Usage: lazyline interactive [options] [file...]")
		fmt.Println()
		fmt.Println("Opens a live-filter TUI over the given files, or stdin if none")
		fmt.Println("are given. Files are re-read and the search re-run on change.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	files := fs.Args()

	if *debug {
		logDir := debugLogDir()
		logging.Init(logging.Config{Debug: true, Level: "debug", LogDir: logDir})
		defer logging.Shutdown()

		// SIGUSR1 dumps the in-memory ring buffer so a live session can
		// be inspected without killing the TUI first.
		usr1 := make(chan os.Signal, 1)
		signal.Notify(usr1, syscall.SIGUSR1)
		go func() {
			for range usr1 {
				dumpPath := filepath.Join(logDir, fmt.Sprintf("dump-%d.jsonl", time.Now().Unix()))
				if err := logging.DumpRingBuffer(dumpPath); err != nil {
					logging.ForComponent(logging.CompTUI).Error("ring_buffer_dump_failed", slog.String("error", err.Error()))
				} else {
					logging.ForComponent(logging.CompTUI).Info("ring_buffer_dumped", slog.String("path", dumpPath))
				}
			}
		}()
	}

	if len(files) == 0 && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "lazyline: interactive mode needs piped stdin or file arguments")
		os.Exit(1)
	}

	lines, err := loadLines(files)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lazyline: %v\n", err)
		os.Exit(1)
	}

	cfg := search.Config{
		TopK:          *topK,
		IgnoreCase:    *ignoreCase,
		SmartCase:     *smartCase,
		PreserveOrder: *preserveOrder,
		Parallel:      *parallel,
	}
	if f, ferr := config.Load(); ferr == nil {
		cfg = f.ToSearchConfig(cfg)
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 100
	}

	p := tea.NewProgram(tui.New(cfg, lines))

	if len(files) > 0 {
		w, werr := watch.New(files, func() {
			if reloaded, rerr := loadLines(files); rerr == nil {
				p.Send(tui.LinesUpdatedMsg{Lines: reloaded})
			}
		})
		if werr == nil {
			w.Start()
			defer w.Close()
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "lazyline: %v\n", err)
		os.Exit(1)
	}
}

// loadLines reads every file in turn, or stdin if none are given, into one
// in-memory slice for the TUI's viewport to re-search against.
func loadLines(files []string) ([]string, error) {
	if len(files) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return readLines(data), nil
	}

	var lines []string
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		lines = append(lines, readLines(data)...)
	}
	return lines, nil
}
