package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/subseqio/lz/internal/config"
	"github.com/subseqio/lz/internal/logging"
	"github.com/subseqio/lz/internal/search"
)

func handleRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	jsonOutput := fs.Bool("json", false, "output results as JSON instead of TSV")
	topK := fs.Int("top-k", 0, "number of results to keep (0 = use config file or default 10)")
	batchSize := fs.Int("batch-size", 0, "lines per worker batch (0 = default)")
	maxSymbolGap := fs.Int("max-symbol-gap", 0, "max symbol gap for fuzzy scoring (0 = default)")
	wordDelims := fs.String("word-delims", "", "word-delimiter byte set (empty = default)")
	gapPenalty := fs.String("gap-penalty", "", "linear or log (empty = default)")
	ignoreCase := fs.Bool("ignore-case", false, "case-insensitive matching")
	smartCase := fs.Bool("smart-case", false, "ignore case unless the query has an uppercase letter")
	preserveOrder := fs.Bool("preserve-order", false, "require fuzzy queries to match in order")
	parallel := fs.Bool("parallel", false, "dispatch batches across GOMAXPROCS workers")
	debug := fs.Bool("debug", false, "enable debug logging to ~/.config/lazyline/logs/debug.log")

	fs.Usage = func() {
		fmt.Println("Usage: lazyline run [options] <query> [file...]")
		fmt.Println()
		fmt.Println("Reads lines from the given files, or stdin if none are given,")
		fmt.Println("and prints the top-k lowest-scoring matches for <query>.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		os.Exit(1)
	}
	query, files := rest[0], rest[1:]

	if *debug {
		logging.Init(logging.Config{Debug: true, Level: "debug", LogDir: debugLogDir()})
		defer logging.Shutdown()
	}

	cfg := search.Config{
		Query:         query,
		TopK:          *topK,
		BatchSize:     *batchSize,
		MaxSymbolGap:  *maxSymbolGap,
		WordDelims:    *wordDelims,
		GapPenalty:    search.GapPenalty(*gapPenalty),
		IgnoreCase:    *ignoreCase,
		SmartCase:     *smartCase,
		PreserveOrder: *preserveOrder,
		Parallel:      *parallel,
		InputFiles:    files,
	}

	if f, err := config.Load(); err == nil {
		cfg = f.ToSearchConfig(cfg)
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 10
	}

	out := NewCLIOutput(*jsonOutput)

	driver, err := search.NewDriver(cfg)
	if err != nil {
		out.Error(err)
		os.Exit(1)
	}

	results, ioErrs := driver.SearchFiles()
	for _, e := range ioErrs {
		logging.ForComponent(logging.CompCLI).Warn("file_skipped", slog.String("error", e.Error()))
		fmt.Fprintf(os.Stderr, "lazyline: %v\n", e)
	}

	out.PrintResults(results)
}
