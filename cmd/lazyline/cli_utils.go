package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/subseqio/lz/internal/config"
	"github.com/subseqio/lz/internal/search"
)

// CLIOutput handles consistent output formatting across run/interactive.
type CLIOutput struct {
	jsonMode bool
}

// NewCLIOutput creates an output handler for the given format flags.
func NewCLIOutput(jsonMode bool) *CLIOutput {
	return &CLIOutput{jsonMode: jsonMode}
}

type resultJSON struct {
	Score    float64 `json:"score"`
	Text     string  `json:"text"`
	Filename string  `json:"filename,omitempty"`
	Lineno   int     `json:"lineno,omitempty"`
}

// PrintResults renders search results as TSV (score<TAB>filename:lineno<TAB>text,
// with the filename:lineno column left out when a result has no filename)
// or, in JSON mode, as an indented JSON array.
func (c *CLIOutput) PrintResults(results []search.Result) {
	if c.jsonMode {
		out := make([]resultJSON, len(results))
		for i, r := range results {
			out[i] = resultJSON{Score: r.Score, Text: r.Text, Filename: r.Filename, Lineno: r.Lineno}
		}
		c.printJSON(out)
		return
	}

	for _, r := range results {
		loc := ""
		if r.Filename != "" {
			loc = fmt.Sprintf("%s:%d\t", r.Filename, r.Lineno)
		}
		fmt.Printf("%.2f\t%s%s\n", r.Score, loc, r.Text)
	}
}

// Error prints an error, either as a line on stderr or as a JSON object.
func (c *CLIOutput) Error(err error) {
	if c.jsonMode {
		c.printJSON(map[string]string{"error": err.Error()})
		return
	}
	fmt.Fprintf(os.Stderr, "lazyline: %v\n", err)
}

func (c *CLIOutput) printJSON(data interface{}) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "lazyline: failed to format JSON: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

// debugLogDir resolves where --debug writes its rotated log file and ring
// buffer dumps: alongside config.toml rather than the current directory,
// so repeated invocations from different working directories share one
// log history. Falls back to the current directory if the config
// directory can't be resolved.
func debugLogDir() string {
	dir, err := config.ConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "logs")
}

// readLines splits a newline-terminated byte stream into lines without
// their terminator, matching the engine's "no empty final line" contract.
func readLines(data []byte) []string {
	text := string(data)
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
