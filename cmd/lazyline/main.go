package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const version = "0.1.0"

func init() {
	initColorProfile()
}

// initColorProfile configures lipgloss's color profile, preferring an
// explicit LAZYLINE_COLOR override and otherwise auto-detecting.
func initColorProfile() {
	if v := os.Getenv("LAZYLINE_COLOR"); v != "" {
		switch strings.ToLower(v) {
		case "truecolor", "true", "24bit":
			lipgloss.SetColorProfile(termenv.TrueColor)
			return
		case "256", "ansi256":
			lipgloss.SetColorProfile(termenv.ANSI256)
			return
		case "16", "ansi", "basic":
			lipgloss.SetColorProfile(termenv.ANSI)
			return
		case "none", "off", "ascii":
			lipgloss.SetColorProfile(termenv.Ascii)
			return
		}
	}
	lipgloss.SetColorProfile(termenv.ColorProfile())
}

func main() {
	args := os.Args[1:]

	if len(args) == 0 {
		printHelp()
		os.Exit(1)
	}

	switch args[0] {
	case "version", "--version", "-v":
		fmt.Printf("lazyline v%s\n", version)
		return
	case "help", "--help", "-h":
		printHelp()
		return
	case "run":
		handleRun(args[1:])
		return
	case "interactive":
		handleInteractive(args[1:])
		return
	default:
		fmt.Fprintf(os.Stderr, "lazyline: unknown command %q\n", args[0])
		printHelp()
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("lazyline: fuzzy/boolean line search and scoring engine")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  lazyline run <query> [file...]    Batch search, print top-k")
	fmt.Println("  lazyline interactive [file...]    Live-filter TUI")
	fmt.Println("  lazyline version                  Print version")
	fmt.Println()
	fmt.Println("Run 'lazyline run -h' or 'lazyline interactive -h' for subcommand flags.")
}
