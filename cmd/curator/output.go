package main

import (
	"fmt"
	"os"
)

// ANSI codes for the status helpers below. All human-facing progress goes to
// stderr so stdout stays clean for piped output like `curator export`.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

func printLine(color, mark, format string, args ...any) {
	fmt.Fprintln(os.Stderr, colorize(color, mark+" "+fmt.Sprintf(format, args...)))
}

// printSuccess reports a completed command, e.g. the sync tally.
func printSuccess(format string, args ...any) {
	printLine(colorGreen, "✓", format, args...)
}

func printError(format string, args ...any) {
	printLine(colorRed, "✗", format, args...)
}

// printWarning flags recoverable problems: kept inbox lines, catalog issues
// from check, an unreachable run-history store.
func printWarning(format string, args ...any) {
	printLine(colorYellow, "⚠", format, args...)
}

// printStep announces the item being worked on; printStatus adds an
// indented label/value detail line under it.
func printStep(format string, args ...any) {
	printLine(colorCyan, "→", format, args...)
}

func printStatus(label string, format string, args ...any) {
	val := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "  %s %s\n", colorize(colorBold, label+":"), val)
}
