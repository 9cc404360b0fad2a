// Package report formats the console output shown while a batch runs.
package report

import (
	"fmt"
	"strings"
)

// Banner returns the startup banner.
func Banner() string {
	var b strings.Builder
	b.WriteString("\n=== Stock Market Data Analyzer ===\n")
	b.WriteString("This tool downloads and analyzes financial data for any publicly traded stock\n")
	return b.String()
}

// TickerProgress returns the per-ticker progress line.
func TickerProgress(i, total int, ticker string) string {
	return fmt.Sprintf("\n[%d/%d] Analyzing %s...\n", i, total, ticker)
}

// Artifact returns the line printed when an output file is written.
func Artifact(name string) string {
	return fmt.Sprintf("✓ %s\n", name)
}

// TickerFailure returns the line printed when a ticker exhausts its retries.
func TickerFailure(ticker string, err error) string {
	return fmt.Sprintf("✗ Error processing %s: %v\n", ticker, err)
}

// BatchStart returns the preamble printed before the batch loop.
func BatchStart(n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nProcessing %d ticker(s)...\n", n)
	b.WriteString("This may take a few minutes depending on the amount of data requested.\n")
	b.WriteString("Downloading data, creating charts, and generating analysis...\n")
	return b.String()
}

// Completion returns the final banner. It is printed even when every ticker
// failed.
func Completion(outputDir string) string {
	var b strings.Builder
	b.WriteString("\n=== Analysis Complete! ===\n")
	fmt.Fprintf(&b, "Data has been saved to: %s\n", outputDir)
	b.WriteString("Each stock has its own folder containing:\n")
	b.WriteString("  • Candlestick chart with volume analysis\n")
	b.WriteString("  • Excel files with financial data\n")
	b.WriteString("  • Summary report with key statistics\n")
	b.WriteString("\nThank you for using the Stock Market Data Analyzer!\n")
	return b.String()
}
