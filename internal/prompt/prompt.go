// Package prompt implements the interactive selection flow used when the
// corresponding command-line arguments are absent.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"stockanalyzer/internal/config"
)

// ErrExit is returned when the user types the exit sentinel at any prompt.
var ErrExit = errors.New("user requested exit")

// Prompter reads interactive answers line by line.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// New creates a Prompter reading from in and writing prompts to out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

// Ask prints the prompt and returns the entered line. Typing "exit"
// (case-insensitive, trimmed) at any prompt returns ErrExit; so does EOF.
func (p *Prompter) Ask(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", ErrExit
	}
	line := p.in.Text()
	if strings.EqualFold(strings.TrimSpace(line), "exit") {
		fmt.Fprintln(p.out, "\nExiting Stock Market Data Analyzer. Goodbye!")
		return "", ErrExit
	}
	return line, nil
}

// SelectDataTypes presents the numbered data-type menu and parses a
// comma-separated list of 1-based indices. "0", an empty answer, or any
// invalid selection falls back to all data types.
func (p *Prompter) SelectDataTypes() ([]string, error) {
	fmt.Fprintln(p.out, "\nSTEP 1: Select Data Types")
	fmt.Fprintln(p.out, "Available data types:")
	fmt.Fprintln(p.out, "0. ALL - Download all available data")
	for i, key := range config.DataTypeOrder {
		fmt.Fprintf(p.out, "%d. %s (%s)\n", i+1, config.DataTypeDescriptions[key], key)
	}
	fmt.Fprintln(p.out, "Type 'exit' at any prompt to quit.")

	selected, err := p.Ask("\nEnter numbers (e.g., '1,3,5' or '0' for all): ")
	if err != nil {
		return nil, err
	}
	selected = strings.TrimSpace(selected)
	if selected == "" || selected == "0" {
		fmt.Fprintln(p.out, "Selected: All data types")
		return allDataTypes(), nil
	}

	var types []string
	for _, part := range strings.Split(selected, ",") {
		idx, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			types = nil
			break
		}
		if idx >= 1 && idx <= len(config.DataTypeOrder) {
			types = append(types, config.DataTypeOrder[idx-1])
		}
	}
	if len(types) == 0 {
		fmt.Fprintln(p.out, "Invalid selection, defaulting to all data types")
		return allDataTypes(), nil
	}
	fmt.Fprintln(p.out, "Selected:", strings.Join(types, ", "))
	return types, nil
}

// AskTickers prompts for a space-separated, upper-cased list of symbols.
func (p *Prompter) AskTickers() ([]string, error) {
	fmt.Fprintln(p.out, "\nSTEP 2: Enter Stock Symbols")
	fmt.Fprintln(p.out, "Enter one or more stock ticker symbols exactly as they appear on exchanges.")
	fmt.Fprintln(p.out, "Examples:")
	fmt.Fprintln(p.out, "  • US Stocks: AAPL (Apple), MSFT (Microsoft), GOOGL (Google)")
	fmt.Fprintln(p.out, "  • UK Stocks: TSCO.L (Tesco), BP.L (BP), BARC.L (Barclays)")
	fmt.Fprintln(p.out, "  • Crypto: BTC-USD (Bitcoin), ETH-USD (Ethereum)")
	fmt.Fprintln(p.out, "Type 'exit' at any prompt to quit.")

	line, err := p.Ask("\nEnter tickers (separated by spaces): ")
	if err != nil {
		return nil, err
	}
	return strings.Fields(strings.ToUpper(line)), nil
}

// AskPeriod prompts for a history period, falling back to def when empty.
func (p *Prompter) AskPeriod(def string) (string, error) {
	fmt.Fprintln(p.out, "\nSTEP 3: Select Time Period")
	fmt.Fprintln(p.out, "Available periods:")
	fmt.Fprintln(p.out, "  • Short term: 1d (1 day), 5d (5 days), 1mo (1 month)")
	fmt.Fprintln(p.out, "  • Medium term: 3mo, 6mo, 1y (1 year)")
	fmt.Fprintln(p.out, "  • Long term: 2y, 5y, 10y, ytd (year to date), max (maximum available)")

	line, err := p.Ask(fmt.Sprintf("\nEnter time period [%s]: ", def))
	if err != nil {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

// AskOutputDir prompts for the output directory, falling back to def.
func (p *Prompter) AskOutputDir(def string) (string, error) {
	fmt.Fprintln(p.out, "\nSTEP 4: Select Output Directory")
	fmt.Fprintf(p.out, "Default output directory: %s\n", def)

	line, err := p.Ask(fmt.Sprintf("Enter output directory to save results [%s]: ", def))
	if err != nil {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

func allDataTypes() []string {
	return append([]string(nil), config.DataTypeOrder...)
}
