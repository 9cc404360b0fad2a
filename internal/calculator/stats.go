package calculator

import (
	"errors"
	"fmt"
	"time"

	"stockanalyzer/internal/model"
)

// Metric is one named, already-formatted summary statistic.
type Metric struct {
	Name  string
	Value string
}

const unavailable = "N/A"

// Analyze computes the summary statistics for a historical series.
// The returned metrics are always in the same fixed order. Metrics that need
// more history than the series provides report N/A instead of failing.
func Analyze(bars []model.Bar, now time.Time) ([]Metric, error) {
	if len(bars) == 0 {
		return nil, errors.New("no historical data to analyze")
	}

	latest := bars[len(bars)-1].Close
	high52, low52, err := Range52Week(bars)
	if err != nil {
		return nil, fmt.Errorf("52-week range: %w", err)
	}

	ma50, err := MA50(bars)
	if err != nil {
		return nil, fmt.Errorf("50-day MA: %w", err)
	}
	ma200, err := MA200(bars)
	if err != nil {
		return nil, fmt.Errorf("200-day MA: %w", err)
	}

	volatility := unavailable
	if v, err := AnnualizedVolatility(bars); err == nil {
		volatility = fmt.Sprintf("%.1f%%", v*100)
	}
	monthly := unavailable
	if r, err := OneMonthReturn(bars); err == nil {
		monthly = fmt.Sprintf("%.1f%%", r*100)
	}
	ytd := unavailable
	if r, err := YTDReturn(bars, now); err == nil {
		ytd = fmt.Sprintf("%.1f%%", r*100)
	}

	return []Metric{
		{"Current Price", fmt.Sprintf("%.2f", latest)},
		{"52-Week High", fmt.Sprintf("%.2f", high52)},
		{"52-Week Low", fmt.Sprintf("%.2f", low52)},
		{"Distance from 52w High", fmt.Sprintf("%.1f%%", (latest/high52-1)*100)},
		{"Distance from 52w Low", fmt.Sprintf("%.1f%%", (latest/low52-1)*100)},
		{"50-Day MA", fmt.Sprintf("%.2f", ma50)},
		{"200-Day MA", fmt.Sprintf("%.2f", ma200)},
		{"Volatility (Annualized)", volatility},
		{"Return (1-Month)", monthly},
		{"Return (YTD)", ytd},
	}, nil
}
