package collector

import (
	"context"

	"stockanalyzer/internal/model"
)

// Provider defines the interface for fetching market data.
type Provider interface {
	// HistoricalBars fetches the daily price series for the given period
	// token. An empty result is an error.
	HistoricalBars(ctx context.Context, symbol, period string) ([]model.Bar, error)
	// FetchDataset fetches one auxiliary dataset. Absent data is reported as
	// an empty dataset, not an error.
	FetchDataset(ctx context.Context, symbol, dataType string) (model.Dataset, error)
	Name() string
}
