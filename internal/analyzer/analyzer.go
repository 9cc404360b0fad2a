// Package analyzer orchestrates the per-ticker pipeline:
// fetch, normalize, compute statistics, render chart, export.
package analyzer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"stockanalyzer/internal/calculator"
	"stockanalyzer/internal/chart"
	"stockanalyzer/internal/collector"
	"stockanalyzer/internal/config"
	"stockanalyzer/internal/export"
	"stockanalyzer/internal/model"
	"stockanalyzer/internal/normalize"
	"stockanalyzer/internal/recorder"
	"stockanalyzer/internal/report"
)

// Analyzer runs the batch over a list of tickers, one at a time.
type Analyzer struct {
	Provider collector.Provider
	Config   *config.Config
	Recorder recorder.Recorder
	Out      io.Writer

	// Retry backoff bounds; tests shrink these.
	RetryInitial time.Duration
	RetryMax     time.Duration

	// Now is the clock used for file stamps and YTD math.
	Now func() time.Time

	logger zerolog.Logger
}

// New creates an Analyzer with the default retry policy.
func New(p collector.Provider, cfg *config.Config, rec recorder.Recorder, out io.Writer) *Analyzer {
	return &Analyzer{
		Provider:     p,
		Config:       cfg,
		Recorder:     rec,
		Out:          out,
		RetryInitial: 4 * time.Second,
		RetryMax:     10 * time.Second,
		Now:          time.Now,
		logger:       log.With().Str("component", "analyzer").Logger(),
	}
}

// Result summarizes a batch outcome.
type Result struct {
	Succeeded int
	Failed    int
}

// tickerOutcome carries per-run details into the recorder.
type tickerOutcome struct {
	price float64
	files int
}

// Run processes tickers sequentially. Each ticker gets the configured number
// of attempts with exponential backoff; one ticker exhausting its retries
// never aborts the batch. The context deadline is honored at the per-ticker
// boundary and inside every fetch.
func (a *Analyzer) Run(ctx context.Context, tickers []string, period, outDir string) Result {
	var res Result
	for i, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			a.logger.Error().Err(err).Msg("deadline reached, aborting remaining tickers")
			res.Failed += len(tickers) - i
			break
		}

		fmt.Fprint(a.Out, report.TickerProgress(i+1, len(tickers), ticker))

		start := a.Now()
		attempts := 0
		outcome := &tickerOutcome{}

		operation := func() error {
			attempts++
			return a.analyzeTicker(ctx, ticker, period, outDir, outcome)
		}
		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = a.RetryInitial
		bo.MaxInterval = a.RetryMax
		policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(a.Config.Retries-1)), ctx)

		err := backoff.Retry(operation, policy)

		rec := &recorder.RunRecord{
			Ticker:       ticker,
			Period:       period,
			Status:       "success",
			Attempts:     attempts,
			CurrentPrice: outcome.price,
			FilesWritten: outcome.files,
			OutputDir:    outDir,
			DurationMS:   time.Since(start).Milliseconds(),
		}
		if err != nil {
			rec.Status = "failed"
			rec.Error = err.Error()
			res.Failed++
			fmt.Fprint(a.Out, report.TickerFailure(ticker, err))
		} else {
			res.Succeeded++
		}
		if rerr := a.Recorder.RecordRun(rec); rerr != nil {
			a.logger.Error().Err(rerr).Str("ticker", ticker).Msg("record run")
		}
	}
	return res
}

// analyzeTicker executes one fetch-through-export sequence. Dataset-level
// problems are logged and skipped; anything returned from here triggers the
// retry policy.
func (a *Analyzer) analyzeTicker(ctx context.Context, ticker, period, outDir string, outcome *tickerOutcome) error {
	a.logger.Info().Str("ticker", ticker).Str("period", period).Msg("downloading data")

	bars, err := a.Provider.HistoricalBars(ctx, ticker, period)
	if err != nil {
		return fmt.Errorf("historical data for %s: %w", ticker, err)
	}
	if len(bars) == 0 {
		return fmt.Errorf("no historical data available for %s", ticker)
	}
	bars = normalize.StripSeriesTimezone(bars)
	outcome.price = bars[len(bars)-1].Close

	stamp := a.Now().Format("20060102")
	tickerDir := filepath.Join(outDir, ticker)
	if err := os.MkdirAll(tickerDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", tickerDir, err)
	}

	if a.Config.GeneratePlots {
		plotPath := filepath.Join(tickerDir, fmt.Sprintf("%s_chart_%s.png", ticker, stamp))
		settings := chart.Settings{
			UpColor:    a.Config.ChartSettings.Colors.Up,
			DownColor:  a.Config.ChartSettings.Colors.Down,
			Background: a.Config.ChartSettings.Background,
			DPI:        a.Config.ChartSettings.DPI,
		}
		if err := chart.Render(bars, ticker, plotPath, settings); err != nil {
			return fmt.Errorf("render chart: %w", err)
		}
		outcome.files++
		fmt.Fprint(a.Out, report.Artifact(filepath.Base(plotPath)))
	}

	normalized := a.processDatasets(ctx, ticker, tickerDir, stamp, outcome)

	if a.Config.GenerateSummary {
		if err := a.writeSummary(ticker, tickerDir, stamp, bars, normalized, outcome); err != nil {
			// Summary problems are logged, not retried; the per-dataset
			// exports above already succeeded.
			a.logger.Error().Err(err).Str("ticker", ticker).Msg("create summary workbook")
		}
	}

	a.logger.Info().Str("dir", tickerDir).Msg("data saved")
	return nil
}

// processDatasets fetches, normalizes, and exports every enabled auxiliary
// dataset. Absent data is a skip; malformed data is a logged warning.
func (a *Analyzer) processDatasets(ctx context.Context, ticker, tickerDir, stamp string, outcome *tickerOutcome) []export.NamedTable {
	var normalized []export.NamedTable
	for _, dataType := range a.Config.DataTypes {
		if dataType == "historical" {
			continue // always fetched, never part of the aux loop
		}

		ds, err := a.Provider.FetchDataset(ctx, ticker, dataType)
		if err != nil {
			a.logger.Warn().Err(err).Str("ticker", ticker).Str("data_type", dataType).Msg("error processing dataset")
			continue
		}
		table := normalize.Normalize(ds, dataType)
		if table == nil {
			a.logger.Debug().Str("ticker", ticker).Str("data_type", dataType).Msg("no data, skipping")
			continue
		}
		table = normalize.StripTimezone(table)
		normalized = append(normalized, export.NamedTable{Name: dataType, Table: table})

		if a.Config.ExcelEnabled() {
			path := filepath.Join(tickerDir, fmt.Sprintf("%s_%s_%s.xlsx", ticker, dataType, stamp))
			if err := export.WriteDataset(path, table); err != nil {
				a.logger.Warn().Err(err).Str("data_type", dataType).Msg("export dataset")
				continue
			}
			outcome.files++
			fmt.Fprint(a.Out, report.Artifact(filepath.Base(path)))
		}
	}
	return normalized
}

func (a *Analyzer) writeSummary(ticker, tickerDir, stamp string, bars []model.Bar, normalized []export.NamedTable, outcome *tickerOutcome) error {
	metrics, err := calculator.Analyze(bars, a.Now())
	if err != nil {
		return fmt.Errorf("analyze %s: %w", ticker, err)
	}

	path := filepath.Join(tickerDir, fmt.Sprintf("%s_summary_%s.xlsx", ticker, stamp))
	if err := export.WriteSummary(path, metrics, model.SeriesTable(bars), normalized); err != nil {
		return err
	}
	outcome.files++
	fmt.Fprint(a.Out, report.Artifact(filepath.Base(path)))
	return nil
}
