package analyzer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockanalyzer/internal/collector"
	"stockanalyzer/internal/config"
	"stockanalyzer/internal/model"
	"stockanalyzer/internal/recorder"
)

// captureRecorder stores run records in memory for assertions.
type captureRecorder struct {
	records []*recorder.RunRecord
}

func (c *captureRecorder) RecordRun(rec *recorder.RunRecord) error {
	c.records = append(c.records, rec)
	return nil
}

func (c *captureRecorder) Close() error { return nil }

func testConfig(outDir string) *config.Config {
	cfg := config.Default()
	cfg.OutputDirectory = outDir
	cfg.Retries = 3
	cfg.DataTypes = []string{"historical", "dividends", "info"}
	cfg.ChartSettings.DPI = 100
	return cfg
}

func testDatasets() map[string]model.Dataset {
	divTable := &model.Table{
		IndexName: "Date",
		IndexType: model.ColTime,
		Index:     []model.Value{model.TimeOf(time.Date(2026, 2, 6, 0, 0, 0, 0, time.UTC))},
		Columns: []model.Column{
			{Name: "Dividends", Type: model.ColNumber, Values: []model.Value{model.Num(0.25)}},
		},
	}
	info := []model.MapEntry{
		{Key: "symbol", Value: model.Text("AAPL")},
		{Key: "sector", Value: model.Text("Technology")},
	}
	return map[string]model.Dataset{
		"dividends": model.TableDataset(divTable),
		"info":      model.MappingDataset(info),
	}
}

func newTestAnalyzer(p collector.Provider, cfg *config.Config, rec recorder.Recorder) *Analyzer {
	a := New(p, cfg, rec, &bytes.Buffer{})
	a.RetryInitial = time.Millisecond
	a.RetryMax = 5 * time.Millisecond
	return a
}

func TestRunWritesAllArtifacts(t *testing.T) {
	outDir := t.TempDir()
	cfg := testConfig(outDir)
	mock := &collector.MockProvider{
		Bars:     collector.GenerateBars(100, 300),
		Datasets: testDatasets(),
	}
	rec := &captureRecorder{}
	a := newTestAnalyzer(mock, cfg, rec)

	res := a.Run(context.Background(), []string{"AAPL"}, "2y", outDir)

	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 0, res.Failed)

	stamp := time.Now().Format("20060102")
	for _, name := range []string{
		fmt.Sprintf("AAPL_chart_%s.png", stamp),
		fmt.Sprintf("AAPL_dividends_%s.xlsx", stamp),
		fmt.Sprintf("AAPL_info_%s.xlsx", stamp),
		fmt.Sprintf("AAPL_summary_%s.xlsx", stamp),
	} {
		_, err := os.Stat(filepath.Join(outDir, "AAPL", name))
		assert.NoError(t, err, "missing artifact %s", name)
	}

	require.Len(t, rec.records, 1)
	assert.Equal(t, "success", rec.records[0].Status)
	assert.Equal(t, 1, rec.records[0].Attempts)
	assert.Equal(t, 4, rec.records[0].FilesWritten)
}

func TestRunRetriesTransientFailures(t *testing.T) {
	outDir := t.TempDir()
	cfg := testConfig(outDir)
	mock := &collector.MockProvider{
		Bars:      collector.GenerateBars(100, 300),
		Datasets:  testDatasets(),
		HistErr:   errors.New("temporary outage"),
		FailFirst: 2,
	}
	rec := &captureRecorder{}
	a := newTestAnalyzer(mock, cfg, rec)

	res := a.Run(context.Background(), []string{"AAPL"}, "2y", outDir)

	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 3, mock.HistCalls())

	require.Len(t, rec.records, 1)
	assert.Equal(t, "success", rec.records[0].Status)
	assert.Equal(t, 3, rec.records[0].Attempts)
}

func TestRunFailedTickerDoesNotAbortBatch(t *testing.T) {
	outDir := t.TempDir()
	cfg := testConfig(outDir)
	cfg.Retries = 2
	// first ticker exhausts both attempts, second ticker succeeds
	mock := &collector.MockProvider{
		Bars:      collector.GenerateBars(100, 300),
		Datasets:  testDatasets(),
		HistErr:   errors.New("delisted"),
		FailFirst: 2,
	}
	rec := &captureRecorder{}
	a := newTestAnalyzer(mock, cfg, rec)

	res := a.Run(context.Background(), []string{"BAD", "AAPL"}, "2y", outDir)

	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.Failed)

	require.Len(t, rec.records, 2)
	assert.Equal(t, "failed", rec.records[0].Status)
	assert.Contains(t, rec.records[0].Error, "delisted")
	assert.Equal(t, "success", rec.records[1].Status)

	_, err := os.Stat(filepath.Join(outDir, "AAPL"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(outDir, "BAD"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunHonorsDeadline(t *testing.T) {
	outDir := t.TempDir()
	cfg := testConfig(outDir)
	mock := &collector.MockProvider{
		Bars:     collector.GenerateBars(100, 300),
		Datasets: testDatasets(),
	}
	rec := &captureRecorder{}
	a := newTestAnalyzer(mock, cfg, rec)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := a.Run(ctx, []string{"AAPL", "MSFT"}, "2y", outDir)

	assert.Equal(t, 0, res.Succeeded)
	assert.Equal(t, 2, res.Failed)
	assert.Empty(t, rec.records)
}

func TestRunSkipsAbsentDatasets(t *testing.T) {
	outDir := t.TempDir()
	cfg := testConfig(outDir)
	cfg.GeneratePlots = false
	// no datasets configured on the mock: every aux fetch returns empty
	mock := &collector.MockProvider{Bars: collector.GenerateBars(100, 300)}
	rec := &captureRecorder{}
	a := newTestAnalyzer(mock, cfg, rec)

	res := a.Run(context.Background(), []string{"AAPL"}, "2y", outDir)

	assert.Equal(t, 1, res.Succeeded)

	stamp := time.Now().Format("20060102")
	entries, err := os.ReadDir(filepath.Join(outDir, "AAPL"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, fmt.Sprintf("AAPL_summary_%s.xlsx", stamp), entries[0].Name())
}

func TestRunNoPlotsNoSummary(t *testing.T) {
	outDir := t.TempDir()
	cfg := testConfig(outDir)
	cfg.GeneratePlots = false
	cfg.GenerateSummary = false
	mock := &collector.MockProvider{
		Bars:     collector.GenerateBars(100, 300),
		Datasets: testDatasets(),
	}
	rec := &captureRecorder{}
	a := newTestAnalyzer(mock, cfg, rec)

	res := a.Run(context.Background(), []string{"AAPL"}, "2y", outDir)
	assert.Equal(t, 1, res.Succeeded)

	entries, err := os.ReadDir(filepath.Join(outDir, "AAPL"))
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	stamp := time.Now().Format("20060102")
	assert.ElementsMatch(t, []string{
		fmt.Sprintf("AAPL_dividends_%s.xlsx", stamp),
		fmt.Sprintf("AAPL_info_%s.xlsx", stamp),
	}, names)
}
