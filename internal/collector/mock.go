package collector

import (
	"context"
	"time"

	"stockanalyzer/internal/model"
)

// MockProvider returns controllable fixed data for development and testing.
type MockProvider struct {
	Bars     []model.Bar
	Datasets map[string]model.Dataset
	HistErr  error
	// FailFirst makes the first N HistoricalBars calls fail with HistErr
	// before succeeding, for exercising the retry policy.
	FailFirst int

	histCalls int
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) HistoricalBars(_ context.Context, _ string, _ string) ([]model.Bar, error) {
	m.histCalls++
	if m.HistErr != nil && (m.FailFirst == 0 || m.histCalls <= m.FailFirst) {
		return nil, m.HistErr
	}
	if m.Bars != nil {
		return m.Bars, nil
	}
	return GenerateBars(100, 300), nil
}

func (m *MockProvider) FetchDataset(_ context.Context, _ string, dataType string) (model.Dataset, error) {
	if ds, ok := m.Datasets[dataType]; ok {
		return ds, nil
	}
	return model.EmptyDataset(), nil
}

// HistCalls reports how many times HistoricalBars was invoked.
func (m *MockProvider) HistCalls() int { return m.histCalls }

// GenerateBars builds a deterministic daily series ending today.
func GenerateBars(basePrice float64, count int) []model.Bar {
	bars := make([]model.Bar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.Bar{
			Time:   time.Now().AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
