package calculator

import (
	"errors"
	"math"
	"testing"
	"time"

	"stockanalyzer/internal/model"
)

// linearBars builds count daily bars ending at end, with closes
// start, start+1, start+2, ...
func linearBars(start float64, count int, end time.Time) []model.Bar {
	bars := make([]model.Bar, count)
	for i := 0; i < count; i++ {
		c := start + float64(i)
		bars[i] = model.Bar{
			Time:   end.AddDate(0, 0, -(count - 1 - i)),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func TestSMA(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		period int
		want   float64
		ok     bool
	}{
		{"exact window", []float64{1, 2, 3, 4}, 4, 2.5, true},
		{"trailing window", []float64{10, 20, 30, 40}, 2, 35, true},
		{"short series degrades", []float64{5, 7}, 50, 6, true},
		{"empty", nil, 50, 0, false},
		{"bad period", []float64{1}, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SMA(tt.prices, tt.period)
			if tt.ok != (err == nil) {
				t.Fatalf("SMA() error = %v, wantErr %v", err, !tt.ok)
			}
			if tt.ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("SMA() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMovingAverages(t *testing.T) {
	end := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	bars := linearBars(100, 300, end) // closes 100..399

	ma50, err := MA50(bars)
	if err != nil {
		t.Fatalf("MA50: %v", err)
	}
	// mean of 350..399
	if want := 374.5; math.Abs(ma50-want) > 1e-9 {
		t.Errorf("MA50 = %v, want %v", ma50, want)
	}

	ma200, err := MA200(bars)
	if err != nil {
		t.Fatalf("MA200: %v", err)
	}
	// mean of 200..399
	if want := 299.5; math.Abs(ma200-want) > 1e-9 {
		t.Errorf("MA200 = %v, want %v", ma200, want)
	}
}

func TestRange52Week(t *testing.T) {
	end := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	t.Run("long series uses last 252 bars", func(t *testing.T) {
		bars := linearBars(100, 300, end)
		high, low, err := Range52Week(bars)
		if err != nil {
			t.Fatal(err)
		}
		// last 252 closes are 148..399; High = close+1, Low = close-1
		if want := 400.0; high != want {
			t.Errorf("high = %v, want %v", high, want)
		}
		if want := 147.0; low != want {
			t.Errorf("low = %v, want %v", low, want)
		}
	})

	t.Run("short series uses all bars", func(t *testing.T) {
		bars := linearBars(50, 10, end)
		high, low, err := Range52Week(bars)
		if err != nil {
			t.Fatal(err)
		}
		if high != 60 || low != 49 {
			t.Errorf("got high=%v low=%v, want 60/49", high, low)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if _, _, err := Range52Week(nil); err == nil {
			t.Error("expected error for empty series")
		}
	})
}

func TestAnnualizedVolatility(t *testing.T) {
	end := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	t.Run("constant prices have zero volatility", func(t *testing.T) {
		bars := make([]model.Bar, 10)
		for i := range bars {
			bars[i] = model.Bar{Time: end.AddDate(0, 0, i - 9), Close: 100}
		}
		v, err := AnnualizedVolatility(bars)
		if err != nil {
			t.Fatal(err)
		}
		if v != 0 {
			t.Errorf("volatility = %v, want 0", v)
		}
	})

	t.Run("known alternating series", func(t *testing.T) {
		// closes 100, 110, 100: returns +0.1 and -1/11
		bars := []model.Bar{
			{Time: end.AddDate(0, 0, -2), Close: 100},
			{Time: end.AddDate(0, 0, -1), Close: 110},
			{Time: end, Close: 100},
		}
		v, err := AnnualizedVolatility(bars)
		if err != nil {
			t.Fatal(err)
		}
		r1, r2 := 0.1, -1.0/11.0
		mean := (r1 + r2) / 2
		sd := math.Sqrt((r1-mean)*(r1-mean) + (r2-mean)*(r2-mean)) // ddof=1, n-1 == 1
		want := sd * math.Sqrt(252)
		if math.Abs(v-want) > 1e-9 {
			t.Errorf("volatility = %v, want %v", v, want)
		}
	})

	t.Run("too short", func(t *testing.T) {
		bars := []model.Bar{{Time: end, Close: 100}}
		if _, err := AnnualizedVolatility(bars); !errors.Is(err, ErrInsufficientData) {
			t.Errorf("err = %v, want ErrInsufficientData", err)
		}
	})
}

func TestMonthEndCloses(t *testing.T) {
	bars := []model.Bar{
		{Time: time.Date(2026, 6, 29, 0, 0, 0, 0, time.UTC), Close: 10},
		{Time: time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC), Close: 11},
		{Time: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), Close: 12},
		{Time: time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC), Close: 13},
		{Time: time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC), Close: 14},
	}
	got := MonthEndCloses(bars)
	want := []float64{11, 13, 14}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestOneMonthReturn(t *testing.T) {
	t.Run("two month ends", func(t *testing.T) {
		bars := []model.Bar{
			{Time: time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC), Close: 100},
			{Time: time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC), Close: 110},
		}
		r, err := OneMonthReturn(bars)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(r-0.1) > 1e-9 {
			t.Errorf("return = %v, want 0.1", r)
		}
	})

	t.Run("single month", func(t *testing.T) {
		bars := []model.Bar{
			{Time: time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC), Close: 100},
			{Time: time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC), Close: 110},
		}
		if _, err := OneMonthReturn(bars); !errors.Is(err, ErrInsufficientData) {
			t.Errorf("err = %v, want ErrInsufficientData", err)
		}
	})
}

func TestYTDReturn(t *testing.T) {
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	t.Run("from first bar of year", func(t *testing.T) {
		bars := []model.Bar{
			{Time: time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), Close: 90},
			{Time: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), Close: 100},
			{Time: time.Date(2026, 8, 19, 0, 0, 0, 0, time.UTC), Close: 125},
		}
		r, err := YTDReturn(bars, now)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(r-0.25) > 1e-9 {
			t.Errorf("return = %v, want 0.25", r)
		}
	})

	t.Run("no current year data", func(t *testing.T) {
		bars := []model.Bar{
			{Time: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Close: 90},
		}
		if _, err := YTDReturn(bars, now); !errors.Is(err, ErrNoCurrentYearData) {
			t.Errorf("err = %v, want ErrNoCurrentYearData", err)
		}
	})
}

func TestAnalyze(t *testing.T) {
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	t.Run("fixed order and formatting", func(t *testing.T) {
		bars := linearBars(100, 300, now)
		metrics, err := Analyze(bars, now)
		if err != nil {
			t.Fatal(err)
		}
		wantNames := []string{
			"Current Price", "52-Week High", "52-Week Low",
			"Distance from 52w High", "Distance from 52w Low",
			"50-Day MA", "200-Day MA",
			"Volatility (Annualized)", "Return (1-Month)", "Return (YTD)",
		}
		if len(metrics) != len(wantNames) {
			t.Fatalf("got %d metrics, want %d", len(metrics), len(wantNames))
		}
		for i, name := range wantNames {
			if metrics[i].Name != name {
				t.Errorf("metric %d = %q, want %q", i, metrics[i].Name, name)
			}
		}
		if metrics[0].Value != "399.00" {
			t.Errorf("Current Price = %q, want 399.00", metrics[0].Value)
		}
		if metrics[5].Value != "374.50" {
			t.Errorf("50-Day MA = %q, want 374.50", metrics[5].Value)
		}
	})

	t.Run("degraded metrics report N/A", func(t *testing.T) {
		// one bar last year: no returns, no volatility, no YTD
		bars := []model.Bar{
			{Time: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), Open: 100, High: 101, Low: 99, Close: 100},
		}
		metrics, err := Analyze(bars, now)
		if err != nil {
			t.Fatal(err)
		}
		byName := map[string]string{}
		for _, m := range metrics {
			byName[m.Name] = m.Value
		}
		for _, name := range []string{"Volatility (Annualized)", "Return (1-Month)", "Return (YTD)"} {
			if byName[name] != "N/A" {
				t.Errorf("%s = %q, want N/A", name, byName[name])
			}
		}
	})

	t.Run("empty series errors", func(t *testing.T) {
		if _, err := Analyze(nil, now); err == nil {
			t.Error("expected error for empty series")
		}
	})
}
