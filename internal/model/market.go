package model

import "time"

// Bar represents a single daily candlestick bar.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Series holds the historical price data for one ticker, oldest bar first.
type Series struct {
	Symbol    string
	Bars      []Bar
	FetchedAt time.Time
}

// Empty reports whether the series has no bars.
func (s *Series) Empty() bool {
	return s == nil || len(s.Bars) == 0
}

// Closes extracts the close prices from a slice of bars.
func Closes(bars []Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// SeriesTable converts historical bars to tabular form for export.
func SeriesTable(bars []Bar) *Table {
	n := len(bars)
	index := make([]Value, n)
	open := make([]Value, n)
	high := make([]Value, n)
	low := make([]Value, n)
	clos := make([]Value, n)
	volume := make([]Value, n)
	for i, b := range bars {
		index[i] = TimeOf(b.Time)
		open[i] = Num(b.Open)
		high[i] = Num(b.High)
		low[i] = Num(b.Low)
		clos[i] = Num(b.Close)
		volume[i] = Num(b.Volume)
	}
	return &Table{
		Name:      "historical",
		IndexName: "Date",
		IndexType: ColTime,
		Index:     index,
		Columns: []Column{
			{Name: "Open", Type: ColNumber, Values: open},
			{Name: "High", Type: ColNumber, Values: high},
			{Name: "Low", Type: ColNumber, Values: low},
			{Name: "Close", Type: ColNumber, Values: clos},
			{Name: "Volume", Type: ColNumber, Values: volume},
		},
	}
}
