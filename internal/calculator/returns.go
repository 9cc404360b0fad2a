package calculator

import (
	"errors"
	"math"
	"time"

	"stockanalyzer/internal/model"
)

// ErrNoCurrentYearData is returned when the series has no bar in the current
// calendar year, e.g. for newly listed tickers or stale data.
var ErrNoCurrentYearData = errors.New("no bars in current calendar year")

// ErrInsufficientData is returned when a metric needs more history than the
// series provides.
var ErrInsufficientData = errors.New("not enough data")

// dailyReturns computes day-over-day percentage changes of the close prices.
func dailyReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	rets := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		rets = append(rets, closes[i]/closes[i-1]-1)
	}
	return rets
}

// AnnualizedVolatility returns the sample standard deviation of daily returns
// scaled by sqrt(252), as a fraction (0.25 means 25%).
func AnnualizedVolatility(bars []model.Bar) (float64, error) {
	rets := dailyReturns(model.Closes(bars))
	if len(rets) < 2 {
		return 0, ErrInsufficientData
	}
	mean := 0.0
	for _, r := range rets {
		mean += r
	}
	mean /= float64(len(rets))
	variance := 0.0
	for _, r := range rets {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(rets) - 1)
	return math.Sqrt(variance) * math.Sqrt(tradingDaysPerYear), nil
}

// MonthEndCloses resamples the series to the last close of each calendar
// month, oldest first.
func MonthEndCloses(bars []model.Bar) []float64 {
	var closes []float64
	for i, b := range bars {
		last := i == len(bars)-1
		if !last {
			next := bars[i+1].Time
			if next.Year() == b.Time.Year() && next.Month() == b.Time.Month() {
				continue
			}
		}
		closes = append(closes, b.Close)
	}
	return closes
}

// OneMonthReturn is the percentage change between the last two month-end
// closes, as a fraction.
func OneMonthReturn(bars []model.Bar) (float64, error) {
	closes := MonthEndCloses(bars)
	if len(closes) < 2 {
		return 0, ErrInsufficientData
	}
	prev := closes[len(closes)-2]
	if prev == 0 {
		return 0, ErrInsufficientData
	}
	return closes[len(closes)-1]/prev - 1, nil
}

// YTDReturn is the percentage change from the first available close in the
// current calendar year to the most recent close, as a fraction.
func YTDReturn(bars []model.Bar, now time.Time) (float64, error) {
	if len(bars) == 0 {
		return 0, ErrInsufficientData
	}
	year := now.Year()
	for _, b := range bars {
		if b.Time.Year() == year {
			if b.Close == 0 {
				return 0, ErrInsufficientData
			}
			return bars[len(bars)-1].Close/b.Close - 1, nil
		}
	}
	return 0, ErrNoCurrentYearData
}
