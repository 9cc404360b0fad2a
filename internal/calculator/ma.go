package calculator

import (
	"errors"

	"stockanalyzer/internal/model"
)

// SMA computes the simple moving average over the trailing window ending at
// the most recent value. When fewer than period values are available it
// averages what is there, so short series degrade instead of erroring.
func SMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) == 0 {
		return 0, errors.New("no data for SMA calculation")
	}
	if len(prices) < period {
		period = len(prices)
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// MA50 returns the 50-day simple moving average from daily bars.
func MA50(bars []model.Bar) (float64, error) {
	return SMA(model.Closes(bars), 50)
}

// MA200 returns the 200-day simple moving average from daily bars.
func MA200(bars []model.Bar) (float64, error) {
	return SMA(model.Closes(bars), 200)
}
