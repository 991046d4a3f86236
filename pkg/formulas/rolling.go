package formulas

import (
	"github.com/markcheno/go-talib"
)

// RollingMean returns the simple moving average of values over window.
// out[i] is the mean of values[i-window+1..i]; entries before the first full
// window are zero. Returns nil when there are fewer values than window.
func RollingMean(values []float64, window int) []float64 {
	if window < 2 || len(values) < window {
		return nil
	}

	sma := talib.Sma(values, window)
	out := make([]float64, len(values))
	for i := window - 1; i < len(values) && i < len(sma); i++ {
		out[i] = Finite(sma[i])
	}
	return out
}

// TrailingMean returns the mean of the window values immediately preceding index i,
// using a precomputed RollingMean series. ok is false when no full window precedes i.
func TrailingMean(rolling []float64, window, i int) (float64, bool) {
	if i < window || i-1 >= len(rolling) {
		return 0, false
	}
	return rolling[i-1], true
}
