package results

import (
	"math"
	"strings"
)

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws values in at most width cells, resampling by taking the
// last value of each bucket. A flat series draws at the lowest level.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	if len(values) > width {
		sampled := make([]float64, width)
		for i := range sampled {
			end := (i + 1) * len(values) / width
			sampled[i] = values[end-1]
		}
		values = sampled
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	var b strings.Builder
	top := len(sparkLevels) - 1
	for _, v := range values {
		i := 0
		if hi > lo {
			i = int(math.Round((v - lo) / (hi - lo) * float64(top)))
		}
		b.WriteRune(sparkLevels[i])
	}
	return b.String()
}
