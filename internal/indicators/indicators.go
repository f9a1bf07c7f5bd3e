package indicators

import "math"

// Default parameters for the signal component
const (
	DefaultRSIPeriod       = 14
	DefaultMACDFast        = 12
	DefaultMACDSlow        = 26
	DefaultMACDSignal      = 9
	DefaultBollingerPeriod = 20
	DefaultBollingerStdDev = 2.0

	// MinBars is the shortest closing-price series the derived hints are
	// defined on: the slow EMA plus the signal EMA warm-up, plus the
	// previous bar for crossing detection.
	MinBars = DefaultMACDSlow + DefaultMACDSignal
)

// Hint actions
const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
)

// Hint is a discrete trading suggestion derived from an indicator crossing
type Hint struct {
	Action    string
	Indicator string
	Reason    string
}

// SMA returns the simple moving average series. Entries before the first
// full window are NaN.
func SMA(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 || len(values) < period {
		return out
	}

	var sum float64
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA returns the exponential moving average series, seeded with the SMA of
// the first window. Entries before the seed are NaN.
func EMA(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 || len(values) < period {
		return out
	}

	var seed float64
	for _, v := range values[:period] {
		seed += v
	}
	seed /= float64(period)
	out[period-1] = seed

	k := 2.0 / (float64(period) + 1.0)
	prev := seed
	for i := period; i < len(values); i++ {
		prev = (values[i]-prev)*k + prev
		out[i] = prev
	}
	return out
}

// RSI returns the relative strength index series using Wilder smoothing.
// Entries before the first full period are NaN.
func RSI(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if period <= 0 || len(closes) <= period {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACD returns the MACD line, its signal line and the histogram for the
// given EMA spans. Undefined entries are NaN.
func MACD(closes []float64, fast, slow, signalPeriod int) (macdLine, signalLine, histogram []float64) {
	n := len(closes)
	macdLine = nanSlice(n)
	signalLine = nanSlice(n)
	histogram = nanSlice(n)
	if n < slow {
		return
	}

	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)
	for i := slow - 1; i < n; i++ {
		macdLine[i] = emaFast[i] - emaSlow[i]
	}

	// Signal line is an EMA over the defined part of the MACD line
	defined := macdLine[slow-1:]
	sig := EMA(defined, signalPeriod)
	for i, v := range sig {
		signalLine[slow-1+i] = v
		if !math.IsNaN(v) {
			histogram[slow-1+i] = defined[i] - v
		}
	}
	return
}

// Bollinger returns the upper, middle and lower bands (SMA +/- stdDev sigma).
// Undefined entries are NaN.
func Bollinger(closes []float64, period int, stdDev float64) (upper, middle, lower []float64) {
	n := len(closes)
	upper = nanSlice(n)
	lower = nanSlice(n)
	middle = SMA(closes, period)
	if period <= 1 || n < period {
		return
	}

	for i := period - 1; i < n; i++ {
		mean := middle[i]
		var variance float64
		for j := i - period + 1; j <= i; j++ {
			d := closes[j] - mean
			variance += d * d
		}
		sigma := math.Sqrt(variance / float64(period))
		upper[i] = mean + stdDev*sigma
		lower[i] = mean - stdDev*sigma
	}
	return
}

// DeriveHints inspects the last two bars of the series and emits BUY/SELL
// hints for RSI threshold crossings, MACD/signal crossings and closes
// breaking out of the Bollinger bands. The series must hold at least MinBars
// closes for every indicator to be defined.
func DeriveHints(closes []float64) []Hint {
	var hints []Hint
	n := len(closes)
	if n < 2 {
		return hints
	}
	prev, last := n-2, n-1

	rsi := RSI(closes, DefaultRSIPeriod)
	if defined(rsi[prev], rsi[last]) {
		if rsi[prev] >= 30 && rsi[last] < 30 {
			hints = append(hints, Hint{ActionBuy, "rsi", "RSI crossed below 30 (oversold)"})
		}
		if rsi[prev] <= 70 && rsi[last] > 70 {
			hints = append(hints, Hint{ActionSell, "rsi", "RSI crossed above 70 (overbought)"})
		}
	}

	macdLine, signalLine, _ := MACD(closes, DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)
	if defined(macdLine[prev], signalLine[prev], macdLine[last], signalLine[last]) {
		if macdLine[prev] <= signalLine[prev] && macdLine[last] > signalLine[last] {
			hints = append(hints, Hint{ActionBuy, "macd", "MACD line crossed above signal line"})
		}
		if macdLine[prev] >= signalLine[prev] && macdLine[last] < signalLine[last] {
			hints = append(hints, Hint{ActionSell, "macd", "MACD line crossed below signal line"})
		}
	}

	upper, _, lower := Bollinger(closes, DefaultBollingerPeriod, DefaultBollingerStdDev)
	if defined(upper[prev], lower[prev], upper[last], lower[last]) {
		if closes[prev] >= lower[prev] && closes[last] < lower[last] {
			hints = append(hints, Hint{ActionBuy, "bollinger", "close crossed below lower band"})
		}
		if closes[prev] <= upper[prev] && closes[last] > upper[last] {
			hints = append(hints, Hint{ActionSell, "bollinger", "close crossed above upper band"})
		}
	}

	return hints
}

func defined(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) {
			return false
		}
	}
	return true
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}
