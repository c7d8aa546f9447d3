package telemetry

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Placeholder is rendered in place of any value the sensor did not report.
const Placeholder = "--"

// FormatValue renders v with a fixed number of decimals followed by unit,
// e.g. FormatValue(27.456, 1, " km/h") == "27.5 km/h". Exact ties round
// away from zero, so a cadence of 86.5 shows as "87".
func FormatValue(v *float64, decimals int, unit string) string {
	if v == nil {
		return Placeholder
	}
	if decimals < 0 {
		decimals = 0
	}
	return fixed(*v, decimals) + unit
}

// fixed formats f with the given number of decimals, rounding half away
// from zero on the exact binary value of f.
func fixed(f float64, decimals int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', decimals, 64)
	}
	neg := f < 0
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)

	// n = floor(|f| * 10^decimals + 1/2)
	r := new(big.Rat).SetFloat64(math.Abs(f))
	r.Mul(r, new(big.Rat).SetInt(scale))
	r.Add(r, big.NewRat(1, 2))
	n := new(big.Int).Quo(r.Num(), r.Denom())

	digits := n.String()
	if decimals > 0 {
		if pad := decimals + 1 - len(digits); pad > 0 {
			digits = strings.Repeat("0", pad) + digits
		}
		cut := len(digits) - decimals
		digits = digits[:cut] + "." + digits[cut:]
	}
	if neg {
		digits = "-" + digits
	}
	return digits
}

// FormatTime renders a duration in seconds as minutes:seconds with the
// seconds zero-padded ("2:05"). Missing, zero, negative and NaN durations
// render as the placeholder. Fractional seconds are dropped.
func FormatTime(totalSeconds *float64) string {
	if totalSeconds == nil || math.IsNaN(*totalSeconds) || *totalSeconds <= 0 {
		return Placeholder
	}
	s := int64(math.Floor(*totalSeconds))
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

// FormatNumber renders v using the shortest representation that round-trips
// ("72", "412.5").
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
