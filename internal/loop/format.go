package loop

import (
	"strconv"

	"brake-hud.klederson.com/internal/estimator"
)

// Format renders the two display variants of a projection.
//
//	compact: "T-3.3\nM-66.66"
//	verbose: "Seconds Until Standstill: 3.3\nDistance to Stop: 66.66"
func Format(p estimator.Projection) (compact, verbose string) {
	seconds := FormatValue(p.SecondsToRest)
	distance := FormatValue(p.DistanceToRest)

	compact = "T-" + seconds + "\n" + "M-" + distance
	verbose = "Seconds Until Standstill: " + seconds + "\n" + "Distance to Stop: " + distance
	return compact, verbose
}

// FormatValue prints v rounded to 15 significant digits, in plain decimal
// notation with trailing zeros dropped. Float noise below that precision
// never reaches a display: 66.66000000000001 prints as 66.66.
func FormatValue(v float64) string {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'g', 15, 64), 64)
	if err != nil {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
