package folio

import (
	"math"
	"strconv"
)

// Percent is a percentage: 12.5 means 12.5%.
type Percent float64

// percentTolerance is the difference under which two percents are equal.
const percentTolerance = 1e-4

// Equal compares percents within percentTolerance, they are computed in float.
func (p Percent) Equal(q Percent) bool { return math.Abs(float64(p-q)) < percentTolerance }

// String formats p with two decimals, as in "12.50%".
func (p Percent) String() string {
	return strconv.FormatFloat(float64(p), 'f', 2, 64) + "%"
}

// SignedString is like String with an explicit sign. A percent that rounds to
// zero is represented as "-".
func (p Percent) SignedString() string {
	if math.Abs(float64(p)) < 0.005 {
		return "-"
	}
	if p > 0 {
		return "+" + p.String()
	}
	return p.String()
}
