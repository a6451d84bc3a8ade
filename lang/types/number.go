package types

import (
	"strconv"
	"strings"
)

// Number is the type of a numeric value, a double-precision float.
type Number float64

var _ Value = Number(0)

// String formats the number with six fixed decimals, then strips the
// trailing zeros and, if nothing else follows, the decimal point: 3.000000
// prints as 3, 2.500000 as 2.5.
func (n Number) String() string {
	s := strconv.FormatFloat(float64(n), 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	return s
}

func (n Number) Type() string { return "number" }
