package finance

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numberPattern matches signed, comma-grouped, optionally parenthesized figures
// such as "1,234.50", "-3", "(0.50)".
var numberPattern = regexp.MustCompile(`[-+]?\(?\d[\d,]*\.?\d*\)?`)

// ParseNumber converts a raw token to a float. Commas are grouping separators
// and "(x)" means -x. The boolean is false for blank or unparseable input, so
// a genuine zero can be told apart from a miss.
func ParseNumber(tok string) (float64, bool) {
	t := strings.ReplaceAll(strings.TrimSpace(tok), ",", "")
	if t == "" {
		return 0, false
	}

	if len(t) >= 2 && strings.HasPrefix(t, "(") && strings.HasSuffix(t, ")") {
		t = "-" + t[1:len(t)-1]
	}

	v, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
