package coords

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/rook-prog/CartoZen/internal/core/domain"
)

// dmmMinDelta is the smallest change (in degrees, about 3 arc-minutes) a
// DMM reinterpretation must make before a cell is treated as mistyped DMM.
const dmmMinDelta = 0.05

var (
	looseNumberRe = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	wordRe        = regexp.MustCompile(`\p{L}+`)
)

// CoerceFloat reads a plain number, accepting a comma decimal separator and
// surrounding whitespace. Non-finite values do not resolve.
func CoerceFloat(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseLoose reads symbol-laden text such as `72°30'W` or `-12,5 deg`.
// Cardinal letters or words and unit symbols are stripped; one numeric token is taken
// as decimal degrees, two or three as degrees/minutes[/seconds]. The second
// result is the number of numeric tokens used.
func ParseLoose(s string) (float64, int, bool) {
	locs := looseNumberRe.FindAllStringIndex(s, -1)
	if len(locs) == 0 || len(locs) > 3 {
		return 0, len(locs), false
	}
	nums := make([]float64, 0, len(locs))
	for _, loc := range locs {
		f, err := strconv.ParseFloat(strings.ReplaceAll(s[loc[0]:loc[1]], ",", "."), 64)
		if err != nil {
			return 0, len(locs), false
		}
		nums = append(nums, f)
	}

	sign := 1.0
	if strings.HasSuffix(strings.TrimSpace(s[:locs[0][0]]), "-") {
		sign = -1
	}
	for _, w := range wordRe.FindAllString(s, -1) {
		if sg, ok := cardinal(w); ok {
			sign = sg
			break
		}
	}
	return sign * combine(nums), len(nums), true
}

// DMMToDD reinterprets a value written as degrees plus decimal minutes:
// 72.3045 means 72° 30.45' and converts to 72 + 30.45/60.
func DMMToDD(x float64) float64 {
	sign := 1.0
	if x < 0 {
		sign = -1
	}
	ax := math.Abs(x)
	deg := math.Floor(ax)
	minutes := (ax - deg) * 100
	return sign * (deg + minutes/60)
}

// IsProbablyDMM reports whether x looks like a DMM value typed as decimal
// degrees: the degree part is within the axis bound, the fractional part read
// as minutes is below 60, and the reinterpretation moves the value by more
// than dmmMinDelta.
func IsProbablyDMM(x float64, axis domain.Axis) bool {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return false
	}
	ax := math.Abs(x)
	deg := math.Floor(ax)
	if deg > axis.Limit() {
		return false
	}
	minutes := (ax - deg) * 100
	if minutes < 0 || minutes >= 60 {
		return false
	}
	return math.Abs(x-DMMToDD(x)) > dmmMinDelta
}

// ParseDecimal reads a decimal-degrees cell. Numbers are used as-is, text is
// coerced directly and then through the loose tokenizer. Single-number values
// that look like mistyped DMM are converted when autoFix is set; multi-token
// values are already in degrees/minutes form and are left alone.
func ParseDecimal(c domain.Cell, axis domain.Axis, autoFix bool) Value {
	var (
		x      float64
		ok     bool
		tokens = 1
	)
	switch c.Kind {
	case domain.CellNumber:
		x, ok = c.Num, !math.IsNaN(c.Num) && !math.IsInf(c.Num, 0)
	case domain.CellText:
		x, ok = CoerceFloat(c.Text)
		if !ok {
			x, tokens, ok = ParseLoose(c.Text)
		}
	}
	if !ok {
		return Value{}
	}
	if autoFix && tokens == 1 && IsProbablyDMM(x, axis) {
		return Value{Deg: DMMToDD(x), OK: true, DMM: true}
	}
	return Value{Deg: x, OK: true}
}
