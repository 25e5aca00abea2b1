// Package coords turns raw coordinate cells into decimal degrees.
//
// Three encodings are supported: degrees-minutes-seconds text with a
// cardinal letter, decimal degrees (with comma decimals, loose symbol-laden
// text and mistyped degrees-decimal-minutes repaired cell by cell), and
// positional UTM columns. Parsing never panics: every cell yields a Value
// whose OK flag says whether it resolved.
package coords

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	tokenRe  = regexp.MustCompile(`[0-9.]+|\p{L}+`)
	numberRe = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// cardinal returns the direction sign for an N/S/E/W letter or a spelled-out
// direction word.
func cardinal(tok string) (sign float64, ok bool) {
	switch strings.ToUpper(tok) {
	case "N", "E", "NORTH", "EAST":
		return 1, true
	case "S", "W", "SOUTH", "WEST":
		return -1, true
	}
	return 0, false
}

// ParseDMS parses text such as `20° 30' 15" N`, `72 30 15 W` or `40 30 0 North`.
// Degree, minute and second marks and any other punctuation separate tokens.
// Minutes and seconds default to zero. The result is negative for S and W.
// Text without a cardinal letter or without any numeric token does not resolve.
func ParseDMS(s string) (float64, bool) {
	var (
		sign   float64
		hasDir bool
		nums   []float64
	)
	for _, tok := range tokenRe.FindAllString(s, -1) {
		if !hasDir {
			if sg, ok := cardinal(tok); ok {
				sign, hasDir = sg, true
				continue
			}
		}
		if numberRe.MatchString(tok) {
			f, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				continue
			}
			nums = append(nums, f)
		}
	}
	if !hasDir || len(nums) == 0 {
		return 0, false
	}
	return sign * combine(nums), true
}

// combine folds up to three tokens as degrees, minutes and seconds.
func combine(nums []float64) float64 {
	var deg, min, sec float64
	deg = nums[0]
	if len(nums) > 1 {
		min = nums[1]
	}
	if len(nums) > 2 {
		sec = nums[2]
	}
	return deg + min/60 + sec/3600
}
