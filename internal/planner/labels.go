package planner

import (
	"math"
	"strconv"
	"strings"
)

// nextLabel returns the smallest positive integer not used as a label.
func nextLabel(used map[string]struct{}) string {
	for n := 1; ; n++ {
		l := strconv.Itoa(n)
		if _, ok := used[l]; !ok {
			return l
		}
	}
}

// resolveLabel returns want if it is free. Otherwise a numeric label is
// incremented until free, and any other label gets "-2", "-3", ... appended.
// A numeric label whose suffixed form is already in use continues that
// suffix sequence instead, so "3" next to "3" and "3-2" becomes "3-3".
func resolveLabel(want string, used map[string]struct{}) string {
	if _, taken := used[want]; !taken {
		return want
	}
	if n, ok := numericLabel(want); ok && !hasSuffixed(want, used) {
		for {
			n++
			l := formatNumber(n)
			if _, taken := used[l]; !taken {
				return l
			}
		}
	}
	for k := 2; ; k++ {
		l := want + "-" + strconv.Itoa(k)
		if _, taken := used[l]; !taken {
			return l
		}
	}
}

// numericLabel reports whether s is the canonical text of a finite number.
// "7", "0" and "-2.5" are numeric; "007", "-0" and "1e3" are not.
func numericLabel(s string) (float64, bool) {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, false
	}
	if n == 0 && math.Signbit(n) {
		return 0, false
	}
	return n, formatNumber(n) == s
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func hasSuffixed(base string, used map[string]struct{}) bool {
	prefix := base + "-"
	for l := range used {
		if rest, ok := strings.CutPrefix(l, prefix); ok && isDigits(rest) {
			return true
		}
	}
	return false
}
