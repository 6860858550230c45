package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// QuickAdjustSteps are the deltas offered next to the weight field.
var QuickAdjustSteps = []float64{-1.0, -0.1, 0.1, 1.0}

// ParseWeight parses user-entered weight text. ok is false for empty,
// non-numeric, NaN and infinite input; zero and negative values parse.
func ParseWeight(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// FormatWeight renders a stored weight for an input field: the shortest
// representation, always with at least one decimal ("150.0", "150.25").
func FormatWeight(w float64) string {
	s := strconv.FormatFloat(w, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// QuickAdjust adds delta to the weight in text (0 when unparseable) and
// returns max(0, result) with exactly one decimal digit.
func QuickAdjust(text string, delta float64) (string, error) {
	if !isQuickAdjustStep(delta) {
		return "", fmt.Errorf("unsupported adjustment %v", delta)
	}
	current, ok := ParseWeight(text)
	if !ok {
		current = 0
	}
	next := decimal.NewFromFloat(current).Add(decimal.NewFromFloat(delta))
	next = decimal.Max(next, decimal.Zero)
	return next.StringFixed(1), nil
}

func isQuickAdjustStep(delta float64) bool {
	for _, s := range QuickAdjustSteps {
		if s == delta {
			return true
		}
	}
	return false
}

// FormatTimestamp renders an epoch-millisecond timestamp the way the entry
// list displays it.
func FormatTimestamp(ms int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(ms).In(loc).Format("2006-01-02 3:04 PM")
}
