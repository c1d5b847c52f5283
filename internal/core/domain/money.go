package domain

import (
	"math"
	"strconv"
	"strings"
)

// MaxAmount is the largest budget, bid or hourly rate the stores hold
// (NUMERIC(12,2)).
const MaxAmount = 9_999_999_999.99

// MaxEstimatedDays bounds a proposal's estimated duration.
const MaxEstimatedDays = 3650

// AmountFits reports whether v is a finite, non-negative money value with at
// most two decimal places that does not exceed MaxAmount.
func AmountFits(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > MaxAmount {
		return false
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	_, frac, _ := strings.Cut(s, ".")
	return len(frac) <= 2
}
