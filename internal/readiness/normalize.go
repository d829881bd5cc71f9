// Package readiness holds the deterministic rental-readiness scoring model:
// income and tenure normalization, the five-category breakdown, the
// submission-time base score, gap analysis, the action plan task engine and
// the document checklist. Everything here is pure; persistence lives in
// internal/repository.
package readiness

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"rental-readiness-workers/internal/models"
)

// NormalizeIncome converts amount in the given period to an annual figure.
// Unknown periods are treated as already annual. No rounding is applied.
func NormalizeIncome(amount float64, period string) float64 {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0
	}
	switch strings.ToLower(strings.TrimSpace(period)) {
	case models.PeriodWeekly:
		return amount * 52
	case models.PeriodMonthly:
		return amount * 12
	default:
		return amount
	}
}

// ParseMonthsInRole parses "<number> <unit>" into whole months. Units containing
// "year" multiply by 12, units containing "week" divide by 4 (minimum 1), and
// anything else, including a missing unit, is months. Any failure yields 0.
func ParseMonthsInRole(text string) int {
	months, _ := parseTenure(text)
	return months
}

// maxCount bounds every parsed count and tenure so int arithmetic never wraps.
const maxCount = math.MaxInt32

// parseTenure is ParseMonthsInRole that also reports whether the leading
// number parsed. Negative tenures parse but count as 0 months; oversized ones
// saturate at maxCount.
func parseTenure(text string) (int, bool) {
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return 0, false
	}
	v, err := strconv.ParseInt(parts[0], 10, 32)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	if v < 0 {
		return 0, true
	}
	n := int(v)

	unit := "months"
	if len(parts) > 1 {
		unit = strings.ToLower(parts[1])
	}

	switch {
	case strings.Contains(unit, "year"):
		if n > maxCount/12 {
			return maxCount, true
		}
		return n * 12, true
	case strings.Contains(unit, "week"):
		if n/4 < 1 {
			return 1, true
		}
		return n / 4, true
	default:
		return n, true
	}
}

// AnnualIncome returns the annualized household income, falling back to the
// individual income when no household figure was supplied.
func AnnualIncome(a *models.Assessment) float64 {
	if a.HouseholdIncome > 0 {
		return NormalizeIncome(a.HouseholdIncome, a.HouseholdIncomePeriod)
	}
	return NormalizeIncome(a.IndividualIncome, a.IndividualIncomePeriod)
}

// ParseAmount coerces a loosely typed JSON value into a float. Strings may carry
// thousands separators and a leading "$". Anything unparseable is 0.
func ParseAmount(raw interface{}) float64 {
	switch v := raw.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v
	case float32:
		return ParseAmount(float64(v))
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(cleanAmount(v), 64)
		if err != nil {
			return 0
		}
		return ParseAmount(f)
	default:
		return 0
	}
}

// ParseOptionalAmount is ParseAmount for nullable fields: nil, empty and
// unparseable values yield nil.
func ParseOptionalAmount(raw interface{}) *float64 {
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		s := cleanAmount(v)
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return &f
	}
	f := ParseAmount(raw)
	return &f
}

func cleanAmount(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	return strings.ReplaceAll(s, ",", "")
}

// ParseCount coerces a loosely typed JSON value into a non-negative int,
// saturating at math.MaxInt32.
func ParseCount(raw interface{}) int {
	f := ParseAmount(raw)
	if f <= 0 {
		return 0
	}
	if f >= maxCount {
		return maxCount
	}
	return int(f)
}
