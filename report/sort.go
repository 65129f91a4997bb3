package report

import (
	"psxscreener/valuation"

	"golang.org/x/exp/slices"
)

// DescendingNilLast orders larger values first and undefined values after
// every defined one, whatever their sign.
func DescendingNilLast(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a > *b:
		return -1
	case *a < *b:
		return 1
	default:
		return 0
	}
}

// SortRows orders rows by discount to fair value, best first. Ties keep input order.
func SortRows(rows []valuation.Row) {
	slices.SortStableFunc(rows, func(a, b valuation.Row) int {
		return DescendingNilLast(a.DiscountVsFair, b.DiscountVsFair)
	})
}
