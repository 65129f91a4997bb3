// Package dashboard serves a filtered view of the persisted screener table.
package dashboard

import (
	"math"
	"strconv"
	"strings"

	"psxscreener/report"
	"psxscreener/valuation"

	"golang.org/x/exp/slices"
)

// Columns is the dashboard table header. discount_% replaces discount_vs_fair.
var Columns = []string{
	"symbol", "price", "eps_latest", "fair_value_pe", "sector_guess",
	"source_url", "eps_series", "error", "discount_%",
}

// Filter holds the dashboard controls
type Filter struct {
	Sector         string  `json:"sector"`
	MinDiscountPct float64 `json:"minDiscountPct"`
}

// DashboardRow is a table row with the discount expressed in percent
type DashboardRow struct {
	Symbol      string    `json:"symbol"`
	Price       *float64  `json:"price"`
	EPSLatest   *float64  `json:"epsLatest"`
	FairValue   *float64  `json:"fairValuePE"`
	SectorGuess *string   `json:"sectorGuess"`
	SourceURL   string    `json:"sourceUrl"`
	EPSSeries   []float64 `json:"epsSeries"`
	Error       string    `json:"error,omitempty"`
	DiscountPct *float64  `json:"discountPct"`
}

// Cells returns the row's display values in Columns order
func (r DashboardRow) Cells() []string {
	series := make([]string, len(r.EPSSeries))
	for i, v := range r.EPSSeries {
		series[i] = formatFloat(v)
	}
	sector := ""
	if r.SectorGuess != nil {
		sector = *r.SectorGuess
	}
	return []string{
		r.Symbol, formatOptional(r.Price), formatOptional(r.EPSLatest), formatOptional(r.FairValue),
		sector, r.SourceURL, strings.Join(series, "|"), r.Error, formatOptional(r.DiscountPct),
	}
}

// Apply narrows rows to those whose sector contains f.Sector (case-insensitive,
// a missing sector counts as empty) and whose discount is at least
// f.MinDiscountPct percent. Rows without a discount never pass the minimum.
// The result is ordered by discount, best first.
func Apply(rows []valuation.Row, f Filter) []DashboardRow {
	needle := strings.ToLower(f.Sector)
	out := make([]DashboardRow, 0, len(rows))

	for _, row := range rows {
		sector := ""
		if row.SectorGuess != nil {
			sector = *row.SectorGuess
		}
		if needle != "" && !strings.Contains(strings.ToLower(sector), needle) {
			continue
		}

		pct := percent(row.DiscountVsFair)
		if pct == nil || *pct < f.MinDiscountPct {
			continue
		}

		out = append(out, DashboardRow{
			Symbol:      row.Symbol,
			Price:       row.Price,
			EPSLatest:   row.EPSLatest,
			FairValue:   row.FairValue,
			SectorGuess: row.SectorGuess,
			SourceURL:   row.URL,
			EPSSeries:   row.EPSSeries,
			Error:       row.Error,
			DiscountPct: pct,
		})
	}

	slices.SortStableFunc(out, func(a, b DashboardRow) int {
		return report.DescendingNilLast(a.DiscountPct, b.DiscountPct)
	})
	return out
}

// percent converts a fractional discount to percent, rounded to two places
// with ties to even.
func percent(d *float64) *float64 {
	if d == nil || math.IsNaN(*d) || math.IsInf(*d, 0) {
		return nil
	}
	v := math.RoundToEven(*d*100*100) / 100
	return &v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
