// Package valuation turns extracted company facts into a P/E based fair value.
package valuation

import (
	"math"

	"psxscreener/config"
	"psxscreener/finance"
)

// Row is one line of the screener output
type Row struct {
	finance.CompanyFacts
	FairValue      *float64 `json:"fairValuePE"`
	DiscountVsFair *float64 `json:"discountVsFair"`
}

// FairValue estimates a per-share value from trailing earnings.
//
// FORMULA: FV = EPS × PE(sector)
//
// PE(sector) is the first override whose match string appears in the sector
// (case-insensitive), else the default multiple. Companies without positive
// earnings have no P/E based value and get nil.
func FairValue(eps *float64, sector *string, policy config.PEPolicy) *float64 {
	if eps == nil || !finite(*eps) || *eps <= 0 {
		return nil
	}
	fv := *eps * policy.MultipleFor(sector)
	if !finite(fv) {
		return nil
	}
	return &fv
}

// Discount is the gap between fair value and price, relative to price.
//
// FORMULA: D = (FV - P) / P
//
// Positive means the stock trades below its estimated fair value.
// Defined only when both inputs are defined and P > 0.
func Discount(price, fairValue *float64) *float64 {
	if price == nil || fairValue == nil {
		return nil
	}
	p, fv := *price, *fairValue
	if !finite(p) || !finite(fv) || p <= 0 {
		return nil
	}
	d := (fv - p) / p
	return &d
}

// Evaluate attaches fair value and discount to facts
func Evaluate(facts finance.CompanyFacts, policy config.PEPolicy) Row {
	fv := FairValue(facts.EPSLatest, facts.SectorGuess, policy)
	return Row{
		CompanyFacts:   facts,
		FairValue:      fv,
		DiscountVsFair: Discount(facts.Price, fv),
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
