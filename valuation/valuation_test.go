package valuation

import (
	"math"
	"testing"

	"psxscreener/config"
	"psxscreener/finance"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func policy(overrides ...config.SectorOverride) config.PEPolicy {
	return config.PEPolicy{DefaultMultiple: 8, Overrides: overrides}
}

func TestFairValueUndefinedEarnings(t *testing.T) {
	sector := "CEMENT"
	assert.Nil(t, FairValue(nil, &sector, policy()))
	assert.Nil(t, FairValue(nil, nil, policy()))
	assert.Nil(t, FairValue(f(-1), nil, policy()))
	assert.Nil(t, FairValue(f(0), nil, policy()))
	assert.Nil(t, FairValue(f(math.NaN()), nil, policy()))
}

func TestFairValueDefaultMultiple(t *testing.T) {
	fv := FairValue(f(5), nil, policy())
	require.NotNil(t, fv)
	assert.Equal(t, 40.0, *fv)

	unknown := "REFINERY"
	fv = FairValue(f(5), &unknown, policy(config.SectorOverride{Match: "CEMENT", Multiple: 6}))
	require.NotNil(t, fv)
	assert.Equal(t, 40.0, *fv)
}

func TestFairValueOverridePrecedence(t *testing.T) {
	// Declared order: CEMENT, ENGINEERING, WORKS. "ENGINEERING WORKS" hits
	// ENGINEERING before WORKS, so the multiple is 10, not 3.
	p := policy(
		config.SectorOverride{Match: "CEMENT", Multiple: 6},
		config.SectorOverride{Match: "ENGINEERING", Multiple: 10},
		config.SectorOverride{Match: "WORKS", Multiple: 3},
	)
	sector := "ENGINEERING WORKS"
	fv := FairValue(f(2), &sector, p)
	require.NotNil(t, fv)
	assert.Equal(t, 20.0, *fv)

	// Reversed order flips the winner
	reversed := policy(
		config.SectorOverride{Match: "WORKS", Multiple: 3},
		config.SectorOverride{Match: "ENGINEERING", Multiple: 10},
	)
	fv = FairValue(f(2), &sector, reversed)
	require.NotNil(t, fv)
	assert.Equal(t, 6.0, *fv)
}

func TestFairValueSubstringIsCaseInsensitive(t *testing.T) {
	sector := "Cement & Construction"
	fv := FairValue(f(3), &sector, policy(config.SectorOverride{Match: "CEMENT", Multiple: 6}))
	require.NotNil(t, fv)
	assert.Equal(t, 18.0, *fv)
}

func TestDiscount(t *testing.T) {
	d := Discount(f(80), f(100))
	require.NotNil(t, d)
	assert.InDelta(t, 0.25, *d, 1e-12)

	d = Discount(f(125), f(100))
	require.NotNil(t, d)
	assert.InDelta(t, -0.2, *d, 1e-12)

	assert.Nil(t, Discount(f(0), f(100)))
	assert.Nil(t, Discount(f(-5), f(100)))
	assert.Nil(t, Discount(nil, f(100)))
	assert.Nil(t, Discount(f(80), nil))
	assert.Nil(t, Discount(f(80), f(math.NaN())))
}

func TestEvaluate(t *testing.T) {
	sector := "CEMENT"
	facts := finance.CompanyFacts{
		Symbol:      "LUCK",
		Price:       f(48),
		SectorGuess: &sector,
		EPSSeries:   []float64{10, 9},
		EPSLatest:   f(10),
	}

	row := Evaluate(facts, policy(config.SectorOverride{Match: "CEMENT", Multiple: 6}))
	require.NotNil(t, row.FairValue)
	assert.Equal(t, 60.0, *row.FairValue)
	require.NotNil(t, row.DiscountVsFair)
	assert.InDelta(t, 0.25, *row.DiscountVsFair, 1e-12)
	assert.Equal(t, "LUCK", row.Symbol)
}

func TestEvaluateErrorRow(t *testing.T) {
	facts := finance.CompanyFacts{Symbol: "BAD", Error: "boom"}
	row := Evaluate(facts, policy())
	assert.Nil(t, row.FairValue)
	assert.Nil(t, row.DiscountVsFair)
	assert.Equal(t, "boom", row.Error)
}

func TestEvaluateNoPriceMeansNoDiscount(t *testing.T) {
	row := Evaluate(finance.CompanyFacts{EPSLatest: f(4)}, policy())
	require.NotNil(t, row.FairValue)
	assert.Equal(t, 32.0, *row.FairValue)
	assert.Nil(t, row.DiscountVsFair)
}

func f(v float64) *float64 { return &v }
