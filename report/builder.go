// Package report runs the fetch, extract and estimate pipeline over a list of
// symbols and writes the ranked table.
package report

import (
	"context"
	"fmt"
	"time"

	"psxscreener/config"
	"psxscreener/finance"
	"psxscreener/stock"
	"psxscreener/valuation"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Fetcher retrieves the company page for a symbol
type Fetcher interface {
	Fetch(ctx context.Context, symbol string) (*finance.RawDocument, error)
}

// URLResolver is implemented by fetchers that know the page URL up front
type URLResolver interface {
	URLFor(symbol string) string
}

// Builder processes symbols strictly one after another, spacing fetches by
// a fixed delay.
type Builder struct {
	fetcher   Fetcher
	extractor *finance.Extractor
	policy    config.PEPolicy
	limiter   *rate.Limiter
	log       zerolog.Logger
}

// NewBuilder wires a builder. A zero delay disables spacing.
func NewBuilder(fetcher Fetcher, extractor *finance.Extractor, policy config.PEPolicy, delay time.Duration, log zerolog.Logger) *Builder {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	if extractor == nil {
		extractor = finance.DefaultExtractor
	}
	return &Builder{
		fetcher:   fetcher,
		extractor: extractor,
		policy:    policy,
		limiter:   rate.NewLimiter(limit, 1),
		log:       log,
	}
}

// Run returns one row per symbol, in input order. Per-symbol failures become
// error rows. Only cancellation of ctx stops the batch early, in which case
// the rows gathered so far are returned with the context error.
func (b *Builder) Run(ctx context.Context, symbols []string) ([]valuation.Row, error) {
	rows := make([]valuation.Row, 0, len(symbols))
	failed := 0

	for _, symbol := range symbols {
		if err := b.limiter.Wait(ctx); err != nil {
			return rows, err
		}

		row := b.Evaluate(ctx, symbol)
		if row.Error != "" {
			failed++
		}
		rows = append(rows, row)
	}

	b.log.Info().
		Int("symbols", len(symbols)).
		Int("failed", failed).
		Msg("batch complete")

	return rows, nil
}

// Evaluate runs fetch, extract and estimate for a single symbol. It never
// panics and never returns an error; failures are carried on the row.
func (b *Builder) Evaluate(ctx context.Context, symbol string) (row valuation.Row) {
	symbol = stock.NormalizeSymbol(symbol)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic while processing %s: %v", symbol, r)
			b.log.Error().Str("symbol", symbol).Err(err).Msg("recovered")
			row = valuation.Evaluate(finance.FailedFacts(symbol, err), b.policy)
		}
	}()

	doc, err := b.fetcher.Fetch(ctx, symbol)
	if err != nil {
		b.log.Warn().Str("symbol", symbol).Err(err).Msg("fetch failed")
		return valuation.Evaluate(finance.FailedFacts(symbol, err), b.policy)
	}

	url := ""
	if r, ok := b.fetcher.(URLResolver); ok {
		url = r.URLFor(symbol)
	}

	facts := b.extractor.Extract(symbol, url, doc)
	row = valuation.Evaluate(facts, b.policy)

	b.log.Info().
		Str("symbol", symbol).
		Interface("price", facts.Price).
		Interface("eps", facts.EPSLatest).
		Interface("sector", facts.SectorGuess).
		Interface("discount", row.DiscountVsFair).
		Msg("evaluated")

	return row
}
