package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"psxscreener/config"
	"psxscreener/finance"
	"psxscreener/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	pages   map[string]string
	errs    map[string]error
	panics  map[string]bool
	calls   []string
	onFetch func(symbol string)
}

func (f *fakeFetcher) Fetch(ctx context.Context, symbol string) (*finance.RawDocument, error) {
	f.calls = append(f.calls, symbol)
	if f.onFetch != nil {
		f.onFetch(symbol)
	}
	if f.panics[symbol] {
		panic("boom")
	}
	if err := f.errs[symbol]; err != nil {
		return nil, err
	}
	return finance.TextDocument(f.pages[symbol]), nil
}

func (f *fakeFetcher) URLFor(symbol string) string {
	return "https://example.test/company/" + symbol
}

func newFake() *fakeFetcher {
	return &fakeFetcher{
		pages: map[string]string{
			"AAA": "AAA Limited CEMENT Rs. 80 Financials Annual EPS 12.5 10.0",
			"CCC": "CCC Bank BANKS Rs. 50.00 Financials Annual EPS 10",
			"DDD": "DDD Rs. 100 no earnings here",
		},
		errs:   map[string]error{"BBB": errors.New("status 503")},
		panics: map[string]bool{},
	}
}

func newTestBuilder(f Fetcher, delay time.Duration) *Builder {
	return NewBuilder(f, nil, config.DefaultPEPolicy(), delay, logger.Nop())
}

func TestRunKeepsGoingAfterFailure(t *testing.T) {
	fake := newFake()
	rows, err := newTestBuilder(fake, 0).Run(context.Background(), []string{"aaa", "BBB", "ccc", "DDD"})
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"AAA", "BBB", "CCC", "DDD"}, fake.calls)

	aaa := rows[0]
	assert.Equal(t, "AAA", aaa.Symbol)
	assert.Equal(t, "https://example.test/company/AAA", aaa.URL)
	require.NotNil(t, aaa.FairValue)
	assert.InDelta(t, 75.0, *aaa.FairValue, 1e-9)
	require.NotNil(t, aaa.DiscountVsFair)
	assert.InDelta(t, -0.0625, *aaa.DiscountVsFair, 1e-9)
	assert.Empty(t, aaa.Error)

	bbb := rows[1]
	assert.Equal(t, "BBB", bbb.Symbol)
	assert.Contains(t, bbb.Error, "status 503")
	assert.Empty(t, bbb.URL)
	assert.Nil(t, bbb.Price)
	assert.Nil(t, bbb.EPSLatest)
	assert.Nil(t, bbb.FairValue)
	assert.Nil(t, bbb.DiscountVsFair)

	ccc := rows[2]
	require.NotNil(t, ccc.DiscountVsFair)
	assert.InDelta(t, 0.2, *ccc.DiscountVsFair, 1e-9)

	ddd := rows[3]
	require.NotNil(t, ddd.Price)
	assert.Equal(t, 100.0, *ddd.Price)
	assert.Nil(t, ddd.EPSLatest)
	assert.Nil(t, ddd.DiscountVsFair)
	assert.Empty(t, ddd.Error)
}

func TestRunRecoversPanics(t *testing.T) {
	fake := newFake()
	fake.panics["AAA"] = true

	rows, err := newTestBuilder(fake, 0).Run(context.Background(), []string{"AAA", "CCC"})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Contains(t, rows[0].Error, "panic")
	assert.Nil(t, rows[0].DiscountVsFair)
	assert.Empty(t, rows[1].Error)
	assert.NotNil(t, rows[1].DiscountVsFair)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fake := newFake()
	fake.onFetch = func(symbol string) {
		if symbol == "BBB" {
			cancel()
		}
	}

	rows, err := newTestBuilder(fake, 0).Run(ctx, []string{"AAA", "BBB", "CCC", "DDD"})
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"AAA", "BBB"}, fake.calls)
}

func TestRunSpacesFetches(t *testing.T) {
	fake := newFake()
	start := time.Now()

	_, err := newTestBuilder(fake, 40*time.Millisecond).Run(context.Background(), []string{"AAA", "CCC", "DDD"})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 70*time.Millisecond)
}

func TestRunEmpty(t *testing.T) {
	rows, err := newTestBuilder(newFake(), 0).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRunThenSort(t *testing.T) {
	rows, err := newTestBuilder(newFake(), 0).Run(context.Background(), []string{"DDD", "AAA", "BBB", "CCC"})
	require.NoError(t, err)

	SortRows(rows)

	symbols := make([]string, len(rows))
	for i, r := range rows {
		symbols[i] = r.Symbol
	}
	assert.Equal(t, []string{"CCC", "AAA", "DDD", "BBB"}, symbols)
}
