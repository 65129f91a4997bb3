package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"psxscreener/finance"
	"psxscreener/valuation"

	"github.com/gocarina/gocsv"
)

// Columns is the header of the persisted table, in order
var Columns = []string{
	"symbol", "price", "eps_latest", "fair_value_pe", "discount_vs_fair",
	"sector_guess", "source_url", "eps_series", "error",
}

// Record is one CSV line. Undefined values are empty cells.
type Record struct {
	Symbol         string `csv:"symbol"`
	Price          string `csv:"price"`
	EPSLatest      string `csv:"eps_latest"`
	FairValuePE    string `csv:"fair_value_pe"`
	DiscountVsFair string `csv:"discount_vs_fair"`
	SectorGuess    string `csv:"sector_guess"`
	SourceURL      string `csv:"source_url"`
	EPSSeries      string `csv:"eps_series"`
	Error          string `csv:"error"`
}

// Cells returns the record's values in Columns order
func (r Record) Cells() []string {
	return []string{
		r.Symbol, r.Price, r.EPSLatest, r.FairValuePE, r.DiscountVsFair,
		r.SectorGuess, r.SourceURL, r.EPSSeries, r.Error,
	}
}

// NewRecord flattens a row for output
func NewRecord(row valuation.Row) Record {
	series := make([]string, len(row.EPSSeries))
	for i, v := range row.EPSSeries {
		series[i] = formatFloat(v)
	}

	sector := ""
	if row.SectorGuess != nil {
		sector = *row.SectorGuess
	}

	return Record{
		Symbol:         row.Symbol,
		Price:          formatOptional(row.Price),
		EPSLatest:      formatOptional(row.EPSLatest),
		FairValuePE:    formatOptional(row.FairValue),
		DiscountVsFair: formatOptional(row.DiscountVsFair),
		SectorGuess:    sector,
		SourceURL:      row.URL,
		EPSSeries:      strings.Join(series, "|"),
		Error:          row.Error,
	}
}

// Row turns a persisted record back into a row. Cells that do not hold a
// number are read as undefined.
func (r Record) Row() valuation.Row {
	series := []float64{}
	for _, part := range strings.Split(r.EPSSeries, "|") {
		if v, ok := finance.ParseNumber(part); ok {
			series = append(series, v)
		}
	}

	var sector *string
	if s := r.SectorGuess; strings.TrimSpace(s) != "" {
		sector = &s
	}

	return valuation.Row{
		CompanyFacts: finance.CompanyFacts{
			Symbol:      r.Symbol,
			URL:         r.SourceURL,
			Price:       parseOptional(r.Price),
			SectorGuess: sector,
			EPSSeries:   series,
			EPSLatest:   parseOptional(r.EPSLatest),
			Error:       r.Error,
		},
		FairValue:      parseOptional(r.FairValuePE),
		DiscountVsFair: parseOptional(r.DiscountVsFair),
	}
}

// WriteCSV writes the header and one line per row
func WriteCSV(w io.Writer, rows []valuation.Row) error {
	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = NewRecord(row)
	}
	if err := gocsv.Marshal(&records, w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// ReadCSV parses a table written by WriteCSV
func ReadCSV(r io.Reader) ([]valuation.Row, error) {
	var records []Record
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	rows := make([]valuation.Row, len(records))
	for i, rec := range records {
		rows[i] = rec.Row()
	}
	return rows, nil
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

func parseOptional(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}
