package finance

import "regexp"

const (
	// EPSLabel is the row label of the earnings-per-share figures
	EPSLabel = "EPS"
	// EPSLimit caps how many EPS figures are kept
	EPSLimit = 8

	FinancialsMarker = "Financials"
	FinancialsWindow = 8000
	AnnualMarker     = "Annual"
	AnnualWindow     = 4000

	DefaultPriceMarker = "Rs."
)

// sectorPattern is the closed list of sector names the company pages print
// in capitals. The open-ended alternatives also capture the following word.
var sectorPattern = regexp.MustCompile(`\b(BANKS|CEMENT|ENGINEERING|FERTILIZER|OIL & GAS|TEXTILE|TECHNOLOGY.+?|PHARMA|AUTOMOBILE.+?)\b`)

// CompanyFacts is what one company page yields. Pointers are nil when the
// page did not reveal the value.
type CompanyFacts struct {
	Symbol      string    `json:"symbol"`
	URL         string    `json:"url"`
	Price       *float64  `json:"price"`
	SectorGuess *string   `json:"sectorGuess"`
	EPSSeries   []float64 `json:"epsSeries"`
	EPSLatest   *float64  `json:"epsLatest"`
	Error       string    `json:"error,omitempty"`
}

// FailedFacts is the record kept for a symbol whose page could not be fetched.
// Only the symbol and the error are known.
func FailedFacts(symbol string, err error) CompanyFacts {
	return CompanyFacts{Symbol: symbol, EPSSeries: []float64{}, Error: err.Error()}
}

// Extractor pulls CompanyFacts out of flattened page text
type Extractor struct {
	price *regexp.Regexp
}

// NewExtractor builds an extractor whose price search looks for marker
// followed by a figure, e.g. "Rs. 1,234.50".
func NewExtractor(marker string) *Extractor {
	if marker == "" {
		marker = DefaultPriceMarker
	}
	return &Extractor{
		price: regexp.MustCompile(regexp.QuoteMeta(marker) + `\s*([0-9,]+\.\d+|[0-9,]+)`),
	}
}

// DefaultExtractor searches for prices quoted in rupees
var DefaultExtractor = NewExtractor(DefaultPriceMarker)

// ExtractCompanyFacts runs DefaultExtractor over doc
func ExtractCompanyFacts(symbol, url string, doc *RawDocument) CompanyFacts {
	return DefaultExtractor.Extract(symbol, url, doc)
}

// Extract never fails: anything it cannot find is left nil.
func (e *Extractor) Extract(symbol, url string, doc *RawDocument) CompanyFacts {
	facts := CompanyFacts{
		Symbol:    symbol,
		URL:       url,
		EPSSeries: []float64{},
	}
	if doc == nil {
		return facts
	}

	facts.Price = e.Price(doc.Text)
	facts.SectorGuess = Sector(doc.Text)
	facts.EPSSeries = EPSSeries(doc.Text)
	if len(facts.EPSSeries) > 0 {
		latest := facts.EPSSeries[0]
		facts.EPSLatest = &latest
	}
	return facts
}

// Price returns the first quoted price in text
func (e *Extractor) Price(text string) *float64 {
	m := e.price.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	if v, ok := ParseNumber(m[1]); ok {
		return &v
	}
	return nil
}

// Sector returns the first known sector name in text, exactly as matched.
// Open-ended names keep whatever precedes the next word boundary, trailing
// space included.
func Sector(text string) *string {
	m := sectorPattern.FindString(text)
	if m == "" {
		return nil
	}
	return &m
}

// EPSSeries prefers the EPS row of the annual financials block and falls back
// to the first EPS label anywhere on the page. Figures keep page order; the
// first one is taken as the most recent year.
func EPSSeries(text string) []float64 {
	if fin, ok := WindowAt(text, FinancialsMarker, FinancialsWindow); ok {
		section := fin.Slice(text)
		if annual, ok := WindowAt(section, AnnualMarker, AnnualWindow); ok {
			if values := ExtractAfter(EPSLabel, annual.Slice(section), EPSLimit); len(values) > 0 {
				return values
			}
		}
	}
	return ExtractAfter(EPSLabel, text, EPSLimit)
}
