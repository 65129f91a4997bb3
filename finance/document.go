package finance

import "psxscreener/scraper"

// RawDocument is a fetched page plus its flattened text. Treat as read-only.
type RawDocument struct {
	HTML string
	Text string
}

// NewRawDocument parses html and precomputes the text projection
func NewRawDocument(html string) (*RawDocument, error) {
	text, err := scraper.FlattenHTML(html)
	if err != nil {
		return nil, err
	}
	return &RawDocument{HTML: html, Text: text}, nil
}

// TextDocument wraps already-flattened text, mostly for tests and fixtures
func TextDocument(text string) *RawDocument {
	return &RawDocument{Text: text}
}
