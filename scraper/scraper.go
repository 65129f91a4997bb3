// Package scraper turns fetched HTML into the flat text the extractors search
package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// skipped elements never contribute visible text
var skipped = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"iframe":   true,
}

// FlattenHTML parses raw markup and returns its text projection
func FlattenHTML(raw string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	return Flatten(doc), nil
}

// Flatten walks the document in order and joins every non-empty text node
// with a single space. Each node is whitespace-normalized first, so labels and
// numbers from neighbouring table cells end up separated by exactly one space.
func Flatten(doc *goquery.Document) string {
	parts := make([]string, 0, 256)
	for _, n := range doc.Nodes {
		collect(n, &parts)
	}
	return strings.Join(parts, " ")
}

func collect(n *html.Node, parts *[]string) {
	switch n.Type {
	case html.TextNode:
		if text := CleanText(n.Data); text != "" {
			*parts = append(*parts, text)
		}
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		if skipped[n.Data] {
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c, parts)
	}
}

// CleanText collapses every whitespace run (tabs, newlines, nbsp) to one space and trims
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
