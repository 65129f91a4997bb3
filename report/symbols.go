package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"psxscreener/stock"
)

// ErrSymbolsNotFound means the ticker list is missing; nothing can be fetched
var ErrSymbolsNotFound = errors.New("symbols file not found")

// utf8BOM is the byte-order mark some editors write at the start of a file
const utf8BOM = "\uFEFF"

// ReadSymbols loads the ticker list at path
func ReadSymbols(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSymbolsNotFound, path)
		}
		return nil, fmt.Errorf("failed to open symbols file: %w", err)
	}
	defer f.Close()

	return ParseSymbols(f)
}

// ParseSymbols reads one ticker per line, upper-cased. Blank lines and lines
// starting with '#' are skipped. Duplicates are kept.
func ParseSymbols(r io.Reader) ([]string, error) {
	var symbols []string
	scanner := bufio.NewScanner(r)
	first := true
	for scanner.Scan() {
		raw := scanner.Text()
		if first {
			raw = strings.TrimPrefix(raw, utf8BOM)
			first = false
		}
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		symbols = append(symbols, stock.NormalizeSymbol(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read symbols: %w", err)
	}
	return symbols, nil
}
