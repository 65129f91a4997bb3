package finance

import "strings"

// ProximityWindow is how far past a label ExtractAfter looks for figures.
// Wide enough for one table row set, short enough to skip repeats of the
// label further down the page.
const ProximityWindow = 2000

// Window is a bounded slice of flattened text, in byte offsets
type Window struct {
	Start  int
	Length int
}

// Slice returns the part of text covered by w, clamped to the text bounds
func (w Window) Slice(text string) string {
	start := w.Start
	if start < 0 {
		start = 0
	}
	if start >= len(text) || w.Length <= 0 {
		return ""
	}
	end := start + w.Length
	if end > len(text) {
		end = len(text)
	}
	return text[start:end]
}

// WindowAt opens a window of the given length at the first occurrence of
// marker, marker included. ok is false when the marker is absent.
func WindowAt(text, marker string, length int) (Window, bool) {
	i := strings.Index(text, marker)
	if i == -1 {
		return Window{}, false
	}
	return Window{Start: i, Length: length}, true
}

// ExtractAfter returns up to limit numbers found right after the first
// occurrence of label, in page order. A missing label yields an empty slice.
func ExtractAfter(label, text string, limit int) []float64 {
	return ExtractAfterWindow(label, text, limit, ProximityWindow)
}

// ExtractAfterWindow is ExtractAfter with an explicit window length.
// Tokens that fail to parse are dropped after the limit is applied, so the
// result can be shorter than limit even when more figures follow.
func ExtractAfterWindow(label, text string, limit, window int) []float64 {
	values := make([]float64, 0, 8)
	if limit <= 0 {
		return values
	}

	i := strings.Index(text, label)
	if i == -1 {
		return values
	}

	tail := Window{Start: i + len(label), Length: window}.Slice(text)
	for _, tok := range numberPattern.FindAllString(tail, limit) {
		if v, ok := ParseNumber(tok); ok {
			values = append(values, v)
		}
	}
	return values
}
