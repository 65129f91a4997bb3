package config

import "strings"

// SectorOverride pins a P/E multiple to every sector containing Match
type SectorOverride struct {
	Match    string  `toml:"match" validate:"required"`
	Multiple float64 `toml:"multiple" validate:"gt=0"`
}

// PEPolicy holds the default P/E multiple and the ordered sector overrides.
// Overrides are checked in declared order and the first hit wins.
type PEPolicy struct {
	DefaultMultiple float64          `toml:"default_multiple" validate:"gt=0"`
	Overrides       []SectorOverride `toml:"overrides" validate:"dive"`
}

// DefaultOverrides mirrors the sector vocabulary the extractor recognises
var DefaultOverrides = []SectorOverride{
	{"BANKS", 6},
	{"CEMENT", 6},
	{"FERTILIZER", 7},
	{"OIL & GAS", 7},
	{"TEXTILE", 6},
	{"ENGINEERING", 10},
	{"AUTOMOBILE", 9},
	{"PHARMA", 12},
	{"TECHNOLOGY", 14},
}

// DefaultPEPolicy returns a fresh copy of the built-in policy
func DefaultPEPolicy() PEPolicy {
	overrides := make([]SectorOverride, len(DefaultOverrides))
	copy(overrides, DefaultOverrides)
	return PEPolicy{DefaultMultiple: 8, Overrides: overrides}
}

// MultipleFor selects the multiple for a sector guess. A nil or empty sector
// gets the default multiple.
func (p PEPolicy) MultipleFor(sector *string) float64 {
	if sector == nil || *sector == "" {
		return p.DefaultMultiple
	}
	s := strings.ToLower(*sector)
	for _, o := range p.Overrides {
		if strings.Contains(s, strings.ToLower(o.Match)) {
			return o.Multiple
		}
	}
	return p.DefaultMultiple
}
