// Package airports provides the airport-name reference table used to label
// departure airports on the arrivals board.
//
// A Directory is immutable once built. Refreshing swaps in a whole new
// Directory, so readers never observe a partially loaded table.
package airports

import (
	"context"
	"strings"
)

// Record is one entry of the airport reference table.
type Record struct {
	// ICAO is the four-letter airport code (e.g., "RJAA")
	ICAO string `json:"icao"`

	// KoreanName is the localized display name
	KoreanName string `json:"koreanName"`

	// EnglishName is the international display name
	EnglishName string `json:"englishName"`
}

// Names holds the two display names for a departure airport.
type Names struct {
	Local         string `json:"local"`
	International string `json:"international"`
}

// Source is the interface that all airport reference providers must implement.
type Source interface {
	// Load returns the full reference table.
	Load(ctx context.Context) ([]Record, error)
}

// Directory maps airport codes to display names.
type Directory struct {
	byCode map[string]Names
}

// NewDirectory builds a directory from records.
// Later records win on duplicate codes. Empty names fall back to the code.
func NewDirectory(records []Record) *Directory {
	d := &Directory{byCode: make(map[string]Names, len(records))}
	for _, r := range records {
		code := strings.ToUpper(strings.TrimSpace(r.ICAO))
		if code == "" {
			continue
		}
		names := Names{Local: r.KoreanName, International: r.EnglishName}
		if names.Local == "" {
			names.Local = code
		}
		if names.International == "" {
			names.International = code
		}
		d.byCode[code] = names
	}
	return d
}

// Lookup returns the display names for code.
// Unknown codes are not an error: both names fall back to the raw code.
func (d *Directory) Lookup(code string) Names {
	if d != nil {
		if names, ok := d.byCode[strings.ToUpper(code)]; ok {
			return names
		}
	}
	return Names{Local: code, International: code}
}

// Len returns the number of airports in the directory.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.byCode)
}
