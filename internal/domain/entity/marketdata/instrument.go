package marketdata

import (
	"errors"
	"strings"
)

// Instrument describes the single market pair the engine follows.
type Instrument struct {
	Symbol string `json:"symbol"`
	// UID is the upstream instrument identifier when the feed needs one.
	UID string `json:"uid,omitempty"`
	// Lot converts exchange lots into base-asset units.
	Lot int64 `json:"lot"`
}

func NewInstrument(symbol, uid string, lot int64) (Instrument, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return Instrument{}, errors.New("instrument symbol is empty")
	}
	if lot <= 0 {
		lot = 1
	}
	return Instrument{Symbol: symbol, UID: strings.TrimSpace(uid), Lot: lot}, nil
}

// Base returns the base asset of a "BASE/QUOTE" symbol.
func (i Instrument) Base() string {
	base, _, _ := strings.Cut(i.Symbol, "/")
	return base
}

// Quote returns the quote asset of a "BASE/QUOTE" symbol.
func (i Instrument) Quote() string {
	_, quote, _ := strings.Cut(i.Symbol, "/")
	return quote
}

// Compact drops the separator, the form most exchange REST APIs expect.
func (i Instrument) Compact() string {
	return strings.ReplaceAll(i.Symbol, "/", "")
}
