// Package currency formats prices in a store's currency and locale.
package currency

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vnykmshr/pviewgroups/pkg/catalog"
)

type storeFormat struct {
	unit currency.Unit
	tag  language.Tag
}

// Formatter implements catalog.CurrencyFormatter with per-store overrides.
type Formatter struct {
	mu       sync.RWMutex
	fallback storeFormat
	stores   map[int]storeFormat
}

// New creates a Formatter for an ISO 4217 code and a BCP 47 locale.
func New(code, locale string) (*Formatter, error) {
	sf, err := parse(code, locale)
	if err != nil {
		return nil, err
	}
	return &Formatter{fallback: sf, stores: make(map[int]storeFormat)}, nil
}

// SetStore overrides the currency and locale of one store.
func (f *Formatter) SetStore(storeID int, code, locale string) error {
	sf, err := parse(code, locale)
	if err != nil {
		return fmt.Errorf("store %d: %w", storeID, err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stores[storeID] = sf
	return nil
}

// Format renders amount with the store's currency symbol and number format.
func (f *Formatter) Format(_ context.Context, amount float64, storeID int) string {
	f.mu.RLock()
	sf, ok := f.stores[storeID]
	if !ok {
		sf = f.fallback
	}
	f.mu.RUnlock()

	p := message.NewPrinter(sf.tag)
	return p.Sprint(currency.Symbol(sf.unit.Amount(amount)))
}

func parse(code, locale string) (storeFormat, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return storeFormat{}, fmt.Errorf("parse currency %q: %w", code, err)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return storeFormat{}, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	return storeFormat{unit: unit, tag: tag}, nil
}

var _ catalog.CurrencyFormatter = (*Formatter)(nil)
