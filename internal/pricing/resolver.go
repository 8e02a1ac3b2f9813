// Package pricing resolves the authoritative unit price of a card from its
// overlapping price sources. Resolution is pure and infallible: any source
// that is absent or unparsable is skipped, and a card with no usable source
// resolves to 0, which callers treat as "unavailable for purchase".
package pricing

import (
	"math"
	"strconv"

	"github.com/cardtienda/backend/internal/domain/entity"
)

// ResolveUnitPrice returns the unit price for a card. Precedence, first match
// wins:
//
//  1. gestion custom price (admin override)
//  2. gestion catalog price snapshot
//  3. raw catalog quotes: USD, then USD foil, then EUR
//
// The EUR branch is a same-unit fallback; no currency conversion is applied.
// The result is always finite and non-negative.
func ResolveUnitPrice(card entity.Card) float64 {
	if g := card.Gestion; g != nil {
		if v, ok := g.CustomPrice.Float64(); ok {
			return clampPrice(v)
		}
		if v, ok := g.CatalogPriceSnapshot.Float64(); ok {
			return clampPrice(v)
		}
	}
	for _, raw := range []string{card.Prices.USD, card.Prices.USDFoil, card.Prices.EUR} {
		if v, ok := entity.ParseFlexPrice(raw).Float64(); ok {
			return clampPrice(v)
		}
	}
	return 0
}

// LineTotal is the resolved unit price of the card times the quantity.
func LineTotal(card entity.Card, quantity int) float64 {
	if quantity <= 0 {
		return 0
	}
	return ResolveUnitPrice(card) * float64(quantity)
}

// FormatPrice renders a price with exactly two decimals. NaN, infinities and
// negative values all render as "0.00".
func FormatPrice(v float64) string {
	v = clampPrice(v)
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func clampPrice(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
