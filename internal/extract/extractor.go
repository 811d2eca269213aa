// Package extract recovers structured dish records from the free-text
// responses a vision model returns for menu photos. Responses arrive in
// every shape from clean JSON to markdown-wrapped fragments to raw lines,
// so extraction is a cascade of strategies of increasing looseness.
package extract

import (
	"fmt"
	"log"

	"menureader/internal/menu"
)

// Strategy attempts one recovery approach. It reports ok=false when it
// yields zero records so the next, looser strategy gets a chance.
type Strategy func(raw string) ([]menu.Dish, bool)

// strategies run in order; first success wins.
var strategies = []struct {
	name string
	fn   Strategy
}{
	{"balanced_json", extractBalancedJSON},
	{"fenced_json", extractFencedJSON},
	{"line_scan", extractLines},
	{"filtered_line_scan", extractFilteredLines},
}

// Extract converts a raw model response into dish records. It never fails:
// when no strategy recovers anything it returns an empty slice, which
// callers treat as a valid empty result.
func Extract(raw string) []menu.Dish {
	if raw == "" {
		return nil
	}

	for _, s := range strategies {
		dishes, ok := s.fn(raw)
		if !ok {
			continue
		}
		log.Printf("EXTRACT_OK strategy=%s items=%d", s.name, len(dishes))
		return finalize(dishes)
	}

	log.Printf("EXTRACT_EMPTY len=%d", len(raw))
	return nil
}

// finalize assigns the synthetic per-item ordinal ids and derives search
// queries for items that came without one.
func finalize(dishes []menu.Dish) []menu.Dish {
	out := make([]menu.Dish, 0, len(dishes))
	for i, d := range dishes {
		if d.OriginalName == "" {
			continue
		}
		d.ID = fmt.Sprintf("dish-%03d", i+1)
		if d.ImageSearchQuery == "" {
			if q := StripPrice(d.OriginalName); q != "" {
				d.ImageSearchQuery = q
			} else {
				d.ImageSearchQuery = d.OriginalName
			}
		}
		out = append(out, d)
	}
	return out
}
