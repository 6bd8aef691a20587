// Package menu derives the cocktail list a client should display from the raw
// catalog plus session state (search text, alcohol filter, favorites). The
// derivation is a pure function of its inputs.
package menu

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// CategoryAlcool marks an ingredient line as alcoholic.
const CategoryAlcool = "Alcool"

type Filter string

const (
	FilterAll       Filter = "all"
	FilterAlcohol   Filter = "alcohol"
	FilterNoAlcohol Filter = "no-alcohol"
)

// IngredientLine is one recipe line as served over the wire.
type IngredientLine struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Category string `json:"category"`
	InStock  bool   `json:"in_stock"`
}

// Cocktail is the wire representation shared by the server handlers and the
// Go client. Available is server-computed; clients never recompute it.
type Cocktail struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Image       string           `json:"image,omitempty"`
	Available   bool             `json:"available"`
	Ingredients []IngredientLine `json:"ingredients"`
}

// HasAlcohol reports whether any ingredient line is in the Alcool category.
// A missing ingredient list counts as non-alcoholic.
func (c Cocktail) HasAlcohol() bool {
	for _, l := range c.Ingredients {
		if l.Category == CategoryAlcool {
			return true
		}
	}
	return false
}

func (c Cocktail) matchesSearch(q string) bool {
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(c.Name), q) {
		return true
	}
	for _, l := range c.Ingredients {
		if strings.Contains(strings.ToLower(l.Name), q) {
			return true
		}
	}
	return false
}

// Derive filters and orders the cocktail list for display:
// search matches case-insensitively against the cocktail name or any
// ingredient name; filter partitions on the Alcool category; the result is
// sorted available first, then favorites, then alcoholic, then by name with
// locale-aware collation. The sort is stable: cocktails equal on all four
// keys keep their input order. Inputs are never mutated.
func Derive(cocktails []Cocktail, search string, filter Filter, favorites map[int64]bool) []Cocktail {
	q := strings.ToLower(strings.TrimSpace(search))

	out := make([]Cocktail, 0, len(cocktails))
	for _, c := range cocktails {
		if !c.matchesSearch(q) {
			continue
		}
		switch filter {
		case FilterAlcohol:
			if !c.HasAlcohol() {
				continue
			}
		case FilterNoAlcohol:
			if c.HasAlcohol() {
				continue
			}
		}
		out = append(out, c)
	}

	// collate.Collator keeps internal buffers, so build one per call rather
	// than sharing across goroutines.
	coll := collate.New(language.French)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Available != b.Available {
			return a.Available
		}
		if af, bf := favorites[a.ID], favorites[b.ID]; af != bf {
			return af
		}
		if aa, ba := a.HasAlcohol(), b.HasAlcohol(); aa != ba {
			return aa
		}
		return coll.CompareString(a.Name, b.Name) < 0
	})

	return out
}
