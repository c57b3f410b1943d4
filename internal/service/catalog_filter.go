package service

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/aether-industries/storefront-api/internal/models"
)

// FilterSelections holds the active catalog filter state. Dimensions are
// AND-combined; within a dimension the selected values are OR-combined. An
// empty selection set leaves that dimension inactive.
type FilterSelections struct {
	Search           string
	Categories       []string
	RefrigerantTypes []string
	Applications     []string
	Availability     []string
	PriceRanges      []string // "min-max" strings; "1000-" is open-ended
}

// filterActivationRules makes cross-dimension coupling explicit instead of
// burying it in inline conditionals. The refrigerant-type dimension only
// applies while the category selection is empty or includes Refrigerants;
// selecting only non-refrigerant categories suppresses it even if
// refrigerant-type selections remain in state.
var filterActivationRules = map[string]func(FilterSelections) bool{
	"refrigerantTypes": func(s FilterSelections) bool {
		if len(s.Categories) == 0 {
			return true
		}
		return containsString(s.Categories, models.CategoryRefrigerants)
	},
}

func filterActive(key string, s FilterSelections) bool {
	rule, ok := filterActivationRules[key]
	if !ok {
		return true
	}
	return rule(s)
}

// FilterProducts applies the filter pipeline to an in-memory product list,
// preserving input order. It cannot fail; an empty result is a normal
// outcome.
func FilterProducts(products []models.Product, s FilterSelections) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if matchesFilters(p, s) {
			out = append(out, p)
		}
	}
	return out
}

func matchesFilters(p models.Product, s FilterSelections) bool {
	if term := strings.TrimSpace(s.Search); term != "" && !matchesSearch(p, term) {
		return false
	}
	if len(s.Categories) > 0 && !containsString(s.Categories, p.Category) {
		return false
	}
	if len(s.RefrigerantTypes) > 0 && filterActive("refrigerantTypes", s) {
		if p.RefrigerantType == "" || !containsString(s.RefrigerantTypes, p.RefrigerantType) {
			return false
		}
	}
	if len(s.Applications) > 0 {
		if p.Application == "" || !containsString(s.Applications, p.Application) {
			return false
		}
	}
	if len(s.Availability) > 0 && !containsString(s.Availability, string(p.Availability)) {
		return false
	}
	if len(s.PriceRanges) > 0 && !matchesAnyPriceRange(p, s.PriceRanges) {
		return false
	}
	return true
}

// matchesSearch does a case-insensitive substring match against name, short
// description, and SKU.
func matchesSearch(p models.Product, term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.ShortDescription), term) ||
		(p.SKU != "" && strings.Contains(strings.ToLower(p.SKU), term))
}

// matchesAnyPriceRange checks the product price against each selected
// "min-max" bucket. A product with a null price never matches while a price
// filter is active.
func matchesAnyPriceRange(p models.Product, ranges []string) bool {
	if !p.Price.Valid {
		return false
	}
	price := p.Price.Decimal
	for _, r := range ranges {
		min, max, open, ok := parsePriceRange(r)
		if !ok {
			continue
		}
		if price.LessThan(min) {
			continue
		}
		if open || price.LessThanOrEqual(max) {
			return true
		}
	}
	return false
}

// parsePriceRange parses a "min-max" bucket string. A missing max ("1000-")
// marks the bucket open-ended.
func parsePriceRange(r string) (min, max decimal.Decimal, open, ok bool) {
	minStr, maxStr, found := strings.Cut(r, "-")
	if !found {
		return decimal.Zero, decimal.Zero, false, false
	}
	minF, err := strconv.ParseFloat(minStr, 64)
	if err != nil {
		return decimal.Zero, decimal.Zero, false, false
	}
	min = decimal.NewFromFloat(minF)
	if maxStr == "" {
		return min, decimal.Zero, true, true
	}
	maxF, err := strconv.ParseFloat(maxStr, 64)
	if err != nil {
		return min, decimal.Zero, true, true
	}
	return min, decimal.NewFromFloat(maxF), false, true
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
