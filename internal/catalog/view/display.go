package view

import (
	"sort"
	"strings"

	"github.com/jmdelacruz/sarisari-pos/internal/models"
)

// FilterItems applies the list screen's search box and category chips:
// case-insensitive substring on the name, and membership in the selected
// categories (empty selection matches everything).
func FilterItems(items []models.Item, query string, categoryIDs []int64) []models.Item {
	norm := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Item, 0, len(items))
	for _, it := range items {
		if norm != "" && !strings.Contains(strings.ToLower(it.Name), norm) {
			continue
		}
		if len(categoryIDs) > 0 && !containsID(categoryIDs, it.CategoryID) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// SortItems orders a copy of items by "name" or "price". Any other field
// leaves the order untouched.
func SortItems(items []models.Item, field string, descending bool) []models.Item {
	out := append([]models.Item(nil), items...)
	switch field {
	case "name":
		sort.SliceStable(out, func(i, j int) bool {
			a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
			if descending {
				return a > b
			}
			return a < b
		})
	case "price":
		sort.SliceStable(out, func(i, j int) bool {
			if descending {
				return out[i].Price > out[j].Price
			}
			return out[i].Price < out[j].Price
		})
	}
	return out
}

type Section struct {
	Category models.Category `json:"category"`
	Items    []models.Item   `json:"items"`
}

// GroupByCategory builds the sectioned listing: one section per category that
// has at least one of the given items, in category order.
func GroupByCategory(items []models.Item, categories []models.Category) []Section {
	var sections []Section
	for _, cat := range categories {
		var members []models.Item
		for _, it := range items {
			if it.CategoryID == cat.ID {
				members = append(members, it)
			}
		}
		if len(members) > 0 {
			sections = append(sections, Section{Category: cat, Items: members})
		}
	}
	return sections
}
