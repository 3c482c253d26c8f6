package catalog

import "strings"

// DefaultSuggestionLimit is the size of the search suggestion list.
const DefaultSuggestionLimit = 5

// Search returns up to limit products whose title contains the trimmed query,
// compared case-insensitively, in catalog order. A blank query matches nothing.
// limit <= 0 uses DefaultSuggestionLimit.
func Search(items []Product, query string, limit int) []Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	var out []Product
	for _, p := range items {
		if strings.Contains(strings.ToLower(p.Title), q) {
			out = append(out, p)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}
