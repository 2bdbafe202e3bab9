// Package classifier files provider markets into semantic categories.
package classifier

import (
	"strings"

	"github.com/yourusername/live-odds/internal/models"
)

type rule struct {
	category models.Category
	keywords []string
}

// rules are checked in order; the first match wins
var rules = []rule{
	{category: models.CategoryBookmaker, keywords: []string{"match odds"}},
	{category: models.CategoryFancy, keywords: []string{"runs", "boundaries"}},
	{category: models.CategorySessions, keywords: []string{"session", "over"}},
}

// Classify maps a market name to its category, defaulting to other
func Classify(marketName string) models.Category {
	name := strings.ToLower(marketName)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(name, kw) {
				return r.category
			}
		}
	}
	return models.CategoryOther
}
