package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/live-odds/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		market   string
		expected models.Category
	}{
		{"match odds", "Match Odds", models.CategoryBookmaker},
		{"match odds upper", "MATCH ODDS", models.CategoryBookmaker},
		{"runs beats over", "Total Runs 1st Over", models.CategoryFancy},
		{"boundaries", "Team A Boundaries", models.CategoryFancy},
		{"session", "Session Over 5", models.CategorySessions},
		{"over only", "6 Over Line", models.CategorySessions},
		{"match odds beats runs", "Match Odds Runs", models.CategoryBookmaker},
		{"empty", "", models.CategoryOther},
		{"unrelated", "Toss Winner", models.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.market))
		})
	}
}
