// Package decoder turns the provider's delimiter-encoded odds strings into
// typed records. Nothing here returns an error: malformed input degrades to
// defaults or to ok=false.
package decoder

import (
	"math"
	"strconv"
	"strings"

	"github.com/yourusername/live-odds/internal/models"
)

const (
	runnerSeparator = "~"
	tupleSeparator  = ":"
	minRunnerFields = 3
)

// DecodeRunner decodes "<id>~<status>~<price>:<volume>:<exposed>[~<price>:<volume>:<exposed>]".
// ok is false when the string has fewer than three fields.
func DecodeRunner(raw string) (models.RunnerOdds, bool) {
	if raw == "" {
		return models.RunnerOdds{}, false
	}

	parts := strings.Split(raw, runnerSeparator)
	if len(parts) < minRunnerFields {
		return models.RunnerOdds{}, false
	}

	runner := models.RunnerOdds{
		ID:     parts[0],
		Status: parts[1],
		Back:   decodePriceSize(parts[2]),
	}
	if len(parts) > 3 {
		runner.Lay = decodePriceSize(parts[3])
	}

	return runner, true
}

// decodePriceSize decodes "price:volume:exposed"; any missing or unparsable
// part falls back to nil price or zero.
func decodePriceSize(raw string) models.PriceSize {
	var ps models.PriceSize
	if raw == "" {
		return ps
	}

	fields := strings.Split(raw, tupleSeparator)
	ps.Price = parsePrice(fields[0])
	if len(fields) > 1 {
		ps.Volume = parseInt(fields[1])
	}
	if len(fields) > 2 {
		ps.Exposed = parseInt(fields[2])
	}
	return ps
}

func parsePrice(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	price, err := strconv.ParseFloat(s, 64)
	// NaN and Inf cannot be written back out as JSON
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return nil
	}
	return &price
}

func parseInt(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
