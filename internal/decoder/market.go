package decoder

import (
	"encoding/json"
	"strings"

	"github.com/yourusername/live-odds/internal/models"
)

const (
	marketSeparator     = "|"
	runnerListSeparator = ","
	minMarketFields     = 8

	marketStatusField  = 2
	marketInPlayField  = 6
	marketRunnersField = 7
)

// MarketOdds is a decoded market odds string. Status and InPlay are nil when
// the encoding did not carry them, so the caller can fall back to catalogue
// values.
type MarketOdds struct {
	Status  *string
	InPlay  *bool
	Runners []models.RunnerOdds
}

// StatusOr returns the decoded status or def
func (m MarketOdds) StatusOr(def string) string {
	if m.Status == nil {
		return def
	}
	return *m.Status
}

// InPlayOr returns the decoded in-play flag or def
func (m MarketOdds) InPlayOr(def bool) bool {
	if m.InPlay == nil {
		return def
	}
	return *m.InPlay
}

// structuredMarket is the JSON form some markets arrive in instead of the pipe encoding
type structuredMarket struct {
	Status  *string           `json:"status"`
	InPlay  *bool             `json:"in_play"`
	Runners []json.RawMessage `json:"runners"`
}

// structuredRunner keeps the quote sides raw so a mistyped side degrades to
// defaults instead of rejecting the runner
type structuredRunner struct {
	ID     models.FlexString `json:"id"`
	Status string            `json:"status"`
	Back   json.RawMessage   `json:"back"`
	Lay    json.RawMessage   `json:"lay"`
	Name   string            `json:"name"`
}

type structuredPriceSize struct {
	Price   json.RawMessage `json:"price"`
	Volume  json.RawMessage `json:"volume"`
	Exposed json.RawMessage `json:"exposed"`
}

// DecodeMarket decodes a pipe-separated market string. Field 2 is the status,
// field 6 the in-play flag and field 7 a comma list of runner encodings.
// Shorter strings are tried as a JSON object before giving up.
func DecodeMarket(raw string) (MarketOdds, bool) {
	if raw == "" {
		return MarketOdds{}, false
	}

	parts := strings.Split(raw, marketSeparator)
	if len(parts) < minMarketFields {
		return decodeStructuredMarket(raw)
	}

	status := parts[marketStatusField]
	inPlay := strings.EqualFold(parts[marketInPlayField], "true")
	market := MarketOdds{
		Status:  &status,
		InPlay:  &inPlay,
		Runners: make([]models.RunnerOdds, 0),
	}

	for _, encoded := range strings.Split(parts[marketRunnersField], runnerListSeparator) {
		if runner, ok := DecodeRunner(encoded); ok {
			market.Runners = append(market.Runners, runner)
		}
	}

	return market, true
}

func decodeStructuredMarket(raw string) (MarketOdds, bool) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return MarketOdds{}, false
	}

	var sm structuredMarket
	if err := json.Unmarshal([]byte(trimmed), &sm); err != nil {
		return MarketOdds{}, false
	}

	market := MarketOdds{
		Status:  sm.Status,
		InPlay:  sm.InPlay,
		Runners: make([]models.RunnerOdds, 0, len(sm.Runners)),
	}
	for _, raw := range sm.Runners {
		var r structuredRunner
		if err := json.Unmarshal(raw, &r); err != nil {
			continue
		}
		market.Runners = append(market.Runners, models.RunnerOdds{
			ID:     r.ID.String(),
			Status: r.Status,
			Back:   decodeStructuredPriceSize(r.Back),
			Lay:    decodeStructuredPriceSize(r.Lay),
			Name:   r.Name,
		})
	}
	return market, true
}

// decodeStructuredPriceSize accepts numbers or quoted numbers for every field.
// Anything else falls back to nil price or zero, as in the pipe encoding.
func decodeStructuredPriceSize(raw json.RawMessage) models.PriceSize {
	var side structuredPriceSize
	if len(raw) == 0 || json.Unmarshal(raw, &side) != nil {
		return models.PriceSize{}
	}
	return models.PriceSize{
		Price:   parsePrice(scalarText(side.Price)),
		Volume:  parseInt(scalarText(side.Volume)),
		Exposed: parseInt(scalarText(side.Exposed)),
	}
}

// scalarText returns the text of a JSON number or string, or "" for anything else
func scalarText(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	if trimmed[0] == '"' {
		var str string
		if err := json.Unmarshal([]byte(trimmed), &str); err != nil {
			return ""
		}
		return str
	}
	var num json.Number
	if err := json.Unmarshal([]byte(trimmed), &num); err != nil {
		return ""
	}
	return num.String()
}
