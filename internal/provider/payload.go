package provider

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/live-odds/internal/classifier"
	"github.com/yourusername/live-odds/internal/decoder"
	"github.com/yourusername/live-odds/internal/models"
)

const (
	defaultMatchName    = "Unknown Match"
	defaultRunnerName   = "Unknown"
	defaultMarketStatus = "ACTIVE"
)

// catalogueMarket is one entry of the payload's catalogues array
type catalogueMarket struct {
	MarketID        models.FlexString `json:"marketId"`
	MarketName      string            `json:"marketName"`
	MarketCondition json.RawMessage   `json:"marketCondition"`
	Status          *string           `json:"status"`
	InPlay          *bool             `json:"inPlay"`
	Runners         []catalogueRunner `json:"runners"`
}

type catalogueRunner struct {
	ID   models.FlexString `json:"id"`
	Name string            `json:"name"`
}

// normalizeEvent turns a provider detail payload into a NormalizedEvent.
// Only a malformed top level or a missing event object is an error; every
// sub-field failure degrades to a default.
func normalizeEvent(eventID string, body []byte, now time.Time, log *logrus.Entry) (*models.NormalizedEvent, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, newFetchError(eventID, ErrCodeInvalidData, "response is not a JSON object", fmt.Errorf("%w: %v", ErrInvalidPayload, err))
	}
	if top == nil {
		return nil, newFetchError(eventID, ErrCodeInvalidData, "response is null", ErrInvalidPayload)
	}

	var header map[string]json.RawMessage
	if err := json.Unmarshal(top["event"], &header); err != nil || len(header) == 0 {
		return nil, newFetchError(eventID, ErrCodeInvalidData, "missing event data", ErrInvalidPayload)
	}

	matchID := eventID
	var id models.FlexString
	if raw, ok := header["id"]; ok && json.Unmarshal(raw, &id) == nil && id != "" {
		matchID = id.String()
	}
	matchName := defaultMatchName
	var name string
	if raw, ok := header["name"]; ok && json.Unmarshal(raw, &name) == nil && name != "" {
		matchName = name
	}

	event := models.NewNormalizedEvent(matchID, matchName, now)
	event.Odds = decodeEmbeddedObject(top["odds"])
	event.Result = decodeEmbeddedObject(top["score"])

	var catalogues []json.RawMessage
	if raw, ok := top["catalogues"]; ok {
		if err := json.Unmarshal(raw, &catalogues); err != nil {
			log.WithError(err).Warn("Catalogues field is not an array")
		}
	}
	log.WithField("catalogues", len(catalogues)).Debug("Processing catalogues")

	for i, raw := range catalogues {
		var cat catalogueMarket
		if err := json.Unmarshal(raw, &cat); err != nil {
			log.WithError(err).WithField("index", i).Warn("Error processing catalogue")
			continue
		}
		category, marketID, market := buildMarket(cat, event.Odds)
		event.AddMarket(category, marketID, market)
	}

	return event, nil
}

// buildMarket classifies a catalogue entry and attaches its decoded odds when
// the odds map carries a usable encoding for it.
func buildMarket(cat catalogueMarket, odds map[string]any) (models.Category, string, models.MarketRecord) {
	category := classifier.Classify(cat.MarketName)
	marketID := cat.MarketID.String()

	status := defaultMarketStatus
	if cat.Status != nil {
		status = *cat.Status
	}
	inPlay := false
	if cat.InPlay != nil {
		inPlay = *cat.InPlay
	}

	market := models.MarketRecord{
		Name:   cat.MarketName,
		Status: status,
		InPlay: inPlay,
	}
	if category == models.CategoryFancy {
		market.MarketCondition = cat.MarketCondition
		if len(market.MarketCondition) == 0 {
			market.MarketCondition = json.RawMessage("null")
		}
	}

	names := make(map[string]string, len(cat.Runners))
	for _, r := range cat.Runners {
		names[r.ID.String()] = r.Name
	}

	if decoded, ok := lookupMarketOdds(odds, marketID); ok {
		for i := range decoded.Runners {
			r := &decoded.Runners[i]
			if name, found := names[r.ID]; found {
				r.Name = name
			} else if r.Name == "" {
				r.Name = defaultRunnerName
			}
		}
		market.Runners = decoded.Runners
		market.Status = decoded.StatusOr(status)
		market.InPlay = decoded.InPlayOr(inPlay)
		return category, marketID, market
	}

	market.Runners = make([]models.RunnerOdds, 0, len(cat.Runners))
	for _, r := range cat.Runners {
		market.Runners = append(market.Runners, models.RunnerOdds{
			ID:   r.ID.String(),
			Name: r.Name,
		})
	}
	return category, marketID, market
}

func lookupMarketOdds(odds map[string]any, marketID string) (decoder.MarketOdds, bool) {
	encoded, ok := odds[marketID].(string)
	if !ok || encoded == "" {
		return decoder.MarketOdds{}, false
	}
	return decoder.DecodeMarket(encoded)
}

// decodeEmbeddedObject decodes a JSON string field that itself holds a JSON
// object. Anything else yields an empty map.
func decodeEmbeddedObject(raw json.RawMessage) map[string]any {
	out := make(map[string]any)
	if len(raw) == 0 {
		return out
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil || encoded == "" {
		return out
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(encoded), &decoded); err != nil || decoded == nil {
		return out
	}
	return decoded
}
