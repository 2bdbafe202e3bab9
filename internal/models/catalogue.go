package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Market status values reported by the provider listing
const (
	StatusOpen      = "OPEN"
	StatusSuspended = "SUSPENDED"
)

// MatchCatalogueEntry is one row of the match listing written by the catalogue step
type MatchCatalogueEntry struct {
	MatchName   string     `json:"match_name"`
	Teams       string     `json:"teams"`
	StartTime   string     `json:"start_time"`
	Status      string     `json:"status"`
	MarketID    FlexString `json:"market_id"`
	EventID     FlexString `json:"event_id"`
	Competition string     `json:"competition"`
	Live        bool       `json:"live"`
}

// FlexString is a string that also accepts JSON numbers. The provider is not
// consistent about quoting ids.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}

	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	if i, err := strconv.ParseInt(num.String(), 10, 64); err == nil {
		*s = FlexString(strconv.FormatInt(i, 10))
		return nil
	}
	*s = FlexString(num.String())
	return nil
}

// String returns the plain string value
func (s FlexString) String() string {
	return string(s)
}
