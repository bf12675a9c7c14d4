// Package meta classifies scraped meta-deck listings into popularity tiers
// and summarizes them. Fetching is delegated to a Source.
package meta

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ShareValue is a meta share as the upstream site displayed it, e.g. "8.5%".
// JSON input may be a string, a number or null.
type ShareValue string

// UnmarshalJSON accepts strings, numbers and null.
func (s *ShareValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*s = ""
	case data[0] == '"':
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*s = ShareValue(raw)
	default:
		var num json.Number
		if err := json.Unmarshal(data, &num); err != nil {
			// booleans, objects and arrays normalize to zero like any other junk
			*s = ""
			return nil
		}
		*s = ShareValue(num.String())
	}
	return nil
}

// Float returns the normalized share.
func (s ShareValue) Float() float64 {
	return NormalizeShare(string(s))
}

// NormalizeShare parses "5.2%" or "5.2" into 5.2. Anything unparsable,
// negative or non-finite becomes 0.
func NormalizeShare(raw string) float64 {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimSuffix(trimmed, "%")
	trimmed = strings.TrimSpace(trimmed)
	if trimmed == "" {
		return 0
	}

	share, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(share) || math.IsInf(share, 0) || share < 0 {
		return 0
	}
	return share
}

// DeckRecord is one scraped meta deck.
type DeckRecord struct {
	Name      string     `json:"name"`
	URL       string     `json:"url"`
	MetaShare ShareValue `json:"metaShare"`
}

// TierFor buckets a normalized share: >=5% tier 1, >=2% tier 2,
// >=0.5% tier 3, everything else tier 4.
func TierFor(share float64) int {
	tierThresholds := []float64{5.0, 2.0, 0.5}
	for i, threshold := range tierThresholds {
		if share >= threshold {
			return i + 1
		}
	}
	return len(tierThresholds) + 1
}
