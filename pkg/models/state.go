package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// CachePair is one [question, record] entry in the sync payload. It
// marshals as a two-element JSON array to stay wire-compatible with
// payloads produced from a serialized Map.
type CachePair struct {
	Question string
	Record   QuestionRecord
}

// MarshalJSON encodes the pair as ["question", {record}].
func (p CachePair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{p.Question, p.Record})
}

// UnmarshalJSON decodes a ["question", {record}] array.
func (p *CachePair) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("cache pair: %w", err)
	}
	if err := json.Unmarshal(raw[0], &p.Question); err != nil {
		return fmt.Errorf("cache pair question: %w", err)
	}
	if err := json.Unmarshal(raw[1], &p.Record); err != nil {
		return fmt.Errorf("cache pair record: %w", err)
	}
	return nil
}

// SyncState is the full persisted state: cache entries, counters, and the
// time of the snapshot. This is both the local persistence format and the
// remote blob payload.
type SyncState struct {
	Cache       []CachePair   `json:"cache"`
	Stats       StatsSnapshot `json:"stats"`
	LastUpdated time.Time     `json:"lastUpdated"`
}
