package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// StatBag is a flat bag of named numeric statistics. Riot serializes most
// participant stats as JSON numbers, but booleans and the occasional
// string-encoded numeric show up in challenge payloads; everything is
// coerced to float64 on the way in and non-coercible values are dropped so
// that a missing key always reads as zero.
type StatBag map[string]float64

// Get returns the named stat, or 0 when absent.
func (b StatBag) Get(key string) float64 {
	if b == nil {
		return 0
	}
	return b[key]
}

// Has reports whether the named stat was present in the source payload.
func (b StatBag) Has(key string) bool {
	if b == nil {
		return false
	}
	_, ok := b[key]
	return ok
}

// UnmarshalJSON implements flexible JSON unmarshaling that accepts native
// numbers, booleans, and string-encoded numerics. Nested objects and arrays
// are skipped; they are handled by the typed structures around the bag.
func (b *StatBag) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("stat bag unmarshal: %w", err)
	}

	out := make(StatBag, len(raw))
	for key, rawVal := range raw {
		if v, ok := coerceNumeric(rawVal); ok {
			out[key] = v
		}
	}
	*b = out
	return nil
}

// coerceNumeric converts a raw JSON value to float64 where possible.
func coerceNumeric(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || s == "" {
			return 0, false
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return n, true
		}
		return 0, false
	case 't':
		return 1, true
	case 'f':
		return 0, true
	case '{', '[', 'n':
		return 0, false
	default:
		var n float64
		if err := json.Unmarshal(raw, &n); err != nil {
			return 0, false
		}
		return n, true
	}
}
