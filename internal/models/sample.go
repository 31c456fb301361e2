package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

// TimeFormat is the fixed timestamp layout used on the HTTP surface.
const TimeFormat = "2006-01-02 15:04:05"

// Validation errors
var (
	ErrEmptyBody      = errors.New("request body is empty")
	ErrInvalidPayload = errors.New("invalid sample payload")
)

// Sample is a single telemetry reading from the device. Numeric fields are
// pointers because the device may omit any of them; an omitted field is a
// valid value (null), not an error.
type Sample struct {
	AngleX     *float64 `json:"angle_x"`
	AngleY     *float64 `json:"angle_y"`
	UVIndex    *float64 `json:"uvi"`
	Smoke      *float64 `json:"smoke"`
	AlertEmail string   `json:"alert_email,omitempty"`
}

// Record is a persisted sample. ID and Timestamp are assigned by the store.
type Record struct {
	ID         int64
	AngleX     *float64
	AngleY     *float64
	UVIndex    *float64
	Smoke      *float64
	AlertFlag  bool
	AlertEmail *string
	Timestamp  time.Time
}

// DecodeSample reads one JSON sample object from r. Unknown fields are
// tolerated; a body that is not a JSON object fails with ErrInvalidPayload.
func DecodeSample(r io.Reader) (Sample, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return Sample{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if len(body) == 0 {
		return Sample{}, ErrEmptyBody
	}

	// Reject arrays, strings and bare numbers up front; json.Unmarshal into
	// a struct would reject them too, but with a less useful message.
	var probe any
	if err := json.Unmarshal(body, &probe); err != nil {
		return Sample{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if _, ok := probe.(map[string]any); !ok {
		return Sample{}, fmt.Errorf("%w: expected a JSON object", ErrInvalidPayload)
	}

	var s Sample
	if err := json.Unmarshal(body, &s); err != nil {
		return Sample{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return s, nil
}

// Float returns a pointer to v. Handy for building samples in code.
func Float(v float64) *float64 {
	return &v
}
