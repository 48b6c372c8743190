// Package client holds helpers for programs that call the lesson API.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iliyamo/lesson-scheduler/internal/model"
)

// ErrUnknownShape is returned when a create response is neither a JSON
// array nor an object with a "created" array.
var ErrUnknownShape = errors.New("unrecognised create response")

type wrapped struct {
	CreatedCount *int            `json:"createdCount"`
	Created      *[]model.Lesson `json:"created"`
}

// DecodeCreated extracts the booked lessons from a POST /v1/lessons body.
// It accepts the flat array and the {createdCount, created} object.
func DecodeCreated(body []byte) ([]model.Lesson, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, ErrUnknownShape
	}
	switch trimmed[0] {
	case '[':
		var flat []model.Lesson
		if err := json.Unmarshal(trimmed, &flat); err != nil {
			return nil, fmt.Errorf("decode created list: %w", err)
		}
		return flat, nil
	case '{':
		var w wrapped
		if err := json.Unmarshal(trimmed, &w); err != nil {
			return nil, fmt.Errorf("decode created object: %w", err)
		}
		if w.Created == nil {
			return nil, ErrUnknownShape
		}
		if w.CreatedCount != nil && *w.CreatedCount != len(*w.Created) {
			return nil, fmt.Errorf("createdCount %d does not match %d lessons", *w.CreatedCount, len(*w.Created))
		}
		return *w.Created, nil
	default:
		return nil, ErrUnknownShape
	}
}
