package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iliyamo/lesson-scheduler/internal/model"
)

// Client calls the lesson API with a bearer token.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

// New returns a Client for the API rooted at baseURL.
func New(baseURL, token string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 15 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

// CreateRequest mirrors the body of POST /v1/lessons.
type CreateRequest struct {
	Lesson       LessonTemplate `json:"lesson"`
	RepeatWeekly *bool          `json:"repeatWeekly,omitempty"`
	Weeks        *int           `json:"weeks,omitempty"`
}

// LessonTemplate is the lesson part of a CreateRequest.
type LessonTemplate struct {
	ID            string           `json:"id,omitempty"`
	TeacherID     string           `json:"teacherId"`
	StudentID     string           `json:"studentId"`
	Date          string           `json:"date"`
	TimeSlot      string           `json:"timeSlot"`
	Type          model.LessonType `json:"type,omitempty"`
	SessionNumber int              `json:"sessionNumber,omitempty"`
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("lesson api: status %d: %s", e.Code, e.Body)
}

// CreateLessons books req and returns the lessons the server created,
// whichever response shape it chose.
func (c *Client) CreateLessons(ctx context.Context, req CreateRequest) ([]model.Lesson, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/lessons", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	return DecodeCreated(raw)
}
