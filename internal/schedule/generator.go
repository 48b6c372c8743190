package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/iliyamo/lesson-scheduler/internal/model"
)

const (
	// MaxWeeks caps a weekly series at one year.
	MaxWeeks = 52
	// DefaultWeeks is used when a create request does not name a count.
	DefaultWeeks = 12
)

// Template is the lesson a create request asks to book, possibly weekly.
type Template struct {
	ID            string           `json:"id"`
	TeacherID     string           `json:"teacherId" validate:"required"`
	StudentID     string           `json:"studentId" validate:"required"`
	Date          string           `json:"date" validate:"required,naivedate"`
	TimeSlot      string           `json:"timeSlot" validate:"required"`
	Type          model.LessonType `json:"type,omitempty" validate:"omitempty,oneof=regular makeup"`
	SessionNumber int              `json:"sessionNumber,omitempty"`
}

func (t *Template) normalize() {
	t.ID = strings.TrimSpace(t.ID)
	t.TeacherID = strings.TrimSpace(t.TeacherID)
	t.StudentID = strings.TrimSpace(t.StudentID)
	t.Date = strings.TrimSpace(t.Date)
	t.TimeSlot = strings.TrimSpace(t.TimeSlot)
	if t.Type == "" {
		t.Type = model.LessonRegular
	}
}

// ClampWeeks forces a week count into [1, MaxWeeks].
func ClampWeeks(weeks int) int {
	if weeks < 1 {
		return 1
	}
	if weeks > MaxWeeks {
		return MaxWeeks
	}
	return weeks
}

// Plan is the resolved shape of one generation: how many weeks and whether
// the occurrences form a series.
type Plan struct {
	Repeat bool
	Weeks  int
}

// PlanFor resolves the repeat flag and week count of a request.  Regular
// lessons repeat unless told otherwise; makeup lessons never do.
func PlanFor(t Template, repeatWeekly *bool, weeks *int, defaultWeeks int) Plan {
	repeat := t.Type != model.LessonMakeup
	if repeatWeekly != nil {
		repeat = *repeatWeekly
	}
	if t.Type == model.LessonMakeup {
		repeat = false
	}
	if !repeat {
		return Plan{Repeat: false, Weeks: 1}
	}
	w := defaultWeeks
	if weeks != nil {
		w = *weeks
	}
	return Plan{Repeat: true, Weeks: ClampWeeks(w)}
}

// startSession picks the first session number of a generation: the
// template's own number, else the student's progress counter, else 1.
func startSession(t Template, progress int) int {
	if t.SessionNumber > 0 {
		return t.SessionNumber
	}
	if progress > 0 {
		return progress
	}
	return 1
}

// Generate expands t into plan.Weeks dated candidates one week apart.
// Dates are computed on naive UTC calendar days so no daylight saving
// shift can move an occurrence.  The template must already be validated.
func Generate(t Template, plan Plan, progress int) ([]model.Lesson, error) {
	start, err := time.ParseInLocation(model.DateLayout, t.Date, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", t.Date, err)
	}
	weeks := ClampWeeks(plan.Weeks)
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.WEEKLY,
		Count:   weeks,
		Dtstart: start,
	})
	if err != nil {
		return nil, fmt.Errorf("weekly rule: %w", err)
	}

	var seriesID string
	if plan.Repeat {
		seriesID = "series_" + t.ID
	}
	first := startSession(t, progress)

	dates := rule.All()
	out := make([]model.Lesson, 0, len(dates))
	for k, d := range dates {
		id := t.ID
		if k > 0 {
			id = fmt.Sprintf("%s_%d", t.ID, k)
		}
		session := first
		if t.Type == model.LessonRegular {
			session = first + k
		}
		out = append(out, model.Lesson{
			ID:            id,
			TeacherID:     t.TeacherID,
			StudentID:     t.StudentID,
			Date:          d.UTC().Format(model.DateLayout),
			TimeSlot:      t.TimeSlot,
			Type:          t.Type,
			SessionNumber: session,
			SeriesID:      seriesID,
		})
	}
	return out, nil
}
