// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

// Queue and action names for lesson change events.
const (
	LessonsQueueName = "lessons.changed"

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// LessonEvent is published after a lesson write has been committed.  One
// create request publishes a single event listing every booked occurrence.
type LessonEvent struct {
	Action     string   `json:"action"`
	ActorID    string   `json:"actor_id"`
	TeacherID  string   `json:"teacher_id"`
	StudentID  string   `json:"student_id"`
	SeriesID   string   `json:"series_id,omitempty"`
	LessonIDs  []string `json:"lesson_ids"`
	Dates      []string `json:"dates"`
	TimeSlot   string   `json:"time_slot"`
	OccurredAt string   `json:"occurred_at"`
}
