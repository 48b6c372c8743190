// Package schedule books weekly lessons.  It expands a lesson template
// into dated occurrences, drops the ones whose teacher slot is already
// taken and advances the student's package counter by what was booked.
package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/lesson-scheduler/internal/model"
	"github.com/iliyamo/lesson-scheduler/internal/queue"
	"github.com/iliyamo/lesson-scheduler/internal/repository"
)

// Publisher receives lesson change events once a write is committed.
type Publisher interface {
	PublishLessonEvent(ctx context.Context, ev queue.LessonEvent) error
}

// Scheduler owns every lesson mutation.
type Scheduler struct {
	repos        *repository.Repos
	events       Publisher
	log          *zap.Logger
	defaultWeeks int
	newID        func() string
	now          func() time.Time
}

// Option customises a Scheduler.
type Option func(*Scheduler)

// WithPublisher sends lesson change events to p.
func WithPublisher(p Publisher) Option { return func(s *Scheduler) { s.events = p } }

// WithDefaultWeeks changes the week count used when a request names none.
func WithDefaultWeeks(w int) Option {
	return func(s *Scheduler) {
		if w > 0 {
			s.defaultWeeks = ClampWeeks(w)
		}
	}
}

// WithIDGenerator replaces the UUID generator for lessons sent without an id.
func WithIDGenerator(f func() string) Option { return func(s *Scheduler) { s.newID = f } }

// New builds a Scheduler over repos.
func New(repos *repository.Repos, log *zap.Logger, opts ...Option) *Scheduler {
	if repos == nil {
		panic("nil repositories passed to schedule.New")
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Scheduler{
		repos:        repos,
		log:          log,
		defaultWeeks: DefaultWeeks,
		newID:        uuid.NewString,
		now:          time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CreateRequest is the body of a lesson create call.
type CreateRequest struct {
	Lesson       Template `json:"lesson"`
	RepeatWeekly *bool    `json:"repeatWeekly,omitempty"`
	Weeks        *int     `json:"weeks,omitempty"`
}

// CreateResult lists the booked occurrences and the verdict for every
// generated candidate.
type CreateResult struct {
	Created  []model.Lesson
	Outcomes []Result
}

// Create books the occurrences described by req.  Duplicate slots are
// skipped silently.  When the lessons are regular the student's counter
// is advanced afterwards on a best-effort basis.
func (s *Scheduler) Create(ctx context.Context, who model.Identity, req CreateRequest) (*CreateResult, error) {
	if !who.IsAdmin && who.TeacherSlug == "" {
		return nil, repository.ErrForbidden
	}
	t := req.Lesson
	t.normalize()
	if err := check(t); err != nil {
		return nil, err
	}
	if !who.CanManageTeacher(t.TeacherID) {
		return nil, repository.ErrForbidden
	}
	if t.ID == "" {
		t.ID = s.newID()
	}

	plan := PlanFor(t, req.RepeatWeekly, req.Weeks, s.defaultWeeks)
	progress := 0
	if t.SessionNumber <= 0 {
		progress = s.progressOf(ctx, t.StudentID)
	}
	candidates, err := Generate(t, plan, progress)
	if err != nil {
		return nil, err
	}

	var accepted []model.Lesson
	var results []Result
	err = s.repos.Lessons.Mutate(ctx, func(items []model.Lesson) ([]model.Lesson, bool, error) {
		accepted, results = FilterCandidates(items, candidates)
		if len(accepted) == 0 {
			return nil, false, nil
		}
		return append(items, accepted...), true, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("lessons created",
		zap.String("teacher_id", t.TeacherID),
		zap.String("student_id", t.StudentID),
		zap.String("type", string(t.Type)),
		zap.Int("requested", len(candidates)),
		zap.Int("created", len(accepted)))

	if t.Type == model.LessonRegular && len(accepted) > 0 {
		s.advanceLedger(ctx, t.StudentID, len(accepted))
	}
	if len(accepted) > 0 {
		s.publish(ctx, lessonsEvent(queue.ActionCreated, who, accepted, s.now()))
	}
	return &CreateResult{Created: accepted, Outcomes: results}, nil
}

// progressOf returns the student's package counter, or 0 when it cannot be
// read.
func (s *Scheduler) progressOf(ctx context.Context, studentID string) int {
	students, err := s.repos.Students.Load(ctx)
	if err != nil {
		s.log.Warn("student lookup failed, numbering from 1",
			zap.String("student_id", studentID), zap.Error(err))
		return 0
	}
	for _, st := range students {
		if st.ID == studentID {
			return st.CurrentSession
		}
	}
	return 0
}

// advanceLedger is a soft side effect: the lessons are already committed,
// so a missing student or an unavailable store is only logged.
func (s *Scheduler) advanceLedger(ctx context.Context, studentID string, booked int) {
	err := s.repos.Students.Mutate(ctx, func(items []model.Student) ([]model.Student, bool, error) {
		for i := range items {
			if items[i].ID != studentID {
				continue
			}
			next, changed := Advance(items[i], booked)
			if !changed {
				return nil, false, nil
			}
			items[i] = next
			return items, true, nil
		}
		s.log.Debug("ledger skipped, student not found", zap.String("student_id", studentID))
		return nil, false, nil
	})
	if err != nil {
		s.log.Warn("ledger update skipped", zap.String("student_id", studentID), zap.Error(err))
	}
}

// Filter narrows List results.  From/To form an inclusive range and take
// precedence over Date.
type Filter struct {
	TeacherID string
	Date      string
	From      string
	To        string
}

// List returns the stored lessons matching f.
func (s *Scheduler) List(ctx context.Context, f Filter) ([]model.Lesson, error) {
	var bad []string
	for _, p := range [][2]string{{"date", f.Date}, {"from", f.From}, {"to", f.To}} {
		if p[1] != "" && !isDate(p[1]) {
			bad = append(bad, p[0])
		}
	}
	if len(bad) > 0 {
		return nil, &repository.ValidationError{Fields: bad}
	}

	items, err := s.repos.Lessons.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Lesson, 0, len(items))
	for _, l := range items {
		if f.matches(l) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f Filter) matches(l model.Lesson) bool {
	if f.TeacherID != "" && l.TeacherID != f.TeacherID {
		return false
	}
	if f.From != "" || f.To != "" {
		// naive dates compare correctly as strings
		if f.From != "" && l.Date < f.From {
			return false
		}
		if f.To != "" && l.Date > f.To {
			return false
		}
		return true
	}
	if f.Date != "" && l.Date != f.Date {
		return false
	}
	return true
}

// Update merges patch into the lesson with the given id.  Rescheduling or
// un-cancelling into a slot held by another live lesson fails with
// ErrConflict.
func (s *Scheduler) Update(ctx context.Context, who model.Identity, id string, patch model.LessonPatch) (model.Lesson, error) {
	if !who.IsAdmin && who.TeacherSlug == "" {
		return model.Lesson{}, repository.ErrForbidden
	}
	var updated model.Lesson
	err := s.repos.Lessons.Mutate(ctx, func(items []model.Lesson) ([]model.Lesson, bool, error) {
		idx := indexOf(items, id)
		if idx < 0 {
			return nil, false, repository.ErrNotFound
		}
		cur := items[idx]
		next := patch.Apply(cur)
		if next.Type == "" {
			next.Type = model.LessonRegular
		}
		if !who.CanManageTeacher(cur.TeacherID) || !who.CanManageTeacher(next.TeacherID) {
			return nil, false, repository.ErrForbidden
		}
		if err := validateLesson(next); err != nil {
			return nil, false, err
		}
		if !next.Cancelled && slotHeldByOther(items, idx, next.Key()) {
			return nil, false, repository.ErrConflict
		}
		items[idx] = next
		updated = next
		return items, true, nil
	})
	if err != nil {
		return model.Lesson{}, err
	}
	s.log.Info("lesson updated", zap.String("lesson_id", id), zap.String("teacher_id", updated.TeacherID))
	s.publish(ctx, lessonsEvent(queue.ActionUpdated, who, []model.Lesson{updated}, s.now()))
	return updated, nil
}

// Delete removes one lesson.  Siblings sharing its series stay.
func (s *Scheduler) Delete(ctx context.Context, who model.Identity, id string) (model.Lesson, error) {
	if !who.IsAdmin && who.TeacherSlug == "" {
		return model.Lesson{}, repository.ErrForbidden
	}
	var removed model.Lesson
	err := s.repos.Lessons.Mutate(ctx, func(items []model.Lesson) ([]model.Lesson, bool, error) {
		idx := indexOf(items, id)
		if idx < 0 {
			return nil, false, repository.ErrNotFound
		}
		if !who.CanManageTeacher(items[idx].TeacherID) {
			return nil, false, repository.ErrForbidden
		}
		removed = items[idx]
		next := make([]model.Lesson, 0, len(items)-1)
		next = append(next, items[:idx]...)
		next = append(next, items[idx+1:]...)
		return next, true, nil
	})
	if err != nil {
		return model.Lesson{}, err
	}
	s.log.Info("lesson deleted", zap.String("lesson_id", id), zap.String("teacher_id", removed.TeacherID))
	s.publish(ctx, lessonsEvent(queue.ActionDeleted, who, []model.Lesson{removed}, s.now()))
	return removed, nil
}

func (s *Scheduler) publish(ctx context.Context, ev queue.LessonEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishLessonEvent(ctx, ev); err != nil {
		s.log.Warn("lesson event not published", zap.String("action", ev.Action), zap.Error(err))
	}
}

func lessonsEvent(action string, who model.Identity, lessons []model.Lesson, at time.Time) queue.LessonEvent {
	first := lessons[0]
	ev := queue.LessonEvent{
		Action:     action,
		ActorID:    who.Subject,
		TeacherID:  first.TeacherID,
		StudentID:  first.StudentID,
		SeriesID:   first.SeriesID,
		TimeSlot:   first.TimeSlot,
		OccurredAt: at.UTC().Format(time.RFC3339),
	}
	for _, l := range lessons {
		ev.LessonIDs = append(ev.LessonIDs, l.ID)
		ev.Dates = append(ev.Dates, l.Date)
	}
	return ev
}

func indexOf(items []model.Lesson, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func slotHeldByOther(items []model.Lesson, self int, key model.SlotKey) bool {
	for i, l := range items {
		if i != self && !l.Cancelled && l.Key() == key {
			return true
		}
	}
	return false
}

// storedLesson mirrors model.Lesson with the rules a patched lesson must
// still satisfy.
type storedLesson struct {
	TeacherID     string           `json:"teacherId" validate:"required"`
	StudentID     string           `json:"studentId" validate:"required"`
	Date          string           `json:"date" validate:"required,naivedate"`
	TimeSlot      string           `json:"timeSlot" validate:"required"`
	Type          model.LessonType `json:"type" validate:"oneof=regular makeup"`
	SessionNumber int              `json:"sessionNumber" validate:"gte=1"`
}

func validateLesson(l model.Lesson) error {
	return check(storedLesson{
		TeacherID:     l.TeacherID,
		StudentID:     l.StudentID,
		Date:          l.Date,
		TimeSlot:      l.TimeSlot,
		Type:          l.Type,
		SessionNumber: l.SessionNumber,
	})
}

