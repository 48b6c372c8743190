package model

// LessonType distinguishes package-consuming weekly lessons from one-off
// makeup lessons.
type LessonType string

const (
	LessonRegular LessonType = "regular" // recurring, advances the student's package
	LessonMakeup  LessonType = "makeup"  // one-off, never recurs and never advances the package
)

// Valid reports whether t is one of the known lesson types.
func (t LessonType) Valid() bool {
	return t == LessonRegular || t == LessonMakeup
}

// DateLayout is the naive calendar date format used for every lesson date.
const DateLayout = "2006-01-02"

// Lesson is one concrete dated booking of a teacher, a student and a time
// slot.  It is stored as an element of the "lessons" collection.
//
// Fields:
//
//	ID            – unique identifier.
//	TeacherID     – teacher slug the lesson is booked against.
//	StudentID     – student attending.
//	Date          – naive calendar date (YYYY-MM-DD).
//	TimeSlot      – key from the time slot catalog.
//	Type          – regular or makeup.
//	SessionNumber – the k-th session against the student's package.
//	SeriesID      – groups occurrences created by one recurrence request.
//	Cancelled     – cancelled lessons stay stored but are not live.
type Lesson struct {
	ID            string     `json:"id"`
	TeacherID     string     `json:"teacherId"`
	StudentID     string     `json:"studentId"`
	Date          string     `json:"date"`
	TimeSlot      string     `json:"timeSlot"`
	Type          LessonType `json:"type"`
	SessionNumber int        `json:"sessionNumber"`
	SeriesID      string     `json:"seriesId,omitempty"`
	Cancelled     bool       `json:"cancelled,omitempty"`
}

// SlotKey is the uniqueness key of a booking: one teacher can hold only one
// lesson per date and time slot.
type SlotKey struct {
	TeacherID string
	Date      string
	TimeSlot  string
}

// Key returns the slot key of l.
func (l Lesson) Key() SlotKey {
	return SlotKey{TeacherID: l.TeacherID, Date: l.Date, TimeSlot: l.TimeSlot}
}

// LessonPatch is a merge patch for a stored lesson.  Nil fields are left
// untouched.  ID is accepted so clients may echo the full record back, but
// it is never applied.
type LessonPatch struct {
	ID            *string     `json:"id,omitempty"`
	TeacherID     *string     `json:"teacherId,omitempty"`
	StudentID     *string     `json:"studentId,omitempty"`
	Date          *string     `json:"date,omitempty"`
	TimeSlot      *string     `json:"timeSlot,omitempty"`
	Type          *LessonType `json:"type,omitempty"`
	SessionNumber *int        `json:"sessionNumber,omitempty"`
	SeriesID      *string     `json:"seriesId,omitempty"`
	Cancelled     *bool       `json:"cancelled,omitempty"`
}

// Apply returns a copy of l with the patch merged in.  The id is kept.
func (p LessonPatch) Apply(l Lesson) Lesson {
	if p.TeacherID != nil {
		l.TeacherID = *p.TeacherID
	}
	if p.StudentID != nil {
		l.StudentID = *p.StudentID
	}
	if p.Date != nil {
		l.Date = *p.Date
	}
	if p.TimeSlot != nil {
		l.TimeSlot = *p.TimeSlot
	}
	if p.Type != nil {
		l.Type = *p.Type
	}
	if p.SessionNumber != nil {
		l.SessionNumber = *p.SessionNumber
	}
	if p.SeriesID != nil {
		l.SeriesID = *p.SeriesID
	}
	if p.Cancelled != nil {
		l.Cancelled = *p.Cancelled
	}
	return l
}
