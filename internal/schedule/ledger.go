package schedule

import "github.com/iliyamo/lesson-scheduler/internal/model"

// Advance moves the student's package counter forward by the number of
// regular occurrences that were actually booked, capped at the package
// size.  The counter never moves backwards, even when an admin left it
// above the cap.  It reports whether the student changed.
func Advance(s model.Student, booked int) (model.Student, bool) {
	if booked <= 0 {
		return s, false
	}
	next := s.CurrentSession + booked
	if s.TotalSessions != nil && next > *s.TotalSessions {
		next = *s.TotalSessions
	}
	if next <= s.CurrentSession {
		return s, false
	}
	s.CurrentSession = next
	return s, true
}
