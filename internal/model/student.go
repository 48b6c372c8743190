package model

// Student is a pupil holding a fixed-length lesson package.
//
// CurrentSession counts the regular sessions booked against the package so
// far.  It starts at 0 and never exceeds TotalSessions.  A nil
// TotalSessions means the package is unbounded.
type Student struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	TotalSessions  *int   `json:"totalSessions"`
	CurrentSession int    `json:"currentSession"`
	HasPaid        bool   `json:"hasPaid"`
	MakeupLessons  int    `json:"makeupLessons"`
}

// StudentPatch is a merge patch for a stored student.  ClearTotal turns the
// package into an unbounded one since a JSON null cannot be told apart from
// an absent field with a plain pointer.
type StudentPatch struct {
	ID             *string `json:"id,omitempty"`
	Name           *string `json:"name,omitempty"`
	TotalSessions  *int    `json:"totalSessions,omitempty"`
	ClearTotal     bool    `json:"clearTotal,omitempty"`
	CurrentSession *int    `json:"currentSession,omitempty"`
	HasPaid        *bool   `json:"hasPaid,omitempty"`
	MakeupLessons  *int    `json:"makeupLessons,omitempty"`
}

// Apply returns a copy of s with the patch merged in.  The id is kept.
func (p StudentPatch) Apply(s Student) Student {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.ClearTotal {
		s.TotalSessions = nil
	} else if p.TotalSessions != nil {
		total := *p.TotalSessions
		s.TotalSessions = &total
	}
	if p.CurrentSession != nil {
		s.CurrentSession = *p.CurrentSession
	}
	if p.HasPaid != nil {
		s.HasPaid = *p.HasPaid
	}
	if p.MakeupLessons != nil {
		s.MakeupLessons = *p.MakeupLessons
	}
	return s
}
