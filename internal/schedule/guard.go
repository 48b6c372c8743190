package schedule

import "github.com/iliyamo/lesson-scheduler/internal/model"

// Outcome tells whether a generated candidate was booked.
type Outcome string

const (
	Accepted Outcome = "accepted"
	Skipped  Outcome = "skipped"
)

// Skip reasons.
const (
	ReasonSlotTaken = "slot taken"
	ReasonIDTaken   = "id taken"
)

// Result is the per-candidate verdict of the duplicate guard.
type Result struct {
	Lesson  model.Lesson `json:"lesson"`
	Outcome Outcome      `json:"outcome"`
	Reason  string       `json:"reason,omitempty"`
}

// Guard remembers every booked (teacher, date, slot) key and lesson id.
// Keys are matched without the student: one teacher cannot teach two
// students in the same slot.
type Guard struct {
	slots map[model.SlotKey]struct{}
	ids   map[string]struct{}
}

// NewGuard seeds a guard with the stored lessons, cancelled ones included,
// so a retried request never books a slot twice.
func NewGuard(existing []model.Lesson) *Guard {
	g := &Guard{
		slots: make(map[model.SlotKey]struct{}, len(existing)),
		ids:   make(map[string]struct{}, len(existing)),
	}
	for _, l := range existing {
		g.slots[l.Key()] = struct{}{}
		g.ids[l.ID] = struct{}{}
	}
	return g
}

// Admit books l when neither its slot nor its id is taken.  An admitted
// lesson blocks later candidates of the same batch right away.
func (g *Guard) Admit(l model.Lesson) (bool, string) {
	if _, ok := g.slots[l.Key()]; ok {
		return false, ReasonSlotTaken
	}
	if _, ok := g.ids[l.ID]; ok {
		return false, ReasonIDTaken
	}
	g.slots[l.Key()] = struct{}{}
	g.ids[l.ID] = struct{}{}
	return true, ""
}

// FilterCandidates runs candidates through a guard seeded with existing, in order.
func FilterCandidates(existing, candidates []model.Lesson) ([]model.Lesson, []Result) {
	g := NewGuard(existing)
	accepted := make([]model.Lesson, 0, len(candidates))
	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		ok, reason := g.Admit(c)
		if !ok {
			results = append(results, Result{Lesson: c, Outcome: Skipped, Reason: reason})
			continue
		}
		accepted = append(accepted, c)
		results = append(results, Result{Lesson: c, Outcome: Accepted})
	}
	return accepted, results
}
