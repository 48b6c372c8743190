package schedule

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/lesson-scheduler/internal/model"
	"github.com/iliyamo/lesson-scheduler/internal/repository"
)

// Catalog manages students, teachers and the time slot list.  Every
// mutation is admin only.
type Catalog struct {
	repos *repository.Repos
	log   *zap.Logger
}

// NewCatalog builds a Catalog over repos.
func NewCatalog(repos *repository.Repos, log *zap.Logger) *Catalog {
	if repos == nil {
		panic("nil repositories passed to schedule.NewCatalog")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{repos: repos, log: log}
}

// NewStudent is the body of a student create call.  Missing counters start
// at zero and a missing total means an unbounded package.
type NewStudent struct {
	ID             string `json:"id"`
	Name           string `json:"name" validate:"required"`
	TotalSessions  *int   `json:"totalSessions" validate:"omitempty,gte=1"`
	CurrentSession int    `json:"currentSession" validate:"gte=0"`
	HasPaid        bool   `json:"hasPaid"`
	MakeupLessons  int    `json:"makeupLessons" validate:"gte=0"`
}

// Students returns every stored student.
func (c *Catalog) Students(ctx context.Context) ([]model.Student, error) {
	return c.repos.Students.Load(ctx)
}

// CreateStudent adds a student.  A reused id fails with ErrConflict.
func (c *Catalog) CreateStudent(ctx context.Context, who model.Identity, in NewStudent) (model.Student, error) {
	if !who.IsAdmin {
		return model.Student{}, repository.ErrForbidden
	}
	in.ID = strings.TrimSpace(in.ID)
	in.Name = strings.TrimSpace(in.Name)
	if err := check(in); err != nil {
		return model.Student{}, err
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	st := model.Student{
		ID:             in.ID,
		Name:           in.Name,
		TotalSessions:  in.TotalSessions,
		CurrentSession: in.CurrentSession,
		HasPaid:        in.HasPaid,
		MakeupLessons:  in.MakeupLessons,
	}
	if err := checkProgress(st); err != nil {
		return model.Student{}, err
	}
	err := c.repos.Students.Mutate(ctx, func(items []model.Student) ([]model.Student, bool, error) {
		for _, s := range items {
			if s.ID == st.ID {
				return nil, false, repository.ErrConflict
			}
		}
		return append(items, st), true, nil
	})
	if err != nil {
		return model.Student{}, err
	}
	c.log.Info("student created", zap.String("student_id", st.ID))
	return st, nil
}

// UpdateStudent merges patch into the student with the given id.
func (c *Catalog) UpdateStudent(ctx context.Context, who model.Identity, id string, patch model.StudentPatch) (model.Student, error) {
	if !who.IsAdmin {
		return model.Student{}, repository.ErrForbidden
	}
	var updated model.Student
	err := c.repos.Students.Mutate(ctx, func(items []model.Student) ([]model.Student, bool, error) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			next := patch.Apply(items[i])
			if strings.TrimSpace(next.Name) == "" {
				return nil, false, &repository.ValidationError{Fields: []string{"name"}}
			}
			if err := checkProgress(next); err != nil {
				return nil, false, err
			}
			items[i] = next
			updated = next
			return items, true, nil
		}
		return nil, false, repository.ErrNotFound
	})
	if err != nil {
		return model.Student{}, err
	}
	c.log.Info("student updated", zap.String("student_id", id))
	return updated, nil
}

// DeleteStudent removes a student.  Their lessons stay booked.
func (c *Catalog) DeleteStudent(ctx context.Context, who model.Identity, id string) (model.Student, error) {
	if !who.IsAdmin {
		return model.Student{}, repository.ErrForbidden
	}
	var removed model.Student
	err := c.repos.Students.Mutate(ctx, func(items []model.Student) ([]model.Student, bool, error) {
		for i := range items {
			if items[i].ID == id {
				removed = items[i]
				next := append([]model.Student{}, items[:i]...)
				return append(next, items[i+1:]...), true, nil
			}
		}
		return nil, false, repository.ErrNotFound
	})
	if err != nil {
		return model.Student{}, err
	}
	c.log.Info("student deleted", zap.String("student_id", id))
	return removed, nil
}

// checkProgress enforces 0 <= currentSession <= totalSessions.
func checkProgress(s model.Student) error {
	var fields []string
	if s.TotalSessions != nil && *s.TotalSessions < 1 {
		fields = append(fields, "totalSessions")
	}
	if s.CurrentSession < 0 || (s.TotalSessions != nil && s.CurrentSession > *s.TotalSessions) {
		fields = append(fields, "currentSession")
	}
	if s.MakeupLessons < 0 {
		fields = append(fields, "makeupLessons")
	}
	if len(fields) > 0 {
		return &repository.ValidationError{Fields: fields}
	}
	return nil
}

// Teachers returns the teacher catalog.
func (c *Catalog) Teachers(ctx context.Context) ([]model.Teacher, error) {
	return c.repos.Teachers.Load(ctx)
}

type newTeacher struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

// CreateTeacher adds a teacher.  The id is the slug teachers log in with.
func (c *Catalog) CreateTeacher(ctx context.Context, who model.Identity, t model.Teacher) (model.Teacher, error) {
	if !who.IsAdmin {
		return model.Teacher{}, repository.ErrForbidden
	}
	t.ID = strings.TrimSpace(t.ID)
	t.Name = strings.TrimSpace(t.Name)
	if err := check(newTeacher{ID: t.ID, Name: t.Name}); err != nil {
		return model.Teacher{}, err
	}
	err := c.repos.Teachers.Mutate(ctx, func(items []model.Teacher) ([]model.Teacher, bool, error) {
		for _, x := range items {
			if x.ID == t.ID {
				return nil, false, repository.ErrConflict
			}
		}
		return append(items, t), true, nil
	})
	if err != nil {
		return model.Teacher{}, err
	}
	c.log.Info("teacher created", zap.String("teacher_id", t.ID))
	return t, nil
}

// DeleteTeacher removes a teacher from the catalog.  Booked lessons are not
// touched.
func (c *Catalog) DeleteTeacher(ctx context.Context, who model.Identity, id string) (model.Teacher, error) {
	if !who.IsAdmin {
		return model.Teacher{}, repository.ErrForbidden
	}
	var removed model.Teacher
	err := c.repos.Teachers.Mutate(ctx, func(items []model.Teacher) ([]model.Teacher, bool, error) {
		for i := range items {
			if items[i].ID == id {
				removed = items[i]
				next := append([]model.Teacher{}, items[:i]...)
				return append(next, items[i+1:]...), true, nil
			}
		}
		return nil, false, repository.ErrNotFound
	})
	if err != nil {
		return model.Teacher{}, err
	}
	c.log.Info("teacher deleted", zap.String("teacher_id", id))
	return removed, nil
}

// TimeSlots returns the ordered time slot catalog.
func (c *Catalog) TimeSlots(ctx context.Context) ([]string, error) {
	return c.repos.TimeSlots.Load(ctx)
}

// ReplaceTimeSlots overwrites the slot list.  Entries are trimmed and
// duplicates dropped, keeping the first position.
func (c *Catalog) ReplaceTimeSlots(ctx context.Context, who model.Identity, slots []string) ([]string, error) {
	if !who.IsAdmin {
		return nil, repository.ErrForbidden
	}
	clean, err := normalizeSlots(slots)
	if err != nil {
		return nil, err
	}
	if err := c.repos.TimeSlots.Replace(ctx, clean); err != nil {
		return nil, err
	}
	c.log.Info("time slots replaced", zap.Int("count", len(clean)))
	return clean, nil
}

func normalizeSlots(slots []string) ([]string, error) {
	seen := make(map[string]struct{}, len(slots))
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, &repository.ValidationError{Fields: []string{"timeSlots"}}
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}

// Seed fills every empty collection from the seed catalog.  Non-empty
// collections are never touched, so restarts are harmless.
func (c *Catalog) Seed(ctx context.Context, teachers []model.Teacher, students []model.Student, slots []string) error {
	if len(teachers) > 0 {
		if err := c.repos.Teachers.Mutate(ctx, func(items []model.Teacher) ([]model.Teacher, bool, error) {
			if len(items) > 0 {
				return nil, false, nil
			}
			return teachers, true, nil
		}); err != nil {
			return err
		}
	}
	if len(students) > 0 {
		for _, s := range students {
			if err := checkProgress(s); err != nil {
				return err
			}
		}
		if err := c.repos.Students.Mutate(ctx, func(items []model.Student) ([]model.Student, bool, error) {
			if len(items) > 0 {
				return nil, false, nil
			}
			return students, true, nil
		}); err != nil {
			return err
		}
	}
	if len(slots) > 0 {
		clean, err := normalizeSlots(slots)
		if err != nil {
			return err
		}
		if err := c.repos.TimeSlots.Mutate(ctx, func(items []string) ([]string, bool, error) {
			if len(items) > 0 {
				return nil, false, nil
			}
			return clean, true, nil
		}); err != nil {
			return err
		}
	}
	c.log.Info("seed catalog applied",
		zap.Int("teachers", len(teachers)),
		zap.Int("students", len(students)),
		zap.Int("time_slots", len(slots)))
	return nil
}
