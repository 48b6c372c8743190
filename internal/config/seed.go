package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/iliyamo/lesson-scheduler/internal/model"
)

// SeedStudent is the YAML form of a student.  total_sessions may be left
// out for an unbounded package.
type SeedStudent struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name"`
	TotalSessions  *int   `yaml:"total_sessions"`
	CurrentSession int    `yaml:"current_session"`
	HasPaid        bool   `yaml:"has_paid"`
	MakeupLessons  int    `yaml:"makeup_lessons"`
}

// Seed is the catalog file loaded into empty collections at startup.
type Seed struct {
	Teachers  []model.Teacher `yaml:"teachers"`
	Students  []SeedStudent   `yaml:"students"`
	TimeSlots []string        `yaml:"time_slots"`
}

// LoadSeed reads and parses a seed catalog.
func LoadSeed(path string) (*Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	var s Seed
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}
	for i, t := range s.Teachers {
		if t.ID == "" || t.Name == "" {
			return nil, fmt.Errorf("seed %s: teacher #%d needs id and name", path, i+1)
		}
	}
	for i, st := range s.Students {
		if st.ID == "" || st.Name == "" {
			return nil, fmt.Errorf("seed %s: student #%d needs id and name", path, i+1)
		}
	}
	return &s, nil
}

// StudentModels converts the seed students to stored students.
func (s *Seed) StudentModels() []model.Student {
	out := make([]model.Student, 0, len(s.Students))
	for _, st := range s.Students {
		out = append(out, model.Student{
			ID:             st.ID,
			Name:           st.Name,
			TotalSessions:  st.TotalSessions,
			CurrentSession: st.CurrentSession,
			HasPaid:        st.HasPaid,
			MakeupLessons:  st.MakeupLessons,
		})
	}
	return out
}
