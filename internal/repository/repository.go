package repository

import (
	"github.com/iliyamo/lesson-scheduler/internal/model"
	"github.com/iliyamo/lesson-scheduler/internal/store"
)

// Repos bundles the four collections the dashboard keeps.
type Repos struct {
	Lessons   *Collection[model.Lesson]
	Students  *Collection[model.Student]
	Teachers  *Collection[model.Teacher]
	TimeSlots *Collection[string]
}

// New binds every collection to kv.
func New(kv store.KV) *Repos {
	if kv == nil {
		panic("nil store passed to repository.New")
	}
	return &Repos{
		Lessons:   NewCollection[model.Lesson](kv, KeyLessons),
		Students:  NewCollection[model.Student](kv, KeyStudents),
		Teachers:  NewCollection[model.Teacher](kv, KeyTeachers),
		TimeSlots: NewCollection[string](kv, KeyTimeSlots),
	}
}
