package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/lesson-scheduler/internal/model"
	"github.com/iliyamo/lesson-scheduler/internal/queue"
	"github.com/iliyamo/lesson-scheduler/internal/repository"
	"github.com/iliyamo/lesson-scheduler/internal/store"
)

var (
	admin   = model.Identity{Subject: "owner", IsAdmin: true}
	teacher = model.Identity{Subject: "bardia@example.com", TeacherSlug: "t1"}
	nobody  = model.Identity{Subject: "guest"}
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.LessonEvent
	err    error
}

func (p *recordingPublisher) PublishLessonEvent(_ context.Context, ev queue.LessonEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

// flakyKV fails every call on the listed keys.
type flakyKV struct {
	*store.Memory
	down map[string]bool
}

var errDown = errors.New("connection refused")

func (f *flakyKV) Get(ctx context.Context, key string) ([]byte, error) {
	if f.down[key] {
		return nil, errDown
	}
	return f.Memory.Get(ctx, key)
}

func (f *flakyKV) Update(ctx context.Context, key string, fn store.UpdateFunc) error {
	if f.down[key] {
		return errDown
	}
	return f.Memory.Update(ctx, key, fn)
}

func newTestScheduler(t *testing.T, kv store.KV, pub Publisher) (*Scheduler, *repository.Repos) {
	t.Helper()
	repos := repository.New(kv)
	opts := []Option{}
	if pub != nil {
		opts = append(opts, WithPublisher(pub))
	}
	return New(repos, nil, opts...), repos
}

func seedStudent(t *testing.T, repos *repository.Repos, st model.Student) {
	t.Helper()
	require.NoError(t, repos.Students.Replace(context.Background(), []model.Student{st}))
}

func studentByID(t *testing.T, repos *repository.Repos, id string) model.Student {
	t.Helper()
	items, err := repos.Students.Load(context.Background())
	require.NoError(t, err)
	for _, s := range items {
		if s.ID == id {
			return s
		}
	}
	t.Fatalf("student %s not stored", id)
	return model.Student{}
}

func exampleRequest() CreateRequest {
	return CreateRequest{
		Lesson:       regularTemplate(),
		RepeatWeekly: boolp(true),
		Weeks:        intp(3),
	}
}

func TestCreateWeeklyAdvancesLedger(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	s, repos := newTestScheduler(t, store.NewMemory(), pub)
	seedStudent(t, repos, model.Student{ID: "s1", Name: "Ava", TotalSessions: intp(8)})

	res, err := s.Create(ctx, admin, exampleRequest())
	require.NoError(t, err)
	require.Len(t, res.Created, 3)
	assert.Equal(t, []string{"2025-01-06", "2025-01-13", "2025-01-20"},
		[]string{res.Created[0].Date, res.Created[1].Date, res.Created[2].Date})
	assert.Equal(t, []int{1, 2, 3},
		[]int{res.Created[0].SessionNumber, res.Created[1].SessionNumber, res.Created[2].SessionNumber})
	assert.Equal(t, 3, studentByID(t, repos, "s1").CurrentSession)

	require.Len(t, pub.events, 1)
	assert.Equal(t, queue.ActionCreated, pub.events[0].Action)
	assert.Equal(t, []string{"l1", "l1_1", "l1_2"}, pub.events[0].LessonIDs)
	assert.Equal(t, "owner", pub.events[0].ActorID)
}

func TestCreateRetryIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, repos := newTestScheduler(t, store.NewMemory(), nil)
	seedStudent(t, repos, model.Student{ID: "s1", Name: "Ava", TotalSessions: intp(8)})

	_, err := s.Create(ctx, admin, exampleRequest())
	require.NoError(t, err)

	res, err := s.Create(ctx, admin, exampleRequest())
	require.NoError(t, err)
	assert.Empty(t, res.Created)
	require.Len(t, res.Outcomes, 3)
	for _, o := range res.Outcomes {
		assert.Equal(t, Skipped, o.Outcome)
	}

	all, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, 3, studentByID(t, repos, "s1").CurrentSession)
}

func TestCreateRetryFillsMissingSlots(t *testing.T) {
	ctx := context.Background()
	s, repos := newTestScheduler(t, store.NewMemory(), nil)
	// another student already holds the teacher's second week
	require.NoError(t, repos.Lessons.Replace(ctx, []model.Lesson{lesson("other", "t1", "s2", "2025-01-13", "16:00")}))

	res, err := s.Create(ctx, admin, exampleRequest())
	require.NoError(t, err)
	assert.Equal(t, []string{"l1", "l1_2"}, ids(res.Created))

	// once the blocking lesson is gone, the same request books only the gap
	_, err = s.Delete(ctx, admin, "other")
	require.NoError(t, err)
	res, err = s.Create(ctx, admin, exampleRequest())
	require.NoError(t, err)
	assert.Equal(t, []string{"l1_1"}, ids(res.Created))
}

func TestCreateMakeupKeepsLedger(t *testing.T) {
	ctx := context.Background()
	s, repos := newTestScheduler(t, store.NewMemory(), nil)
	seedStudent(t, repos, model.Student{ID: "s1", Name: "Ava", TotalSessions: intp(8), CurrentSession: 2})

	req := exampleRequest()
	req.Lesson.Type = model.LessonMakeup
	req.Weeks = intp(10)

	res, err := s.Create(ctx, admin, req)
	require.NoError(t, err)
	require.Len(t, res.Created, 1)
	assert.Equal(t, 2, res.Created[0].SessionNumber)
	assert.Empty(t, res.Created[0].SeriesID)
	assert.Equal(t, 2, studentByID(t, repos, "s1").CurrentSession)
}

func TestCreateNeverExceedsPackage(t *testing.T) {
	ctx := context.Background()
	s, repos := newTestScheduler(t, store.NewMemory(), nil)
	seedStudent(t, repos, model.Student{ID: "s1", Name: "Ava", TotalSessions: intp(4)})

	for i, date := range []string{"2025-01-06", "2025-01-07", "2025-01-08"} {
		req := exampleRequest()
		req.Lesson.ID = "l" + date
		req.Lesson.Date = date
		_, err := s.Create(ctx, admin, req)
		require.NoError(t, err, "round %d", i)
		assert.LessOrEqual(t, studentByID(t, repos, "s1").CurrentSession, 4)
	}
	assert.Equal(t, 4, studentByID(t, repos, "s1").CurrentSession)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	s, repos := newTestScheduler(t, store.NewMemory(), nil)

	req := CreateRequest{Lesson: Template{ID: "l1", TeacherID: "t1", Date: "06/01/2025"}}
	_, err := s.Create(ctx, admin, req)
	require.ErrorIs(t, err, repository.ErrValidation)
	var ve *repository.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.ElementsMatch(t, []string{"studentId", "date", "timeSlot"}, ve.Fields)

	req = exampleRequest()
	req.Lesson.Type = "trial"
	_, err = s.Create(ctx, admin, req)
	assert.ErrorIs(t, err, repository.ErrValidation)

	all, err := repos.Lessons.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateAuthorization(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestScheduler(t, store.NewMemory(), nil)

	_, err := s.Create(ctx, nobody, exampleRequest())
	assert.ErrorIs(t, err, repository.ErrForbidden)

	req := exampleRequest()
	req.Lesson.TeacherID = "t2"
	_, err = s.Create(ctx, teacher, req)
	assert.ErrorIs(t, err, repository.ErrForbidden)

	res, err := s.Create(ctx, teacher, exampleRequest())
	require.NoError(t, err)
	assert.Len(t, res.Created, 3)
}

func TestCreateGeneratesIDAndDefaults(t *testing.T) {
	ctx := context.Background()
	repos := repository.New(store.NewMemory())
	s := New(repos, nil, WithIDGenerator(func() string { return "gen" }), WithDefaultWeeks(2))

	req := CreateRequest{Lesson: regularTemplate()}
	req.Lesson.ID = ""
	req.Lesson.Type = ""
	res, err := s.Create(ctx, admin, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"gen", "gen_1"}, ids(res.Created))
	assert.Equal(t, model.LessonRegular, res.Created[0].Type)
	assert.Equal(t, "series_gen", res.Created[1].SeriesID)
}

func TestCreateLedgerIsBestEffort(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{Memory: store.NewMemory(), down: map[string]bool{repository.KeyStudents: true}}
	s, _ := newTestScheduler(t, kv, nil)

	res, err := s.Create(ctx, admin, exampleRequest())
	require.NoError(t, err)
	assert.Len(t, res.Created, 3)
	assert.Equal(t, 1, res.Created[0].SessionNumber)
}

func TestCreateUnknownStudentStillBooks(t *testing.T) {
	ctx := context.Background()
	s, repos := newTestScheduler(t, store.NewMemory(), nil)
	seedStudent(t, repos, model.Student{ID: "s9", Name: "Other"})

	res, err := s.Create(ctx, admin, exampleRequest())
	require.NoError(t, err)
	assert.Len(t, res.Created, 3)
	assert.Equal(t, 0, studentByID(t, repos, "s9").CurrentSession)
}

func TestCreateStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	kv := &flakyKV{Memory: store.NewMemory(), down: map[string]bool{repository.KeyLessons: true}}
	s, repos := newTestScheduler(t, kv, pub)
	seedStudent(t, repos, model.Student{ID: "s1", Name: "Ava"})

	_, err := s.Create(ctx, admin, exampleRequest())
	assert.ErrorIs(t, err, repository.ErrStoreUnavailable)
	assert.Equal(t, 0, studentByID(t, repos, "s1").CurrentSession)
	assert.Empty(t, pub.events)
}

func TestCreatePublishFailureIsIgnored(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	s, _ := newTestScheduler(t, store.NewMemory(), pub)

	res, err := s.Create(context.Background(), admin, exampleRequest())
	require.NoError(t, err)
	assert.Len(t, res.Created, 3)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s, repos := newTestScheduler(t, store.NewMemory(), nil)
	require.NoError(t, repos.Lessons.Replace(ctx, []model.Lesson{
		lesson("a", "t1", "s1", "2025-01-06", "16:00"),
		lesson("b", "t2", "s2", "2025-01-06", "17:00"),
		lesson("c", "t1", "s1", "2025-01-13", "16:00"),
		lesson("d", "t1", "s1", "2025-01-20", "16:00"),
	}))

	cases := []struct {
		name string
		f    Filter
		want []string
	}{
		{"everything", Filter{}, []string{"a", "b", "c", "d"}},
		{"teacher", Filter{TeacherID: "t1"}, []string{"a", "c", "d"}},
		{"date", Filter{Date: "2025-01-06"}, []string{"a", "b"}},
		{"range inclusive", Filter{From: "2025-01-06", To: "2025-01-13"}, []string{"a", "b", "c"}},
		{"range beats date", Filter{Date: "2025-01-06", From: "2025-01-13"}, []string{"c", "d"}},
		{"open start", Filter{To: "2025-01-06", TeacherID: "t2"}, []string{"b"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.List(ctx, tc.f)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(got))
		})
	}

	_, err := s.List(ctx, Filter{From: "last week"})
	var ve *repository.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"from"}, ve.Fields)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	s, repos := newTestScheduler(t, store.NewMemory(), pub)
	require.NoError(t, repos.Lessons.Replace(ctx, []model.Lesson{
		lesson("a", "t1", "s1", "2025-01-06", "16:00"),
		lesson("b", "t1", "s2", "2025-01-06", "17:00"),
	}))

	newID, slot := "hijack", "18:00"
	got, err := s.Update(ctx, teacher, "a", model.LessonPatch{ID: &newID, TimeSlot: &slot})
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)
	assert.Equal(t, "18:00", got.TimeSlot)
	require.Len(t, pub.events, 1)
	assert.Equal(t, queue.ActionUpdated, pub.events[0].Action)

	taken := "17:00"
	_, err = s.Update(ctx, admin, "a", model.LessonPatch{TimeSlot: &taken})
	assert.ErrorIs(t, err, repository.ErrConflict)

	// a cancelled lesson may sit on an occupied slot
	yes := true
	_, err = s.Update(ctx, admin, "a", model.LessonPatch{TimeSlot: &taken, Cancelled: &yes})
	require.NoError(t, err)

	_, err = s.Update(ctx, admin, "missing", model.LessonPatch{Cancelled: &yes})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	other := "t2"
	_, err = s.Update(ctx, teacher, "b", model.LessonPatch{TeacherID: &other})
	assert.ErrorIs(t, err, repository.ErrForbidden)

	bad := "Jan 6"
	_, err = s.Update(ctx, admin, "b", model.LessonPatch{Date: &bad})
	assert.ErrorIs(t, err, repository.ErrValidation)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestScheduler(t, store.NewMemory(), nil)
	_, err := s.Create(ctx, admin, exampleRequest())
	require.NoError(t, err)

	removed, err := s.Delete(ctx, admin, "l1_1")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-13", removed.Date)

	left, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"l1", "l1_2"}, ids(left))

	_, err = s.Delete(ctx, admin, "l1_1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	left, _ = s.List(ctx, Filter{})
	assert.Len(t, left, 2)

	_, err = s.Delete(ctx, model.Identity{TeacherSlug: "t2"}, "l1")
	assert.ErrorIs(t, err, repository.ErrForbidden)
}

func TestConcurrentCreatesNeverDoubleBook(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestScheduler(t, store.NewMemory(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := exampleRequest()
			req.Lesson.ID = ""
			req.Lesson.StudentID = []string{"s1", "s2"}[i%2]
			_, err := s.Create(ctx, admin, req)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	all, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
