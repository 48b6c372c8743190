package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/lesson-scheduler/internal/model"
	"github.com/iliyamo/lesson-scheduler/internal/store"
)

type brokenKV struct{}

func (brokenKV) Get(context.Context, string) ([]byte, error)    { return nil, errors.New("dial tcp: refused") }
func (brokenKV) Set(context.Context, string, []byte) error      { return errors.New("dial tcp: refused") }
func (brokenKV) Update(context.Context, string, store.UpdateFunc) error {
	return errors.New("dial tcp: refused")
}

func TestCollectionRoundTrip(t *testing.T) {
	ctx := context.Background()
	repos := New(store.NewMemory())

	items, err := repos.Teachers.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, repos.Teachers.Replace(ctx, []model.Teacher{{ID: "bardia", Name: "Bardia"}}))
	items, err = repos.Teachers.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Teacher{{ID: "bardia", Name: "Bardia"}}, items)
}

func TestCollectionMutate(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	slots := NewCollection[string](kv, KeyTimeSlots)

	require.NoError(t, slots.Mutate(ctx, func(items []string) ([]string, bool, error) {
		return append(items, "16:00"), true, nil
	}))
	raw, _ := kv.Get(ctx, KeyTimeSlots)
	assert.JSONEq(t, `["16:00"]`, string(raw))

	// unchanged mutations leave the blob alone
	require.NoError(t, slots.Mutate(ctx, func(items []string) ([]string, bool, error) {
		return nil, false, nil
	}))
	raw, _ = kv.Get(ctx, KeyTimeSlots)
	assert.JSONEq(t, `["16:00"]`, string(raw))

	err := slots.Mutate(ctx, func(items []string) ([]string, bool, error) {
		return nil, false, ErrNotFound
	})
	assert.Equal(t, ErrNotFound, err)
}

func TestCollectionStoreFailure(t *testing.T) {
	ctx := context.Background()
	repos := New(brokenKV{})

	_, err := repos.Lessons.Load(ctx)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	err = repos.Lessons.Mutate(ctx, func(items []model.Lesson) ([]model.Lesson, bool, error) {
		return items, true, nil
	})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, repos.TimeSlots.Replace(ctx, []string{"16:00"}), ErrStoreUnavailable)
}

func TestCollectionCorruptBlob(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	require.NoError(t, kv.Set(ctx, KeyStudents, []byte(`{"not":"an array"}`)))

	_, err := New(kv).Students.Load(ctx)
	assert.Error(t, err)
}

func TestValidationErrorMatches(t *testing.T) {
	err := error(&ValidationError{Fields: []string{"teacherId", "date"}})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "validation failed: teacherId, date", err.Error())
}
