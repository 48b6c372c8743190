package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWriteLine(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, WriteLine(&sb, LessonEvent{
		Action:     ActionCreated,
		ActorID:    "admin",
		TeacherID:  "t1",
		StudentID:  "s1",
		SeriesID:   "series_l1",
		LessonIDs:  []string{"l1", "l1_1"},
		Dates:      []string{"2025-01-06", "2025-01-13"},
		TimeSlot:   "16:00",
		OccurredAt: "2025-01-01T10:00:00Z",
	}))
	assert.Equal(t,
		"[2025-01-01T10:00:00Z] Lessons created | actor=admin | teacher=t1 | student=s1 | series=series_l1 | slot=16:00 | ids=[l1,l1_1] | dates=[2025-01-06,2025-01-13]\n",
		sb.String())
}

func TestHandleAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "lessons.log")
	c := NewConsumer("", path, zap.NewNop())

	for _, action := range []string{ActionCreated, ActionDeleted} {
		body, err := json.Marshal(LessonEvent{Action: action, LessonIDs: []string{"l1"}})
		require.NoError(t, err)
		require.NoError(t, c.Handle(body))
	}

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Lessons created")
	assert.Contains(t, lines[1], "Lessons deleted")
	assert.Contains(t, lines[1], "series=-")
}

func TestHandleRejectsGarbage(t *testing.T) {
	c := NewConsumer("", filepath.Join(t.TempDir(), "l.log"), zap.NewNop())
	assert.Error(t, c.Handle([]byte("{not json")))
}

func TestNewConsumerDefaultPath(t *testing.T) {
	assert.Equal(t, filepath.Join("logs", "lessons.log"), NewConsumer("amqp://x", "", zap.NewNop()).LogPath)
}
