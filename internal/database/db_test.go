package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettingsDSN(t *testing.T) {
	dsn := Settings{User: "sol", Pass: "secret", Host: "db", Port: "3306", Name: "lessons"}.DSN()
	assert.Contains(t, dsn, "sol:secret@tcp(db:3306)/lessons")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}
