package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain file", "quiz.db", "quiz.db?_foreign_keys=1"},
		{"with params", "file:test?mode=memory&cache=shared", "file:test?mode=memory&cache=shared&_foreign_keys=1"},
		{"explicit setting kept", "quiz.db?_foreign_keys=0", "quiz.db?_foreign_keys=0"},
		{"short form kept", "quiz.db?_fk=1", "quiz.db?_fk=1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sqliteDSN(tt.in))
		})
	}
}

func TestSQLiteDSN_EmptyGivesSeparateMemoryDatabases(t *testing.T) {
	first := sqliteDSN("")
	second := sqliteDSN("")

	assert.NotEqual(t, first, second)
	for _, dsn := range []string{first, second} {
		assert.True(t, strings.HasPrefix(dsn, "file:quiz-"), dsn)
		assert.Contains(t, dsn, "mode=memory")
		assert.Contains(t, dsn, "_foreign_keys=1")
	}
}
