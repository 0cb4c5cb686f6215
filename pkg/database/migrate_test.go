package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration_FirstInEmptyDir(t *testing.T) {
	dir := t.TempDir()

	up, down, err := CreateMigration(dir, "Add Topics")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "000001_add_topics.up.sql"), up)
	assert.Equal(t, filepath.Join(dir, "000001_add_topics.down.sql"), down)
	assert.FileExists(t, up)
	assert.FileExists(t, down)
}

func TestCreateMigration_NextNumber(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"000001_init.up.sql", "000001_init.down.sql", "000007_later.up.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	up, _, err := CreateMigration(dir, "question difficulty")
	require.NoError(t, err)
	assert.Equal(t, "000008_question_difficulty.up.sql", filepath.Base(up))
}

func TestCreateMigration_EmptyName(t *testing.T) {
	_, _, err := CreateMigration(t.TempDir(), "  --  ")
	assert.Error(t, err)
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	entries, err := embeddedMigrations.ReadDir("migrations")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(entries), 2)
}

func TestDriverName_Nil(t *testing.T) {
	assert.Equal(t, "", DriverName(nil))
}
