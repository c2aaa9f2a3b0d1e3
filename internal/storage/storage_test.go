package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-dashboard/internal/models"
)

func TestPromptFile_WriteRead(t *testing.T) {
	pf := NewPromptFile(filepath.Join(t.TempDir(), "nested", "formatted_prompt.txt"))

	require.NoError(t, pf.Write("first prompt"))
	require.NoError(t, pf.Write("Client data=  \n`\nJane\n`"))

	got, err := pf.Read()
	require.NoError(t, err)
	assert.Equal(t, "Client data=  \n`\nJane\n`", got)
}

func TestPromptFile_ReadMissing(t *testing.T) {
	_, err := NewPromptFile(filepath.Join(t.TempDir(), "none.txt")).Read()
	assert.Error(t, err)
}

func TestOpenJournal(t *testing.T) {
	ds, err := OpenJournal(models.JournalConfig{})
	require.NoError(t, err)
	assert.Nil(t, ds)
	assert.NoError(t, ds.Close())

	ds, err = OpenJournal(models.JournalConfig{Path: filepath.Join(t.TempDir(), "dashboard.db")})
	require.NoError(t, err)
	require.NotNil(t, ds.RunRepo)
	assert.NoError(t, ds.Close())
}
