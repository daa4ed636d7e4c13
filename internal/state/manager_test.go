package state

import (
	"os"
	"path/filepath"
	"testing"

	"vfsemu/internal/vfs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupManager(t *testing.T) (*Manager, string) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "nested", "state.json")
	sm, err := NewManager(statePath)
	require.NoError(t, err)
	return sm, dir
}

func TestLoadStateWithoutFile(t *testing.T) {
	sm, _ := setupManager(t)

	st, err := sm.LoadState()
	require.NoError(t, err)
	assert.Equal(t, "/", st.Cwd)
	assert.Equal(t, "", st.Source)
	assert.Equal(t, CurrentVersion, st.Version)
}

func TestLoadStateEmptyFile(t *testing.T) {
	sm, _ := setupManager(t)
	require.NoError(t, os.WriteFile(sm.Path(), nil, 0600))

	st, err := sm.LoadState()
	require.NoError(t, err)
	assert.Equal(t, "/", st.Cwd)
}

func TestLoadStateCorrupt(t *testing.T) {
	sm, _ := setupManager(t)
	require.NoError(t, os.WriteFile(sm.Path(), []byte("{not json"), 0600))

	_, err := sm.LoadState()
	require.Error(t, err)
}

func TestSaveAndLoadState(t *testing.T) {
	sm, _ := setupManager(t)

	st := &SessionState{Source: "/tmp/vfs.xml", Cwd: "/home/documents", Version: CurrentVersion}
	require.NoError(t, sm.SaveState(st))
	assert.False(t, st.SavedAt.IsZero())

	loaded, err := sm.LoadState()
	require.NoError(t, err)
	assert.Equal(t, st.Source, loaded.Source)
	assert.Equal(t, st.Cwd, loaded.Cwd)
	assert.True(t, st.SavedAt.Equal(loaded.SavedAt))
}

func TestBackupsArePruned(t *testing.T) {
	sm, _ := setupManager(t)

	for i := 0; i < DefaultBackupCount+3; i++ {
		require.NoError(t, sm.SaveState(NewSessionState()))
	}

	entries, err := os.ReadDir(sm.backupDir)
	require.NoError(t, err)
	assert.Len(t, entries, DefaultBackupCount)
}

func TestCaptureAndRestore(t *testing.T) {
	s := vfs.NewSession(vfs.BuildDefault())
	require.NoError(t, s.ChangeDirectory("/home/documents"))

	st := Capture(s, "")
	assert.Equal(t, "/home/documents", st.Cwd)

	tests := []struct {
		name     string
		state    *SessionState
		source   string
		restored bool
		expected string
	}{
		{name: "same source", state: st, source: "", restored: true, expected: "/home/documents"},
		{name: "other source", state: st, source: "/other.xml", restored: false, expected: "/"},
		{name: "missing directory", state: &SessionState{Cwd: "/gone"}, source: "", restored: false, expected: "/"},
		{name: "nil state", state: nil, source: "", restored: false, expected: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fresh := vfs.NewSession(vfs.BuildDefault())
			assert.Equal(t, tt.restored, Restore(fresh, tt.state, tt.source))
			assert.Equal(t, tt.expected, fresh.CurrentPath())
		})
	}
}
