package vfs

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"vfsemu/internal/source"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vfs.xml")
	require.NoError(t, os.WriteFile(path, []byte(`<root><directory name="before"/></root>`), 0644))

	opener := source.Local()
	s, _, err := NewSessionFromSource(context.Background(), opener, path)
	require.NoError(t, err)
	require.Equal(t, []string{"before"}, s.ListCurrentDirectory())

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, Watch(ctx, s, opener, path))
	}()
	defer func() {
		cancel()
		wg.Wait()
	}()

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)

	t.Run("valid change is applied", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte(`<root><directory name="after"/></root>`), 0644))
		require.Eventually(t, func() bool {
			items := s.ListCurrentDirectory()
			return len(items) == 1 && items[0] == "after"
		}, 5*time.Second, 50*time.Millisecond)
	})

	t.Run("broken change keeps the current tree", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte(`<root><directory`), 0644))
		time.Sleep(3 * WatchDebounce)
		assert.Equal(t, []string{"after"}, s.ListCurrentDirectory())
	})
}

func TestWatchRejectsRemoteSources(t *testing.T) {
	s := NewSession(BuildDefault())
	err := Watch(context.Background(), s, source.Local(), "s3://bucket/vfs.xml")
	require.ErrorIs(t, err, ErrNotWatchable)

	err = Watch(context.Background(), s, source.Local(), "")
	require.ErrorIs(t, err, ErrNotWatchable)
}

func TestReloadSessionAfterShutdown(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/vfs.xml", []byte(`<root><directory name="fresh"/></root>`), 0644))
	opener := source.NewFS(fs)
	s := NewSession(BuildDefault())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, reloadSession(ctx, s, opener, "/vfs.xml"))
	assert.Equal(t, []string{"home", "tmp", "var"}, s.ListCurrentDirectory())

	assert.True(t, reloadSession(context.Background(), s, opener, "/vfs.xml"))
	assert.Equal(t, []string{"fresh"}, s.ListCurrentDirectory())
}
