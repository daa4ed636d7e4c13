package fs

import (
	"context"
	"os"
	"syscall"
	"testing"

	"vfsemu/internal/vfs"

	"bazil.org/fuse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFile(t *testing.T, m *VFSMount, dir, name string) *File {
	ctx := context.Background()
	node, err := rootDir(t, m).Lookup(ctx, dir)
	require.NoError(t, err)
	node, err = node.(*Dir).Lookup(ctx, name)
	require.NoError(t, err)
	file, ok := node.(*File)
	require.True(t, ok, "%s/%s should be a File", dir, name)
	return file
}

func TestFileOperations(t *testing.T) {
	m, _ := setupTestMount(t)
	ctx := context.Background()

	t.Run("FileAttributes", func(t *testing.T) {
		file := lookupFile(t, m, "home", "readme.txt")

		attr := &fuse.Attr{}
		require.NoError(t, file.Attr(ctx, attr))
		assert.Zero(t, attr.Mode&os.ModeDir, "file should not be a directory")
		assert.Equal(t, os.FileMode(0444), attr.Mode)
		assert.Equal(t, uint64(len("Hello VFS Emulator!")), attr.Size)
	})

	t.Run("FileReading", func(t *testing.T) {
		file := lookupFile(t, m, "home", "readme.txt")

		resp := &fuse.OpenResponse{}
		handle, err := file.Open(ctx, &fuse.OpenRequest{Flags: fuse.OpenReadOnly}, resp)
		require.NoError(t, err)
		assert.NotZero(t, resp.Flags&fuse.OpenKeepCache)

		data, err := handle.(*File).ReadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Hello VFS Emulator!", string(data))
	})

	t.Run("BinaryFile", func(t *testing.T) {
		file := lookupFile(t, m, "home", "blob.bin")

		data, err := file.ReadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, vfs.BinaryContent, string(data))
	})

	t.Run("WriteAccessDenied", func(t *testing.T) {
		file := lookupFile(t, m, "home", "readme.txt")

		for _, flags := range []fuse.OpenFlags{fuse.OpenWriteOnly, fuse.OpenReadWrite} {
			_, err := file.Open(ctx, &fuse.OpenRequest{Flags: flags}, &fuse.OpenResponse{})
			assert.Equal(t, syscall.EPERM, err)
		}
	})
}
