package source

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, o Opener, path string) string {
	t.Helper()
	rc, err := o.Open(context.Background(), path)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestFSOpen(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/vfs/tree.xml", []byte("<root/>"), 0644))
	opener := NewFS(fs)

	t.Run("existing file", func(t *testing.T) {
		assert.Equal(t, "<root/>", readAll(t, opener, "/vfs/tree.xml"))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := opener.Open(context.Background(), "/vfs/missing.xml")
		require.ErrorIs(t, err, ErrNotExist)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := opener.Open(context.Background(), "/vfs")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotExist)
	})
}

func TestLocalResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tree.xml"), []byte("<root/>"), 0644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() {
		_ = os.Chdir(wd)
	}()

	assert.Equal(t, "<root/>", readAll(t, Local(), "tree.xml"))

	_, err = Local().Open(context.Background(), "nope.xml")
	require.ErrorIs(t, err, ErrNotExist)
}

func TestMuxDecompressesGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("<root><directory name=\"a\"/></root>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/tree.xml.gz", buf.Bytes(), 0644))
	require.NoError(t, util.WriteFile(fs, "/broken.xml.gz", []byte("not gzip"), 0644))

	mux := &Mux{Local: NewFS(fs)}
	assert.Equal(t, `<root><directory name="a"/></root>`, readAll(t, mux, "/tree.xml.gz"))

	_, err = mux.Open(context.Background(), "/broken.xml.gz")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "gzip /broken.xml.gz"))
}

func TestMuxWithoutRemote(t *testing.T) {
	mux := &Mux{Local: NewFS(memfs.New())}
	_, err := mux.Open(context.Background(), "s3://bucket/tree.xml")
	require.ErrorIs(t, err, ErrNoRemote)
}

func TestParseS3Path(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		bucket  string
		key     string
		wantErr bool
	}{
		{name: "simple", input: "s3://vfs/tree.xml", bucket: "vfs", key: "tree.xml"},
		{name: "nested key", input: "s3://vfs/a/b/tree.xml.gz", bucket: "vfs", key: "a/b/tree.xml.gz"},
		{name: "no key", input: "s3://vfs/", wantErr: true},
		{name: "no bucket", input: "s3:///tree.xml", wantErr: true},
		{name: "wrong scheme", input: "http://vfs/tree.xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, key, err := ParseS3Path(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.key, key)
		})
	}
}
