// Package source opens the documents a virtual filesystem is loaded from:
// local files, gzip-compressed files and objects in S3-compatible storage.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"vfsemu/internal/logging"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/klauspost/compress/gzip"
)

var (
	sourceLogger = logging.GetLogger().WithPrefix("source")

	// ErrNotExist indicates the requested source does not exist
	ErrNotExist = errors.New("source does not exist")

	// ErrNoRemote indicates an s3:// source was requested without a
	// configured remote opener
	ErrNoRemote = errors.New("no remote source configured")
)

// Opener opens a source document by path.
type Opener interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// FS opens sources from a billy filesystem.
type FS struct {
	fs       billy.Filesystem
	absolute bool
}

// NewFS returns an opener reading from fs. Paths are passed through as is.
func NewFS(fs billy.Filesystem) *FS {
	return &FS{fs: fs}
}

// Local returns an opener for the host filesystem. Relative paths are
// resolved against the working directory.
func Local() *FS {
	return &FS{fs: osfs.New("/"), absolute: true}
}

// Open implements Opener.
func (f *FS) Open(_ context.Context, path string) (io.ReadCloser, error) {
	if f.absolute {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", path, err)
		}
		path = abs
	}

	info, err := f.fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotExist, path)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	sourceLogger.Debug("Opening %s (%d bytes)", path, info.Size())
	return f.fs.Open(path)
}

// Mux dispatches s3:// paths to Remote and everything else to Local. Paths
// ending in ".gz" are decompressed transparently.
type Mux struct {
	Local  Opener
	Remote Opener
}

// Open implements Opener.
func (m *Mux) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	var (
		rc  io.ReadCloser
		err error
	)
	if IsRemote(path) {
		if m.Remote == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoRemote, path)
		}
		rc, err = m.Remote.Open(ctx, path)
	} else {
		rc, err = m.Local.Open(ctx, path)
	}
	if err != nil {
		return nil, err
	}

	if !strings.HasSuffix(path, ".gz") {
		return rc, nil
	}

	sourceLogger.Debug("Decompressing %s", path)
	zr, err := gzip.NewReader(rc)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("gzip %s: %w", path, err)
	}
	return &gzipReadCloser{Reader: zr, underlying: rc}, nil
}

// IsRemote reports whether path names an object in S3-compatible storage
func IsRemote(path string) bool {
	return strings.HasPrefix(path, s3Scheme)
}

type gzipReadCloser struct {
	*gzip.Reader
	underlying io.Closer
}

func (g *gzipReadCloser) Close() error {
	err := g.Reader.Close()
	if cerr := g.underlying.Close(); err == nil {
		err = cerr
	}
	return err
}
