package vfs

import (
	"context"
	"sync"

	"vfsemu/internal/logging"
	"vfsemu/internal/source"
)

var (
	sessionLogger = logging.GetLogger().WithPrefix("session")
)

// Session is the shell's view of the VFS: the active tree plus the current
// directory inside it. The pair is always replaced together, so the current
// directory is a live directory of the active tree.
type Session struct {
	mu   sync.RWMutex
	tree *Tree
	cwd  NodeID
}

// NewSession returns a session on t with the current directory at its root.
func NewSession(t *Tree) *Session {
	return &Session{tree: t, cwd: t.Root()}
}

// NewSessionFromSource loads path into a new session. When path is empty or
// the load fails the session starts on the default tree instead; the load
// error is still returned so the caller can report it.
func NewSessionFromSource(ctx context.Context, opener source.Opener, path string) (*Session, LoadReport, error) {
	s := NewSession(BuildDefault())
	if path == "" {
		sessionLogger.Info("No VFS source given, using the default tree")
		return s, LoadReport{}, nil
	}
	report, err := s.Load(ctx, opener, path)
	return s, report, err
}

// Load replaces the active tree with the one parsed from path. If loading
// fails the default tree becomes active and the load error is returned.
func (s *Session) Load(ctx context.Context, opener source.Opener, path string) (LoadReport, error) {
	tree, report, err := Load(ctx, opener, path)
	if err != nil {
		sessionLogger.Warn("Failed to load %s, falling back to the default tree: %v", path, err)
		s.Reload(BuildDefault())
		return report, err
	}
	s.Reload(tree)
	return report, nil
}

// Reload makes t the active tree and moves the current directory to its root.
func (s *Session) Reload(t *Tree) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree = t
	s.cwd = t.Root()
	sessionLogger.Debug("Active tree replaced (%d nodes)", len(t.nodes))
}

// Tree returns the active tree
func (s *Session) Tree() *Tree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree
}

// CurrentDir returns the active tree and the current directory in it
func (s *Session) CurrentDir() (*Tree, NodeID) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree, s.cwd
}

// ChangeDirectory moves the current directory to path. On failure, whether
// the path does not resolve or names a file, the session is unchanged.
func (s *Session) ChangeDirectory(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := Resolve(s.tree, s.cwd, path)
	if err != nil {
		sessionLogger.Debug("cd %q failed: %v", path, err)
		return err
	}
	if !s.tree.IsDir(id) {
		sessionLogger.Debug("cd %q failed: target is a file", path)
		return &Error{Op: OpChdir, Path: path, Err: ErrNotADirectory}
	}

	s.cwd = id
	sessionLogger.Trace("Current directory is now %s", s.tree.Path(id))
	return nil
}

// CurrentPath returns the absolute path of the current directory, recomputed
// on every call.
func (s *Session) CurrentPath() string {
	t, cwd := s.CurrentDir()
	return t.Path(cwd)
}

// ListCurrentDirectory returns the names of the current directory's children
// in natural order. An empty directory yields an empty slice.
func (s *Session) ListCurrentDirectory() []string {
	t, cwd := s.CurrentDir()
	return t.Children(cwd)
}

// GetFileContent returns the decoded content of the file called name in the
// current directory. Only direct children are considered; false covers both
// a missing child and a directory.
func (s *Session) GetFileContent(name string) (string, bool) {
	t, cwd := s.CurrentDir()
	id, ok := t.Child(cwd, name)
	if !ok || t.IsDir(id) {
		return "", false
	}

	text, err := t.Content(id)
	if err != nil {
		return "", false
	}
	return text, true
}

// DescribeNode returns the descriptor of the direct child called name, e.g.
// "Directory: home (4 items)" or "File: readme.txt".
func (s *Session) DescribeNode(name string) (string, bool) {
	t, cwd := s.CurrentDir()
	id, ok := t.Child(cwd, name)
	if !ok {
		return "", false
	}
	return t.Describe(id), true
}
