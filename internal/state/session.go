package state

import (
	"vfsemu/internal/vfs"
)

// Capture records the session's current directory and the source its tree
// was loaded from.
func Capture(s *vfs.Session, source string) *SessionState {
	st := NewSessionState()
	st.Source = source
	st.Cwd = s.CurrentPath()
	return st
}

// Restore moves the session back to the saved directory. It does nothing and
// returns false when the state belongs to another source or the directory no
// longer exists in the tree.
func Restore(s *vfs.Session, st *SessionState, source string) bool {
	if st == nil || st.Source != source || st.Cwd == "/" {
		return false
	}
	if err := s.ChangeDirectory(st.Cwd); err != nil {
		logger.Info("Saved directory %s is not available: %v", st.Cwd, err)
		return false
	}
	logger.Debug("Restored current directory %s", st.Cwd)
	return true
}
