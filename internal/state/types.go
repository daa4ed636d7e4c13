// Package state persists the shell session between runs.
package state

import "time"

// CurrentVersion is written to every new state file
const CurrentVersion = 1

// SessionState is what survives a restart: where the tree came from and
// where the user was. The tree itself is never persisted.
type SessionState struct {
	// Source the tree was loaded from; empty for the default tree
	Source string `json:"source"`

	// Absolute VFS path of the current directory
	Cwd string `json:"cwd"`

	// When the state was last saved
	SavedAt time.Time `json:"saved_at"`

	// Version for future compatibility
	Version int `json:"version"`
}

// NewSessionState returns the state of a fresh session at the root.
func NewSessionState() *SessionState {
	return &SessionState{
		Cwd:     "/",
		Version: CurrentVersion,
	}
}
