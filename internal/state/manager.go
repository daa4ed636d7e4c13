package state

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"vfsemu/internal/logging"

	"github.com/goccy/go-json"
)

var (
	logger = logging.GetLogger().WithPrefix("state")
)

// DefaultBackupCount is how many backups SaveState keeps
const DefaultBackupCount = 5

// Manager handles loading and saving session state
type Manager struct {
	statePath   string
	backupDir   string
	backupCount int
	mu          sync.Mutex
}

// NewManager creates a new state manager for the given state file path.
// It ensures the state directory and the backup directory exist.
func NewManager(statePath string) (*Manager, error) {
	logger.Debug("Creating new state manager with path: %s", statePath)

	absPath, err := filepath.Abs(statePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve state path %s: %w", statePath, err)
	}
	logger.Debug("Resolved state path: %s", absPath)

	stateDir := filepath.Dir(absPath)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory %s: %w", stateDir, err)
	}

	backupDir := filepath.Join(stateDir, ".vfsemu-backups")
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory %s: %w", backupDir, err)
	}

	return &Manager{
		statePath:   absPath,
		backupDir:   backupDir,
		backupCount: DefaultBackupCount,
	}, nil
}

// Path returns the absolute path of the state file
func (sm *Manager) Path() string {
	return sm.statePath
}

// LoadState loads the session state from disk. A missing or empty state file
// yields a fresh state.
func (sm *Manager) LoadState() (*SessionState, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	logger.Debug("Loading state from: %s", sm.statePath)
	data, err := os.ReadFile(sm.statePath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("No state file, starting a new session")
			return NewSessionState(), nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	if len(data) == 0 {
		logger.Info("State file is empty, starting a new session")
		return NewSessionState(), nil
	}

	var state SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	if state.Cwd == "" {
		state.Cwd = "/"
	}
	if state.Version == 0 {
		state.Version = CurrentVersion
	}

	logger.Debug("State loaded: source=%q cwd=%q", state.Source, state.Cwd)
	return &state, nil
}

// SaveState saves the session state to disk, backing up the previous file
// first.
func (sm *Manager) SaveState(state *SessionState) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	logger.Debug("Saving state to: %s", sm.statePath)

	if err := sm.createBackup(); err != nil {
		logger.Warn("Failed to create backup: %v", err)
	}

	state.SavedAt = time.Now().UTC()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// write then rename so a crash never leaves a truncated state file
	tmp := sm.statePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, sm.statePath); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	logger.Trace("Wrote %d bytes of state data", len(data))
	return nil
}

// createBackup creates a timestamped backup of the current state file
func (sm *Manager) createBackup() error {
	data, err := os.ReadFile(sm.statePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	timestamp := time.Now().Format("20060102-150405.000000000")
	backupPath := filepath.Join(sm.backupDir, fmt.Sprintf("state-%s.json", timestamp))

	logger.Trace("Creating backup: %s", backupPath)
	if err := os.WriteFile(backupPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}

	return sm.cleanupOldBackups()
}

// cleanupOldBackups removes old backup files, keeping only the most recent ones
func (sm *Manager) cleanupOldBackups() error {
	entries, err := os.ReadDir(sm.backupDir)
	if err != nil {
		return err
	}

	// backup names embed the timestamp, so name order is age order
	var backups []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			backups = append(backups, entry.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(backups)))

	for i := sm.backupCount; i < len(backups); i++ {
		path := filepath.Join(sm.backupDir, backups[i])
		logger.Debug("Removing old backup: %s", path)
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", path, err)
		}
	}

	return nil
}
