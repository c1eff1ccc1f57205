package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Local reads and writes state files on the local filesystem, with a lock
// file to guard against concurrent writers and transparent encryption when
// an encryption key is configured.
type Local struct {
	path string
}

func NewLocal(path string) *Local {
	return &Local{path: path}
}

// Path returns the state file path this backend operates on.
func (l *Local) Path() string {
	return l.path
}

func (l *Local) Read(ctx context.Context) ([]byte, error) {
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		return nil, fmt.Errorf("state file '%s' not found", l.path)
	}

	raw, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file %s: %w", l.path, err)
	}

	if IsEncrypted(raw) {
		decrypted, err := Decrypt(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt state: %w", err)
		}
		return decrypted, nil
	}
	return raw, nil
}

func (l *Local) Write(ctx context.Context, data []byte) error {
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	encrypted, err := Encrypt(data)
	if err != nil {
		return fmt.Errorf("failed to encrypt state: %w", err)
	}

	if err := os.WriteFile(l.path, encrypted, 0644); err != nil {
		return fmt.Errorf("failed to write state file %s: %w", l.path, err)
	}
	return nil
}

// Lock acquires a file lock next to the state to prevent concurrent runs.
// Locks older than 10 minutes are considered stale and replaced.
func (l *Local) Lock() error {
	lockPath := l.lockPath()

	if info, err := os.Stat(lockPath); err == nil {
		if time.Since(info.ModTime()) > 10*time.Minute {
			os.Remove(lockPath)
		} else {
			return fmt.Errorf("state is locked by another process (lock file: %s). "+
				"If this is an error, remove the lock file manually", lockPath)
		}
	}

	content := fmt.Sprintf("pid=%d\ntime=%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	if err := os.WriteFile(lockPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to create lock file: %w", err)
	}
	return nil
}

// Unlock releases the state lock.
func (l *Local) Unlock() error {
	if err := os.Remove(l.lockPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

func (l *Local) lockPath() string {
	return l.path + ".lock"
}
