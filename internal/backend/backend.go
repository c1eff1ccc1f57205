package backend

import (
	"context"
	"fmt"
)

// Backend moves raw state file bytes between the tool and durable storage.
// Backends do not interpret the state; parsing stays in the tfstate package.
type Backend interface {
	// Read loads the raw state document. A missing state is an error here:
	// migrating a state that does not exist is always a mistake.
	Read(ctx context.Context) ([]byte, error)

	// Write stores the raw state document.
	Write(ctx context.Context, data []byte) error

	// Lock acquires an exclusive lock on the state.
	Lock() error

	// Unlock releases the lock on the state.
	Unlock() error
}

// Config selects and configures a backend.
type Config struct {
	Type   string            `json:"type"` // "local" or "s3"
	Config map[string]string `json:"config"`
}

// New creates a backend from configuration. path is the local file path used
// by the local backend; remote backends take their location from cfg.Config.
func New(cfg *Config, path string) (Backend, error) {
	if cfg == nil || cfg.Type == "" || cfg.Type == "local" {
		if path == "" {
			return nil, fmt.Errorf("local backend requires a state file path")
		}
		return NewLocal(path), nil
	}

	switch cfg.Type {
	case "s3":
		return newS3Backend(cfg.Config)
	default:
		return nil, fmt.Errorf("unknown backend type: %s", cfg.Type)
	}
}
