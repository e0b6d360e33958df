// Package checkpoint persists navigation snapshots so a session can be
// restored after the process restarts.
package checkpoint

import (
	"errors"
	"time"
)

// Store persists checkpoints keyed by session ID and sequence number.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores data for a session at a sequence number.
	// Overwrites if a checkpoint for (sessionID, sequence) already exists.
	Save(sessionID string, sequence int, data []byte) error

	// Load retrieves one checkpoint.
	// Returns ErrNotFound if the checkpoint doesn't exist.
	Load(sessionID string, sequence int) ([]byte, error)

	// Latest retrieves the checkpoint with the highest sequence for a session.
	// Returns ErrNotFound if the session has no checkpoints.
	Latest(sessionID string) ([]byte, Info, error)

	// List returns all checkpoints for a session, ordered by sequence.
	// Returns empty slice (not error) if the session has no checkpoints.
	List(sessionID string) ([]Info, error)

	// Delete removes a specific checkpoint.
	// Returns nil if the checkpoint doesn't exist.
	Delete(sessionID string, sequence int) error

	// DeleteSession removes all checkpoints for a session.
	// Returns nil if the session has no checkpoints.
	DeleteSession(sessionID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Info provides metadata without loading the checkpoint body.
type Info struct {
	SessionID string
	Sequence  int
	Timestamp time.Time
	Size      int64
}

// Sentinel errors for checkpoint operations.
var (
	// ErrNotFound indicates a checkpoint doesn't exist.
	ErrNotFound = errors.New("checkpoint not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("checkpoint store closed")

	// ErrUnsupportedVersion indicates a checkpoint written by an incompatible format version.
	ErrUnsupportedVersion = errors.New("unsupported checkpoint version")
)
