package checkpoint

import (
	"encoding/json"
	"fmt"
	"time"
)

// Version is the current checkpoint format version.
// Increment when making breaking changes to checkpoint structure.
const Version = 1

// Checkpoint is the persisted envelope around a navigation snapshot.
type Checkpoint struct {
	Version   int       `json:"version"`
	SessionID string    `json:"session_id"`
	Sequence  int       `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`

	// TopNodeID is the node on top of the host stack when the snapshot was
	// taken, kept outside the snapshot for quick inspection.
	TopNodeID string `json:"top_node_id,omitempty"`

	// Snapshot is the JSON-encoded navigation snapshot.
	Snapshot json.RawMessage `json:"snapshot"`
}

// New creates a checkpoint. snapshot must already be JSON-encoded.
func New(sessionID string, sequence int, snapshot []byte) *Checkpoint {
	return &Checkpoint{
		Version:   Version,
		SessionID: sessionID,
		Sequence:  sequence,
		Timestamp: time.Now().UTC(),
		Snapshot:  snapshot,
	}
}

// WithTop sets the top node ID.
func (c *Checkpoint) WithTop(nodeID string) *Checkpoint {
	c.TopNodeID = nodeID
	return c
}

// Marshal serializes a checkpoint to JSON.
func (c *Checkpoint) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

// Unmarshal deserializes a checkpoint from JSON. Checkpoints written by a
// newer format version are rejected with ErrUnsupportedVersion.
func Unmarshal(data []byte) (*Checkpoint, error) {
	var c Checkpoint
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if c.Version > Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, c.Version)
	}
	return &c, nil
}
