package checkpoint_test

import (
	"encoding/json"
	"testing"

	"github.com/randalmurphal/navflow/pkg/navflow/checkpoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpoint_RoundTrip(t *testing.T) {
	snapshot := json.RawMessage(`{"session_id":"s1","screens":[{"node_id":"home"}]}`)
	cp := checkpoint.New("s1", 3, snapshot).WithTop("home")

	assert.Equal(t, checkpoint.Version, cp.Version)
	assert.False(t, cp.Timestamp.IsZero())

	data, err := cp.Marshal()
	require.NoError(t, err)

	loaded, err := checkpoint.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, "s1", loaded.SessionID)
	assert.Equal(t, 3, loaded.Sequence)
	assert.Equal(t, "home", loaded.TopNodeID)
	assert.JSONEq(t, string(snapshot), string(loaded.Snapshot))
}

func TestCheckpoint_Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{name: "current version", data: `{"version":1,"session_id":"s","sequence":1,"snapshot":{}}`},
		{name: "newer version", data: `{"version":99,"session_id":"s","sequence":1,"snapshot":{}}`, wantErr: checkpoint.ErrUnsupportedVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := checkpoint.Unmarshal([]byte(tt.data))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}

	t.Run("invalid json", func(t *testing.T) {
		_, err := checkpoint.Unmarshal([]byte("{not json"))
		assert.Error(t, err)
	})
}
