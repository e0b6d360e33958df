package checkpoint_test

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/randalmurphal/navflow/pkg/navflow/checkpoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_Persistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "navigation.db")

	store1, err := checkpoint.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store1.Save("session-1", 4, []byte("persistent")))
	require.NoError(t, store1.Close())

	// Reopen the same database
	store2, err := checkpoint.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store2.Close()

	data, info, err := store2.Latest("session-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("persistent"), data)
	assert.Equal(t, 4, info.Sequence)
	assert.False(t, info.Timestamp.IsZero())
}

func TestSQLiteStore_InvalidPath(t *testing.T) {
	_, err := checkpoint.NewSQLiteStore("/nonexistent/path/db.sqlite")
	assert.Error(t, err)
}

func TestSQLiteStore_CloseIdempotent(t *testing.T) {
	store, err := checkpoint.NewSQLiteStore(":memory:")
	require.NoError(t, err)

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_Concurrent(t *testing.T) {
	store, err := checkpoint.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	const numGoroutines = 20
	const numOps = 20

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()

			sessionID := fmt.Sprintf("session-%d", id%5)
			for j := 0; j < numOps; j++ {
				switch j % 4 {
				case 0, 1:
					_ = store.Save(sessionID, j, []byte("data"))
				case 2:
					_, _, _ = store.Latest(sessionID)
				case 3:
					_, _ = store.List(sessionID)
				}
			}
		}(i)
	}

	wg.Wait()

	infos, err := store.List("session-0")
	require.NoError(t, err)
	assert.NotEmpty(t, infos)
}
