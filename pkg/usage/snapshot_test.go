package usage

import (
	"testing"

	"github.com/keydeck/keydeck/pkg/storage/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateSnapshot(t *testing.T) {
	store := NewStore()

	_, ok := store.Aggregate()
	assert.False(t, ok)

	store.SetAggregate(42, 10000)
	snap, ok := store.Aggregate()
	require.True(t, ok)
	assert.Equal(t, int64(42), snap.Count)
	assert.Equal(t, int64(10000), snap.Limit)
	assert.False(t, snap.LastReset.IsZero())

	// a recompute overwrites the previous value
	store.SetAggregate(43, 10000)
	snap, ok = store.Aggregate()
	require.True(t, ok)
	assert.Equal(t, int64(43), snap.Count)
}

func TestLastValidated(t *testing.T) {
	store := NewStore()

	_, ok := store.LastValidated()
	assert.False(t, ok)

	key := models.APIKey{UUID: "abc", Name: "prod", Secret: "kd-xyz"}
	store.SetLastValidated(key)

	cached, ok := store.LastValidated()
	require.True(t, ok)
	assert.Equal(t, key, cached)
}
