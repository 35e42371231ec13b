package keys

import (
	"context"
	"strings"
	"testing"

	"github.com/keydeck/keydeck/pkg/storage/database/memory"
	"github.com/keydeck/keydeck/pkg/storage/database/models"
	"github.com/keydeck/keydeck/pkg/usage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(db *memory.MemoryDatabase) (*Service, *usage.Store) {
	snapshots := usage.NewStore()
	svc := NewService(NewRepository(db), NewGate(10000), snapshots)
	return svc, snapshots
}

func TestServiceCreateKey(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, _ := newTestService(memory.NewMemoryDatabase())

		result := svc.CreateKey(ctx, "production", true, 1000)
		require.True(t, result.Success)
		require.NotNil(t, result.Data)
		assert.Equal(t, "production", result.Data.Name)
		assert.True(t, strings.HasPrefix(result.Data.Secret, SecretPrefix))
		assert.Equal(t, models.StatusActive, result.Data.Status)
		assert.Equal(t, int64(0), result.Data.UsageCount)
	})

	t.Run("empty name", func(t *testing.T) {
		svc, _ := newTestService(memory.NewMemoryDatabase())

		result := svc.CreateKey(ctx, "", false, 0)
		assert.False(t, result.Success)
		assert.Equal(t, "Key name is required", result.Error)
		assert.Nil(t, result.Data)
	})

	t.Run("negative limit", func(t *testing.T) {
		svc, _ := newTestService(memory.NewMemoryDatabase())

		result := svc.CreateKey(ctx, "production", true, -10)
		assert.False(t, result.Success)
		assert.Equal(t, "Usage limit must be a positive number", result.Error)
	})
}

func TestServiceEditKeyRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(memory.NewMemoryDatabase())

	created := svc.CreateKey(ctx, "before", true, 100)
	require.True(t, created.Success)

	edited := svc.EditKey(ctx, created.Data.UUID, "after", false, 0)
	require.True(t, edited.Success)

	keys, err := svc.ListKeys(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 1)

	assert.Equal(t, "after", keys[0].Name)
	assert.Equal(t, created.Data.UUID, keys[0].UUID)
	assert.Equal(t, created.Data.Secret, keys[0].Secret)
	assert.Equal(t, created.Data.CreatedAt, keys[0].CreatedAt)
	assert.False(t, keys[0].UsageLimitEnabled)
	assert.Nil(t, keys[0].UsageLimitValue)
}

func TestServiceEditKeyCannotTouchSecretOrStatus(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(memory.NewMemoryDatabase())

	created := svc.CreateKey(ctx, "prod", false, 0)
	require.True(t, created.Success)

	edited := svc.EditKey(ctx, created.Data.UUID, "renamed", true, 5)
	require.True(t, edited.Success)
	assert.Equal(t, created.Data.Secret, edited.Data.Secret)
	assert.Equal(t, models.StatusActive, edited.Data.Status)
}

func TestServiceDeleteKey(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(memory.NewMemoryDatabase())

	created := svc.CreateKey(ctx, "prod", false, 0)
	require.True(t, created.Success)

	result := svc.DeleteKey(ctx, created.Data.UUID)
	assert.True(t, result.Success)

	keys, err := svc.ListKeys(ctx)
	require.NoError(t, err)
	for _, key := range keys {
		assert.NotEqual(t, created.Data.UUID, key.UUID)
	}
}

func TestServiceValidateAndConsume(t *testing.T) {
	ctx := context.Background()

	t.Run("grant increments usage by exactly one", func(t *testing.T) {
		svc, snapshots := newTestService(memory.NewMemoryDatabase())

		created := svc.CreateKey(ctx, "prod", true, 1000)
		require.True(t, created.Success)

		result := svc.ValidateAndConsume(ctx, created.Data.Secret)
		require.True(t, result.Valid)
		require.NotNil(t, result.Key)
		assert.Equal(t, int64(1), result.Key.UsageCount)

		keys, err := svc.ListKeys(ctx)
		require.NoError(t, err)
		require.Len(t, keys, 1)
		assert.Equal(t, int64(1), keys[0].UsageCount)

		cached, ok := snapshots.LastValidated()
		require.True(t, ok)
		assert.Equal(t, created.Data.UUID, cached.UUID)
	})

	t.Run("invalid results are indistinguishable", func(t *testing.T) {
		db := memory.NewMemoryDatabase()
		svc, _ := newTestService(db)

		_, err := db.InsertAPIKey(ctx, models.APIKey{
			Name: "retired", Secret: "kd-retired", Status: models.StatusInactive,
		})
		require.NoError(t, err)

		exhausted := int64(3)
		_, err = db.InsertAPIKey(ctx, models.APIKey{
			Name: "spent", Secret: "kd-spent", Status: models.StatusActive,
			UsageCount: 3, UsageLimitEnabled: true, UsageLimitValue: &exhausted,
		})
		require.NoError(t, err)

		unknown := svc.ValidateAndConsume(ctx, "kd-nosuchkey")
		inactive := svc.ValidateAndConsume(ctx, "kd-retired")
		overLimit := svc.ValidateAndConsume(ctx, "kd-spent")

		assert.Equal(t, ValidationResult{Valid: false}, unknown)
		assert.Equal(t, unknown, inactive)
		assert.Equal(t, unknown, overLimit)
	})

	t.Run("blank secret is invalid without a lookup", func(t *testing.T) {
		svc, _ := newTestService(memory.NewMemoryDatabase())
		assert.Equal(t, ValidationResult{Valid: false}, svc.ValidateAndConsume(ctx, "   "))
	})

	t.Run("last grant before the limit", func(t *testing.T) {
		db := memory.NewMemoryDatabase()
		svc, _ := newTestService(db)

		ceiling := int64(1000)
		_, err := db.InsertAPIKey(ctx, models.APIKey{
			Name: "nearly-spent", Secret: "kd-nearly", Status: models.StatusActive,
			UsageCount: 999, UsageLimitEnabled: true, UsageLimitValue: &ceiling,
		})
		require.NoError(t, err)

		first := svc.ValidateAndConsume(ctx, "kd-nearly")
		require.True(t, first.Valid)
		assert.Equal(t, int64(1000), first.Key.UsageCount)

		second := svc.ValidateAndConsume(ctx, "kd-nearly")
		assert.Equal(t, ValidationResult{Valid: false}, second)
	})

	t.Run("every attempt leaves an audit event", func(t *testing.T) {
		db := memory.NewMemoryDatabase()
		svc, _ := newTestService(db)

		created := svc.CreateKey(ctx, "prod", false, 0)
		require.True(t, created.Success)

		svc.ValidateAndConsume(ctx, created.Data.Secret)
		svc.ValidateAndConsume(ctx, "kd-unknown")

		events := db.ValidationEvents()
		require.Len(t, events, 2)
		assert.True(t, events[0].Granted)
		assert.Equal(t, created.Data.UUID, events[0].KeyUUID)
		assert.False(t, events[1].Granted)
		assert.NotEqual(t, events[0].EventID, events[1].EventID)
	})
}

func TestServiceListRefreshesAggregateSnapshot(t *testing.T) {
	ctx := context.Background()
	db := memory.NewMemoryDatabase()
	svc, snapshots := newTestService(db)

	_, err := db.InsertAPIKey(ctx, models.APIKey{Name: "a", Secret: "kd-a", UsageCount: 40})
	require.NoError(t, err)
	_, err = db.InsertAPIKey(ctx, models.APIKey{Name: "b", Secret: "kd-b", UsageCount: 2})
	require.NoError(t, err)

	_, err = svc.ListKeys(ctx)
	require.NoError(t, err)

	snap, ok := snapshots.Aggregate()
	require.True(t, ok)
	assert.Equal(t, int64(42), snap.Count)
	assert.Equal(t, int64(10000), snap.Limit)
	assert.False(t, snap.LastReset.IsZero())
}
