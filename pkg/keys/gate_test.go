package keys

import (
	"testing"

	"github.com/keydeck/keydeck/pkg/storage/database/models"
	"github.com/stretchr/testify/assert"
)

func limit(v int64) *int64 {
	return &v
}

func TestKeyWithinLimit(t *testing.T) {
	gate := NewGate(10000)

	t.Run("no limit means always usable", func(t *testing.T) {
		key := models.APIKey{UsageCount: 999999, UsageLimitEnabled: false}
		assert.True(t, gate.KeyWithinLimit(key))
	})

	t.Run("under the limit", func(t *testing.T) {
		key := models.APIKey{UsageCount: 4, UsageLimitEnabled: true, UsageLimitValue: limit(5)}
		assert.True(t, gate.KeyWithinLimit(key))
	})

	t.Run("usage equal to limit counts as exhausted", func(t *testing.T) {
		key := models.APIKey{UsageCount: 5, UsageLimitEnabled: true, UsageLimitValue: limit(5)}
		assert.False(t, gate.KeyWithinLimit(key))
	})

	t.Run("over the limit", func(t *testing.T) {
		key := models.APIKey{UsageCount: 6, UsageLimitEnabled: true, UsageLimitValue: limit(5)}
		assert.False(t, gate.KeyWithinLimit(key))
	})

	t.Run("enabled flag with missing value is treated as unlimited", func(t *testing.T) {
		key := models.APIKey{UsageCount: 100, UsageLimitEnabled: true, UsageLimitValue: nil}
		assert.True(t, gate.KeyWithinLimit(key))
	})
}

func TestAggregateExceeded(t *testing.T) {
	gate := NewGate(10000)

	assert.False(t, gate.AggregateExceeded(0))
	assert.False(t, gate.AggregateExceeded(9999))
	assert.True(t, gate.AggregateExceeded(10000))
	assert.True(t, gate.AggregateExceeded(10001))
}
