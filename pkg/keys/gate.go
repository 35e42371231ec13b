package keys

import (
	"github.com/keydeck/keydeck/pkg/storage/database/models"
)

// Gate makes the pure limit decisions. The aggregate limit is a
// deployment-wide constant injected from config; it caps summed usage
// across all keys and is unrelated to any per-key limit.
type Gate struct {
	aggregateLimit int64
}

func NewGate(aggregateLimit int64) Gate {
	return Gate{aggregateLimit: aggregateLimit}
}

func (g Gate) AggregateLimit() int64 {
	return g.aggregateLimit
}

// KeyWithinLimit reports whether the key can still be granted. Usage
// equal to the limit counts as exhausted.
func (g Gate) KeyWithinLimit(key models.APIKey) bool {
	if !key.UsageLimitEnabled || key.UsageLimitValue == nil {
		return true
	}
	return key.UsageCount < *key.UsageLimitValue
}

// AggregateExceeded reports whether total usage has reached the
// deployment-wide cap. Equal counts as exceeded.
func (g Gate) AggregateExceeded(totalUsage int64) bool {
	return totalUsage >= g.aggregateLimit
}
