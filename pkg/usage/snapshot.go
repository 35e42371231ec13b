package usage

import (
	"time"

	"github.com/keydeck/keydeck/pkg/storage/database/models"
	gocache "github.com/patrickmn/go-cache"
)

// Cache keys match the contract the dashboard reads: an aggregate
// usage snapshot and the most recently validated key.
const (
	aggregateKey     = "apiUsage"
	lastValidatedKey = "validApiKey"
)

// Snapshot is a display cache derived from summing usage over the key
// list. It is never consulted when validating an individual key.
type Snapshot struct {
	Count     int64     `json:"count"`
	Limit     int64     `json:"limit"`
	LastReset time.Time `json:"lastReset"`
}

type Store struct {
	cache *gocache.Cache
}

func NewStore() *Store {
	return &Store{
		cache: gocache.New(gocache.NoExpiration, 10*time.Minute),
	}
}

// SetAggregate overwrites the cached snapshot with a fresh recompute.
func (s *Store) SetAggregate(totalUsage int64, limit int64) {
	s.cache.Set(aggregateKey, Snapshot{
		Count:     totalUsage,
		Limit:     limit,
		LastReset: time.Now().UTC(),
	}, gocache.NoExpiration)
}

func (s *Store) Aggregate() (Snapshot, bool) {
	v, ok := s.cache.Get(aggregateKey)
	if !ok {
		return Snapshot{}, false
	}
	snap, ok := v.(Snapshot)
	return snap, ok
}

func (s *Store) SetLastValidated(key models.APIKey) {
	s.cache.Set(lastValidatedKey, key, gocache.NoExpiration)
}

func (s *Store) LastValidated() (models.APIKey, bool) {
	v, ok := s.cache.Get(lastValidatedKey)
	if !ok {
		return models.APIKey{}, false
	}
	key, ok := v.(models.APIKey)
	return key, ok
}
