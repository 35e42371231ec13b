package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/keydeck/keydeck/pkg/storage/database/models"
	"gorm.io/gorm"
)

// MemoryDatabase keeps everything in process. It backs tests and local
// development; nothing survives a restart.
type MemoryDatabase struct {
	mu     sync.Mutex
	nextID uint
	keys   []models.APIKey
	events []models.ValidationEvent
	users  []models.User
}

func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{}
}

func (db *MemoryDatabase) ListAPIKeys(ctx context.Context) ([]models.APIKey, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	keys := make([]models.APIKey, len(db.keys))
	copy(keys, db.keys)
	// IDs are assigned in insertion order, so this is created_at desc
	// even when two inserts land on the same clock tick.
	sort.SliceStable(keys, func(i, j int) bool {
		return keys[i].ID > keys[j].ID
	})
	return keys, nil
}

func (db *MemoryDatabase) InsertAPIKey(ctx context.Context, key models.APIKey) (models.APIKey, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.nextID++
	key.ID = db.nextID
	key.UUID = uuid.New().String()
	key.CreatedAt = time.Now()
	key.UpdatedAt = key.CreatedAt
	if key.Status == "" {
		key.Status = models.StatusActive
	}

	db.keys = append(db.keys, key)
	return key, nil
}

func (db *MemoryDatabase) UpdateAPIKey(ctx context.Context, keyUUID string, name string, limitEnabled bool, limitValue *int64) (models.APIKey, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.keys {
		if db.keys[i].UUID == keyUUID {
			db.keys[i].Name = name
			db.keys[i].UsageLimitEnabled = limitEnabled
			db.keys[i].UsageLimitValue = limitValue
			db.keys[i].UpdatedAt = time.Now()
			return db.keys[i], nil
		}
	}
	return models.APIKey{}, gorm.ErrRecordNotFound
}

func (db *MemoryDatabase) DeleteAPIKey(ctx context.Context, keyUUID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.keys {
		if db.keys[i].UUID == keyUUID {
			db.keys = append(db.keys[:i], db.keys[i+1:]...)
			return nil
		}
	}

	// Deleting an id that is already gone is not an error
	return nil
}

func (db *MemoryDatabase) FindActiveKeyBySecret(ctx context.Context, secret string) (models.APIKey, bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, key := range db.keys {
		if key.Secret == secret && key.Status == models.StatusActive {
			return key, true, nil
		}
	}
	return models.APIKey{}, false, nil
}

func (db *MemoryDatabase) ConsumeAPIKey(ctx context.Context, keyUUID string) (models.APIKey, bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.keys {
		key := &db.keys[i]
		if key.UUID != keyUUID || key.Status != models.StatusActive {
			continue
		}
		if key.UsageLimitEnabled && key.UsageLimitValue != nil && key.UsageCount >= *key.UsageLimitValue {
			return models.APIKey{}, false, nil
		}
		key.UsageCount++
		key.UpdatedAt = time.Now()
		return *key, true, nil
	}
	return models.APIKey{}, false, nil
}

func (db *MemoryDatabase) RecordValidation(ctx context.Context, event models.ValidationEvent) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.events = append(db.events, event)
	return nil
}

func (db *MemoryDatabase) ValidationEvents() []models.ValidationEvent {
	db.mu.Lock()
	defer db.mu.Unlock()

	events := make([]models.ValidationEvent, len(db.events))
	copy(events, db.events)
	return events
}

func (db *MemoryDatabase) CreateUser(email string, source string, details string) (*models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.users {
		if db.users[i].Email == email && db.users[i].AuthType == source {
			return &db.users[i], nil
		}
	}

	user := models.User{
		Email:       email,
		AuthType:    source,
		AuthDetails: details,
	}
	user.ID = uint(len(db.users) + 1)
	db.users = append(db.users, user)
	return &db.users[len(db.users)-1], nil
}

func (db *MemoryDatabase) GetUser(userId uint) *models.User {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.users {
		if db.users[i].ID == userId {
			return &db.users[i]
		}
	}
	return &models.User{}
}
