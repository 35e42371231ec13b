package database

import (
	"context"
	"errors"

	"github.com/keydeck/keydeck/pkg/config"
	"github.com/keydeck/keydeck/pkg/storage/database/gorm"
	"github.com/keydeck/keydeck/pkg/storage/database/memory"
	"github.com/keydeck/keydeck/pkg/storage/database/models"
)

// Database is the key store contract: a relational table of API key
// records plus the audit and user tables around it. Filter selects
// report "no match" as an empty result, not an error.
type Database interface {
	ListAPIKeys(ctx context.Context) ([]models.APIKey, error)
	InsertAPIKey(ctx context.Context, key models.APIKey) (models.APIKey, error)
	UpdateAPIKey(ctx context.Context, uuid string, name string, limitEnabled bool, limitValue *int64) (models.APIKey, error)
	DeleteAPIKey(ctx context.Context, uuid string) error
	FindActiveKeyBySecret(ctx context.Context, secret string) (models.APIKey, bool, error)

	// ConsumeAPIKey increments the usage counter by one in a single
	// conditional update. The second return is false when the key is
	// missing or already at its limit.
	ConsumeAPIKey(ctx context.Context, uuid string) (models.APIKey, bool, error)

	RecordValidation(ctx context.Context, event models.ValidationEvent) error

	CreateUser(email string, source string, details string) (*models.User, error)
	GetUser(userId uint) *models.User
}

func NewConnection(conf config.Database) (Database, error) {
	switch conf.Type {
	case "memory":
		return memory.NewMemoryDatabase(), nil
	case "sqlite", "postgres":
		return gorm.NewGorm(conf)
	}

	return nil, errors.New("unable to connect to any database")
}
