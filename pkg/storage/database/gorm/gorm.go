package gorm

import (
	"context"
	"errors"
	"fmt"

	"github.com/keydeck/keydeck/pkg/config"
	"github.com/keydeck/keydeck/pkg/storage/database/models"
	"github.com/keydeck/keydeck/pkg/util"
	"gorm.io/driver/postgres"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type Gorm struct {
	DSN string `mapstructure:"dsn"`
	db  *gorm.DB
}

func NewGorm(conf config.Database) (*Gorm, error) {
	rc := util.ConfigToStruct[Gorm](conf.Settings)
	var (
		db  *gorm.DB
		err error
	)
	switch conf.Type {
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(rc.DSN), &gorm.Config{})
	case "postgres":
		db, err = gorm.Open(postgres.Open(rc.DSN), &gorm.Config{})
	default:
		return nil, fmt.Errorf("unknown database type: %s", conf.Type)
	}
	if err != nil {
		return nil, err
	}

	rc.db = db

	err = db.AutoMigrate(
		&models.APIKey{},
		&models.User{},
		&models.ValidationEvent{},
	)
	if err != nil {
		return nil, err
	}

	return rc, nil
}

func (s *Gorm) ListAPIKeys(ctx context.Context) ([]models.APIKey, error) {
	var keys []models.APIKey
	res := s.db.WithContext(ctx).Order("created_at DESC").Find(&keys)
	if res.Error != nil {
		return nil, res.Error
	}
	return keys, nil
}

func (s *Gorm) InsertAPIKey(ctx context.Context, key models.APIKey) (models.APIKey, error) {
	key.UUID = uuid.New().String()
	if key.Status == "" {
		key.Status = models.StatusActive
	}

	res := s.db.WithContext(ctx).Create(&key)
	if res.Error != nil {
		return models.APIKey{}, res.Error
	}
	return key, nil
}

func (s *Gorm) UpdateAPIKey(ctx context.Context, keyUUID string, name string, limitEnabled bool, limitValue *int64) (models.APIKey, error) {
	res := s.db.WithContext(ctx).Model(&models.APIKey{}).
		Where("uuid = ?", keyUUID).
		Updates(map[string]any{
			"name":                name,
			"usage_limit_enabled": limitEnabled,
			"usage_limit_value":   limitValue,
		})
	if res.Error != nil {
		return models.APIKey{}, res.Error
	}
	if res.RowsAffected == 0 {
		return models.APIKey{}, gorm.ErrRecordNotFound
	}

	var key models.APIKey
	if res := s.db.WithContext(ctx).First(&key, "uuid = ?", keyUUID); res.Error != nil {
		return models.APIKey{}, res.Error
	}
	return key, nil
}

func (s *Gorm) DeleteAPIKey(ctx context.Context, keyUUID string) error {
	// Hard delete, no tombstone rows
	res := s.db.WithContext(ctx).Unscoped().Delete(&models.APIKey{}, "uuid = ?", keyUUID)
	return res.Error
}

func (s *Gorm) FindActiveKeyBySecret(ctx context.Context, secret string) (models.APIKey, bool, error) {
	var key models.APIKey
	res := s.db.WithContext(ctx).First(&key, "secret = ? AND status = ?", secret, models.StatusActive)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return models.APIKey{}, false, nil
		}
		return models.APIKey{}, false, res.Error
	}
	return key, true, nil
}

func (s *Gorm) ConsumeAPIKey(ctx context.Context, keyUUID string) (models.APIKey, bool, error) {
	// Check and increment in one statement so two concurrent
	// validations cannot both slip past the limit.
	res := s.db.WithContext(ctx).Model(&models.APIKey{}).
		Where("uuid = ? AND status = ? AND (usage_limit_enabled = ? OR usage_limit_value IS NULL OR usage_count < usage_limit_value)",
			keyUUID, models.StatusActive, false).
		Update("usage_count", gorm.Expr("usage_count + 1"))
	if res.Error != nil {
		return models.APIKey{}, false, res.Error
	}
	if res.RowsAffected == 0 {
		return models.APIKey{}, false, nil
	}

	var key models.APIKey
	if res := s.db.WithContext(ctx).First(&key, "uuid = ?", keyUUID); res.Error != nil {
		return models.APIKey{}, false, res.Error
	}
	return key, true, nil
}

func (s *Gorm) RecordValidation(ctx context.Context, event models.ValidationEvent) error {
	res := s.db.WithContext(ctx).Create(&event)
	return res.Error
}

func (s *Gorm) CreateUser(email string, source string, details string) (*models.User, error) {
	user := &models.User{
		Email:       email,
		AuthType:    source,
		AuthDetails: details,
	}

	res := s.db.Where(models.User{Email: email, AuthType: source}).FirstOrCreate(user)
	return user, res.Error
}

func (s *Gorm) GetUser(userId uint) *models.User {
	var user models.User
	tx := s.db.First(&user, userId)
	if tx.Error != nil {
		log.Error().Err(tx.Error).Msg("Unable to get user")
	}
	return &user
}
