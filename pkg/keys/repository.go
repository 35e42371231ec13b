package keys

import (
	"context"
	"strings"

	"github.com/keydeck/keydeck/pkg/storage/database"
	"github.com/keydeck/keydeck/pkg/storage/database/models"
	"github.com/rs/zerolog/log"
)

// Repository maps domain operations onto the key store. It owns the
// attribute validation rules and normalizes every store fault into a
// StoreError; validation failures never reach the store.
type Repository struct {
	db database.Database
}

func NewRepository(db database.Database) *Repository {
	return &Repository{db: db}
}

func validateAttributes(name string, limitEnabled bool, limitValue int64) error {
	if strings.TrimSpace(name) == "" {
		return ValidationError{Reason: "Key name is required"}
	}
	if limitEnabled && limitValue <= 0 {
		return ValidationError{Reason: "Usage limit must be a positive number"}
	}
	return nil
}

// List returns every key, newest first. Store faults propagate
// unchanged to the caller; there is no retry.
func (r *Repository) List(ctx context.Context) ([]models.APIKey, error) {
	keys, err := r.db.ListAPIKeys(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Unable to list API keys")
		return nil, StoreError{Err: err}
	}
	return keys, nil
}

func (r *Repository) Create(ctx context.Context, name string, secret string, limitEnabled bool, limitValue int64) (models.APIKey, error) {
	if err := validateAttributes(name, limitEnabled, limitValue); err != nil {
		return models.APIKey{}, err
	}

	key := models.APIKey{
		Name:              name,
		Secret:            secret,
		Status:            models.StatusActive,
		UsageCount:        0,
		UsageLimitEnabled: limitEnabled,
	}
	if limitEnabled {
		key.UsageLimitValue = &limitValue
	}

	created, err := r.db.InsertAPIKey(ctx, key)
	if err != nil {
		log.Error().Err(err).Msg("Unable to create API key")
		return models.APIKey{}, StoreError{Err: err}
	}
	return created, nil
}

// Update mutates only the name and limit fields. Status and secret are
// immutable after creation.
func (r *Repository) Update(ctx context.Context, id string, name string, limitEnabled bool, limitValue int64) (models.APIKey, error) {
	if err := validateAttributes(name, limitEnabled, limitValue); err != nil {
		return models.APIKey{}, err
	}

	var value *int64
	if limitEnabled {
		value = &limitValue
	}

	updated, err := r.db.UpdateAPIKey(ctx, id, name, limitEnabled, value)
	if err != nil {
		log.Error().Err(err).Str("key_id", id).Msg("Unable to update API key")
		return models.APIKey{}, StoreError{Err: err}
	}
	return updated, nil
}

// Delete removes the record. Deleting an id that no longer exists is
// not guaranteed to fail.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.db.DeleteAPIKey(ctx, id); err != nil {
		log.Error().Err(err).Str("key_id", id).Msg("Unable to delete API key")
		return StoreError{Err: err}
	}
	return nil
}

// FindBySecret returns the single Active key whose secret matches
// exactly. A missing or inactive record is an empty result, not an
// error.
func (r *Repository) FindBySecret(ctx context.Context, secret string) (models.APIKey, bool, error) {
	key, found, err := r.db.FindActiveKeyBySecret(ctx, secret)
	if err != nil {
		log.Error().Err(err).Msg("Unable to look up API key by secret")
		return models.APIKey{}, false, StoreError{Err: err}
	}
	return key, found, nil
}

// Consume performs the atomic read-and-increment-if-below-limit. False
// with no error means the key was missing, inactive, or exhausted.
func (r *Repository) Consume(ctx context.Context, id string) (models.APIKey, bool, error) {
	key, consumed, err := r.db.ConsumeAPIKey(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("key_id", id).Msg("Unable to consume API key usage")
		return models.APIKey{}, false, StoreError{Err: err}
	}
	return key, consumed, nil
}

func (r *Repository) RecordValidation(ctx context.Context, event models.ValidationEvent) error {
	if err := r.db.RecordValidation(ctx, event); err != nil {
		log.Error().Err(err).Msg("Unable to record validation event")
		return StoreError{Err: err}
	}
	return nil
}
