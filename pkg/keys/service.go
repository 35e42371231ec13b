package keys

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/keydeck/keydeck/pkg/storage/database/models"
	"github.com/keydeck/keydeck/pkg/usage"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
)

// User-facing messages. Store faults all collapse into one of these;
// the underlying error only shows up in the logs.
const (
	msgCreateFailed = "Failed to create API key. Please try again later."
	msgEditFailed   = "Failed to update API key. Please try again later."
	msgDeleteFailed = "Failed to delete API key. Please try again later."
)

// Result is what the dashboard consumes. Errors never cross this
// boundary as panics or raw store faults.
type Result struct {
	Success bool           `json:"success"`
	Data    *models.APIKey `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// ValidationResult deliberately looks identical for an unknown secret,
// an inactive key, and an exhausted key. Callers learn nothing about
// why a key failed.
type ValidationResult struct {
	Valid bool           `json:"valid"`
	Key   *models.APIKey `json:"key,omitempty"`
}

// Service orchestrates the repository and the gate to implement the
// four product operations plus validate-and-consume.
type Service struct {
	repo      *Repository
	gate      Gate
	snapshots *usage.Store
}

func NewService(repo *Repository, gate Gate, snapshots *usage.Store) *Service {
	return &Service{
		repo:      repo,
		gate:      gate,
		snapshots: snapshots,
	}
}

// ListKeys returns every key, newest first, and refreshes the cached
// aggregate usage snapshot as a side effect.
func (s *Service) ListKeys(ctx context.Context) ([]models.APIKey, error) {
	keys, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, key := range keys {
		total += key.UsageCount
	}
	s.snapshots.SetAggregate(total, s.gate.AggregateLimit())

	return keys, nil
}

func (s *Service) CreateKey(ctx context.Context, name string, limitEnabled bool, limitValue int64) Result {
	secret, err := GenerateSecret()
	if err != nil {
		log.Error().Err(err).Msg("Unable to generate API key secret")
		return Result{Success: false, Error: msgCreateFailed}
	}

	key, err := s.repo.Create(ctx, name, secret, limitEnabled, limitValue)
	if err != nil {
		return failure(err, msgCreateFailed)
	}
	return Result{Success: true, Data: &key}
}

func (s *Service) EditKey(ctx context.Context, id string, name string, limitEnabled bool, limitValue int64) Result {
	key, err := s.repo.Update(ctx, id, name, limitEnabled, limitValue)
	if err != nil {
		return failure(err, msgEditFailed)
	}
	return Result{Success: true, Data: &key}
}

func (s *Service) DeleteKey(ctx context.Context, id string) Result {
	if err := s.repo.Delete(ctx, id); err != nil {
		return failure(err, msgDeleteFailed)
	}
	return Result{Success: true}
}

// ValidateAndConsume grants one request against the presented secret.
// The find and the increment are separate store calls, but the
// increment itself is conditional on the limit, so a key at limit-1
// can only be granted once under concurrent validation.
func (s *Service) ValidateAndConsume(ctx context.Context, secret string) ValidationResult {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return ValidationResult{Valid: false}
	}

	key, found, err := s.repo.FindBySecret(ctx, secret)
	if err != nil {
		return ValidationResult{Valid: false}
	}
	if !found || !s.gate.KeyWithinLimit(key) {
		s.recordValidation(ctx, key.UUID, false)
		return ValidationResult{Valid: false}
	}

	granted, consumed, err := s.repo.Consume(ctx, key.UUID)
	if err != nil || !consumed {
		s.recordValidation(ctx, key.UUID, false)
		return ValidationResult{Valid: false}
	}

	s.snapshots.SetLastValidated(granted)
	s.recordValidation(ctx, granted.UUID, true)

	return ValidationResult{Valid: true, Key: &granted}
}

// recordValidation is best effort; an audit write failure never turns
// a granted request into a denied one.
func (s *Service) recordValidation(ctx context.Context, keyUUID string, granted bool) {
	event := models.ValidationEvent{
		EventID: ulid.Make().String(),
		KeyUUID: keyUUID,
		Granted: granted,
		SeenAt:  time.Now().UTC(),
	}
	// the repository already logged any fault
	_ = s.repo.RecordValidation(ctx, event)
}

// failure passes validation messages through verbatim and hides store
// faults behind a generic message.
func failure(err error, storeMsg string) Result {
	var v ValidationError
	if errors.As(err, &v) {
		return Result{Success: false, Error: v.Reason}
	}
	return Result{Success: false, Error: storeMsg}
}
