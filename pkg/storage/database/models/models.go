package models

import (
	"time"

	"gorm.io/gorm"
)

type KeyStatus string

const (
	StatusActive   KeyStatus = "Active"
	StatusInactive KeyStatus = "Inactive"
)

// APIKey is a named credential record. The secret is assigned once at
// creation and never regenerated; the usage counter only ever goes up.
type APIKey struct {
	gorm.Model
	UUID   string `gorm:"index:idx_api_key_uuid,unique"`
	Name   string
	Secret string    `gorm:"index:idx_api_key_secret,unique"`
	Status KeyStatus `gorm:"default:Active"`

	UsageCount        int64 `gorm:"default:0"`
	UsageLimitEnabled bool
	// NULL when the per-key limit is disabled
	UsageLimitValue *int64
}

func (APIKey) TableName() string {
	return "api_keys"
}

type User struct {
	gorm.Model

	Email       string `gorm:"index:idx_email_authtype,unique"`
	AuthType    string `gorm:"index:idx_email_authtype,unique"`
	AuthDetails string
}

// ValidationEvent is an audit record of a single validate-and-consume
// attempt. Granted is false for unknown, inactive, and over-limit
// secrets alike.
type ValidationEvent struct {
	gorm.Model
	EventID string `gorm:"index:idx_validation_event_id,unique"`
	KeyUUID string `gorm:"index"`
	Granted bool
	SeenAt  time.Time
}
