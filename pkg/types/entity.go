package types

import (
	"time"

	"github.com/google/uuid"
)

type BaseEntity struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

type SoftDelete struct {
	IsDeleted bool `json:"-" db:"is_deleted"`
}

// Versioned is the optimistic concurrency token. Every successful write increments it.
type Versioned struct {
	Version int `json:"version" db:"version"`
}
