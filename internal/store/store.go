package store

import (
	"context"

	"minicart/internal/domain"
)

// Store persists the cart snapshot under a single fixed key.
//
// Load returns (nil, nil) when nothing usable is stored: an absent value and
// a stored value that fails to parse are both reported as a miss, never as
// an error. Save overwrites any prior value.
type Store interface {
	Load(ctx context.Context) (*domain.Snapshot, error)
	Save(ctx context.Context, snapshot *domain.Snapshot) error
}
