package battlestate

import (
	"context"

	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/domain/combat"
)

// Repository defines the interface for battle state storage operations
type Repository interface {
	// Save persists the full encounter aggregate
	Save(ctx context.Context, encounter *combat.Encounter) error

	// Load retrieves an encounter by ID, normalizing legacy shapes
	Load(ctx context.Context, id string) (*combat.Encounter, error)

	// Delete removes an encounter
	Delete(ctx context.Context, id string) error

	// ListIDs returns the IDs of every stored encounter
	ListIDs(ctx context.Context) ([]string, error)
}
