package templatestore

import (
	"context"

	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/domain/templates"
)

// Store defines the interface for combatant template storage
type Store interface {
	// Get retrieves a template by ID
	Get(ctx context.Context, id string) (*templates.Template, error)

	// GetByName retrieves a template by display name
	GetByName(ctx context.Context, name string) (*templates.Template, error)

	// List returns every stored template
	List(ctx context.Context) ([]*templates.Template, error)

	// Save stores a template, assigning an ID when missing
	Save(ctx context.Context, template *templates.Template) error

	// Delete removes a template
	Delete(ctx context.Context, id string) error
}
