package battlestate

import (
	"context"
	"encoding/json"
	"sync"

	dnderr "github.com/tianyouyingfan/local-simple-dnd-tool/internal/errors"

	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/domain/combat"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/uuid"
)

type inMemoryRepository struct {
	mu         sync.RWMutex
	encounters map[string][]byte
	generator  uuid.Generator
}

// NewInMemoryRepository creates a new in-memory battle state repository
func NewInMemoryRepository(generator uuid.Generator) Repository {
	return &inMemoryRepository{
		encounters: make(map[string][]byte),
		generator:  generator,
	}
}

func (r *inMemoryRepository) Save(ctx context.Context, encounter *combat.Encounter) error {
	if encounter == nil {
		return dnderr.InvalidArgument("encounter cannot be nil")
	}
	if encounter.ID == "" {
		return dnderr.InvalidArgument("encounter ID cannot be empty")
	}

	data, err := json.Marshal(encounter)
	if err != nil {
		return dnderr.Wrap(err, "failed to marshal encounter")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.encounters[encounter.ID] = data
	return nil
}

func (r *inMemoryRepository) Load(ctx context.Context, id string) (*combat.Encounter, error) {
	r.mu.RLock()
	data, exists := r.encounters[id]
	r.mu.RUnlock()

	if !exists {
		return nil, dnderr.NotFoundf("encounter not found: %s", id)
	}

	var encounter combat.Encounter
	if err := json.Unmarshal(data, &encounter); err != nil {
		return nil, dnderr.Wrap(err, "failed to unmarshal encounter")
	}
	return combat.NormalizeEncounter(&encounter, r.generator), nil
}

func (r *inMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.encounters[id]; !exists {
		return dnderr.NotFoundf("encounter not found: %s", id)
	}
	delete(r.encounters, id)
	return nil
}

func (r *inMemoryRepository) ListIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.encounters))
	for id := range r.encounters {
		ids = append(ids, id)
	}
	return ids, nil
}
