package templatestore

import (
	"context"
	"encoding/json"
	"sync"

	dnderr "github.com/tianyouyingfan/local-simple-dnd-tool/internal/errors"

	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/domain/templates"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/uuid"
)

type inMemoryStore struct {
	mu        sync.RWMutex
	byID      map[string][]byte
	generator uuid.Generator
}

// NewInMemoryStore creates an in-memory template store pre-loaded with
// the default library.
func NewInMemoryStore(generator uuid.Generator) (Store, error) {
	s := &inMemoryStore{
		byID:      make(map[string][]byte),
		generator: generator,
	}
	for _, t := range SeedTemplates() {
		if err := s.Save(context.Background(), t); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *inMemoryStore) Save(ctx context.Context, template *templates.Template) error {
	if template == nil {
		return dnderr.InvalidArgument("template cannot be nil")
	}
	if template.Name == "" {
		return dnderr.InvalidArgument("template name cannot be empty")
	}
	if template.ID == "" {
		template.ID = s.generator.New()
	}

	data, err := json.Marshal(template)
	if err != nil {
		return dnderr.Wrap(err, "failed to marshal template")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[template.ID] = data
	return nil
}

func (s *inMemoryStore) Get(ctx context.Context, id string) (*templates.Template, error) {
	s.mu.RLock()
	data, exists := s.byID[id]
	s.mu.RUnlock()

	if !exists {
		return nil, dnderr.NotFoundf("template not found: %s", id)
	}
	return unmarshalTemplate(data)
}

func (s *inMemoryStore) GetByName(ctx context.Context, name string) (*templates.Template, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range all {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, dnderr.NotFoundf("template not found: %s", name)
}

func (s *inMemoryStore) List(ctx context.Context) ([]*templates.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*templates.Template, 0, len(s.byID))
	for _, data := range s.byID {
		t, err := unmarshalTemplate(data)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *inMemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[id]; !exists {
		return dnderr.NotFoundf("template not found: %s", id)
	}
	delete(s.byID, id)
	return nil
}

func unmarshalTemplate(data []byte) (*templates.Template, error) {
	var t templates.Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, dnderr.Wrap(err, "failed to unmarshal template")
	}
	return &t, nil
}
