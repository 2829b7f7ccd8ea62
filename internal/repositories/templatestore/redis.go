package templatestore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	dnderr "github.com/tianyouyingfan/local-simple-dnd-tool/internal/errors"

	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/domain/templates"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/uuid"
)

const templateIndexKey = "templates"

type redisStore struct {
	client    redis.UniversalClient
	generator uuid.Generator
}

// NewRedisStore creates a redis-backed template store. Each template
// is a JSON value under template:<id> with the IDs indexed in a set;
// the default library is seeded on first use.
func NewRedisStore(ctx context.Context, client redis.UniversalClient, generator uuid.Generator) (Store, error) {
	s := &redisStore{client: client, generator: generator}

	seeded, err := client.Exists(ctx, templateIndexKey).Result()
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to check template index")
	}
	if seeded == 0 {
		for _, t := range SeedTemplates() {
			if err := s.Save(ctx, t); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

func templateKey(id string) string {
	return fmt.Sprintf("template:%s", id)
}

func (s *redisStore) Save(ctx context.Context, template *templates.Template) error {
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

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, templateKey(template.ID), string(data), 0)
	pipe.SAdd(ctx, templateIndexKey, template.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return dnderr.Wrap(err, "failed to save template to redis")
	}
	return nil
}

func (s *redisStore) Get(ctx context.Context, id string) (*templates.Template, error) {
	data, err := s.client.Get(ctx, templateKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, dnderr.NotFoundf("template not found: %s", id)
		}
		return nil, dnderr.Wrap(err, "failed to get template from redis")
	}
	return unmarshalTemplate(data)
}

func (s *redisStore) GetByName(ctx context.Context, name string) (*templates.Template, error) {
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

func (s *redisStore) List(ctx context.Context) ([]*templates.Template, error) {
	ids, err := s.client.SMembers(ctx, templateIndexKey).Result()
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to list templates from redis")
	}

	out := make([]*templates.Template, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			t, err := s.Get(ctx, id)
			if err != nil {
				return dnderr.Wrapf(err, "failed to get template %s", id)
			}
			out[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *redisStore) Delete(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, templateKey(id))
	pipe.SRem(ctx, templateIndexKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return dnderr.Wrap(err, "failed to delete template from redis")
	}
	return nil
}
