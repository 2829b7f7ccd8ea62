package battlestate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	dnderr "github.com/tianyouyingfan/local-simple-dnd-tool/internal/errors"

	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/domain/combat"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/uuid"
)

const battleIndexKey = "battles"

type redisRepository struct {
	client    redis.UniversalClient
	generator uuid.Generator
}

// NewRedisRepository creates a redis-backed battle state repository.
// Each encounter is stored as a JSON value under battle:<id>, with the
// IDs indexed in a set for listing.
func NewRedisRepository(client redis.UniversalClient, generator uuid.Generator) Repository {
	return &redisRepository{
		client:    client,
		generator: generator,
	}
}

func battleKey(id string) string {
	return fmt.Sprintf("battle:%s", id)
}

func (r *redisRepository) Save(ctx context.Context, encounter *combat.Encounter) error {
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

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, battleKey(encounter.ID), string(data), 0)
	pipe.SAdd(ctx, battleIndexKey, encounter.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return dnderr.Wrap(err, "failed to save encounter to redis")
	}
	return nil
}

func (r *redisRepository) Load(ctx context.Context, id string) (*combat.Encounter, error) {
	data, err := r.client.Get(ctx, battleKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, dnderr.NotFoundf("encounter not found: %s", id)
		}
		return nil, dnderr.Wrap(err, "failed to get encounter from redis")
	}

	var encounter combat.Encounter
	if err := json.Unmarshal(data, &encounter); err != nil {
		return nil, dnderr.Wrap(err, "failed to unmarshal encounter")
	}
	return combat.NormalizeEncounter(&encounter, r.generator), nil
}

func (r *redisRepository) Delete(ctx context.Context, id string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, battleKey(id))
	pipe.SRem(ctx, battleIndexKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return dnderr.Wrap(err, "failed to delete encounter from redis")
	}
	return nil
}

func (r *redisRepository) ListIDs(ctx context.Context) ([]string, error) {
	ids, err := r.client.SMembers(ctx, battleIndexKey).Result()
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to list encounters from redis")
	}
	return ids, nil
}
