package navstate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/HerbHall/adminlist/internal/dataprovider"
	"github.com/HerbHall/adminlist/internal/listparams"
)

// RedisKeyPrefix prefixes every navigation state key.
const RedisKeyPrefix = "adminlist:nav:"

// Hash fields of a navigation state key. list and params hold JSON and are
// written independently; updated_at is RFC 3339.
const (
	fieldList    = "list"
	fieldParams  = "params"
	fieldUpdated = "updated_at"
)

// Compile-time interface guard.
var _ Store = (*Redis)(nil)

// Redis stores navigation state as one hash per resource, which lets
// several server replicas share it.
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedis creates a Redis store. A positive ttl expires idle state.
func NewRedis(client redis.UniversalClient, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

type redisList struct {
	IDs   []dataprovider.Identifier `json:"ids"`
	Total *int                      `json:"total,omitempty"`
}

func redisKey(resource string) string { return RedisKeyPrefix + resource }

func (r *Redis) Snapshot(ctx context.Context, resource string) (ListState, error) {
	fields, err := r.client.HGetAll(ctx, redisKey(resource)).Result()
	if err != nil {
		return ListState{}, fmt.Errorf("get nav state %q: %w", resource, err)
	}
	if len(fields) == 0 {
		return ListState{}, ErrNotFound
	}

	var st ListState
	if raw, ok := fields[fieldList]; ok {
		var l redisList
		if err := json.Unmarshal([]byte(raw), &l); err != nil {
			return ListState{}, fmt.Errorf("decode nav state list %q: %w", resource, err)
		}
		st.IDs, st.Total = l.IDs, l.Total
	}
	if raw, ok := fields[fieldParams]; ok {
		var p listparams.Params
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return ListState{}, fmt.Errorf("decode nav state params %q: %w", resource, err)
		}
		st.Params = &p
	}
	if raw, ok := fields[fieldUpdated]; ok {
		st.UpdatedAt, _ = time.Parse(time.RFC3339Nano, raw)
	}
	return st, nil
}

func (r *Redis) SaveList(ctx context.Context, resource string, ids []dataprovider.Identifier, total *int) error {
	if ids == nil {
		ids = []dataprovider.Identifier{}
	}
	b, err := json.Marshal(redisList{IDs: ids, Total: total})
	if err != nil {
		return fmt.Errorf("encode nav state list %q: %w", resource, err)
	}
	return r.write(ctx, resource, fieldList, b)
}

func (r *Redis) SaveParams(ctx context.Context, resource string, p listparams.Params) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode nav state params %q: %w", resource, err)
	}
	return r.write(ctx, resource, fieldParams, b)
}

func (r *Redis) LoadParams(ctx context.Context, resource string) (listparams.Params, bool, error) {
	return loadParams(ctx, r, resource)
}

func (r *Redis) write(ctx context.Context, resource, field string, value []byte) error {
	key := redisKey(resource)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, field, string(value), fieldUpdated, time.Now().UTC().Format(time.RFC3339Nano))
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save nav state %s %q: %w", field, resource, err)
	}
	return nil
}
