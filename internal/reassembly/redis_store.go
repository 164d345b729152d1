package reassembly

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"smsgate/internal/constants"
)

// RedisStore keeps fragments in a Redis hash per in-progress message, so a
// fleet of gateway instances can each receive a subset of the parts and
// still reassemble. The per-key TTL bounds what an abandoned message costs.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = constants.DefaultFragmentTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Append(ctx context.Context, part Part) ([]string, bool, error) {
	key := constants.CacheKeyPrefixFragment + part.key()

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, strconv.Itoa(part.Index), part.Text)
	pipe.Expire(ctx, key, s.ttl)
	have := pipe.HLen(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to buffer fragment %s: %w", key, err)
	}

	if have.Val() < int64(part.Total) {
		return nil, false, nil
	}

	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to collect fragments %s: %w", key, err)
	}
	texts := make([]string, part.Total)
	for idx, text := range fields {
		i, err := strconv.Atoi(idx)
		if err != nil || i < 1 || i > part.Total {
			return nil, false, fmt.Errorf("fragment key %s holds malformed index %q", key, idx)
		}
		texts[i-1] = text
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return nil, false, fmt.Errorf("failed to clear fragments %s: %w", key, err)
	}
	return texts, true, nil
}
