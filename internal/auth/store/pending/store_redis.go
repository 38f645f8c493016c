package pending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"unique/internal/auth/models"
	id "unique/pkg/domain"
	"unique/pkg/platform/sentinel"
)

const keyPrefix = "unique:pending:"

// RedisStore keeps pending authorizations as JSON with a Redis TTL, so any
// instance behind the load balancer can finish the consent step.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, ttl: models.PendingAuthorizationTTL}
}

func key(sessionID id.SessionID) string {
	return keyPrefix + sessionID.String()
}

func (s *RedisStore) Save(ctx context.Context, sessionID id.SessionID, p *models.PendingAuthorization) error {
	if p == nil {
		return fmt.Errorf("pending authorization is required: %w", sentinel.ErrInvalidState)
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal pending authorization: %w", err)
	}
	if err := s.client.Set(ctx, key(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store pending authorization: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, sessionID id.SessionID) (*models.PendingAuthorization, error) {
	data, err := s.client.Get(ctx, key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("pending authorization not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("load pending authorization: %w", err)
	}
	var p models.PendingAuthorization
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal pending authorization: %w", err)
	}
	return &p, nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID id.SessionID) error {
	if err := s.client.Del(ctx, key(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete pending authorization: %w", err)
	}
	return nil
}
