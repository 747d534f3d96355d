package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const detectionKeyPrefix = "detection:"

// DetectionStore implements repository.DetectionStore on Redis. The value is
// the raw last-observed signal id; an empty string is the sentinel meaning
// "no prior observation", which a missing key is equivalent to.
type DetectionStore struct {
	client *redis.Client
	ttl    time.Duration // 0 = durable until explicitly cleared
}

// NewDetectionStore creates a Redis-backed detection state store. A zero TTL
// keeps entries until explicitly cleared.
func NewDetectionStore(client *redis.Client, ttl time.Duration) *DetectionStore {
	return &DetectionStore{client: client, ttl: ttl}
}

func detectionKey(userID, actionName string) string {
	return detectionKeyPrefix + userID + ":" + actionName
}

// LastSignal returns the stored id, or "" when nothing has been observed.
func (s *DetectionStore) LastSignal(ctx context.Context, userID, actionName string) (string, error) {
	val, err := s.client.Get(ctx, detectionKey(userID, actionName)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("redis get detection state: %w", err)
	}
	return val, nil
}

// SetLastSignal stores the id under the configured TTL. Storing "" writes
// the empty sentinel.
func (s *DetectionStore) SetLastSignal(ctx context.Context, userID, actionName, id string) error {
	if err := s.client.Set(ctx, detectionKey(userID, actionName), id, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set detection state: %w", err)
	}
	return nil
}

// Clear removes the stored id entirely.
func (s *DetectionStore) Clear(ctx context.Context, userID, actionName string) error {
	if err := s.client.Del(ctx, detectionKey(userID, actionName)).Err(); err != nil {
		return fmt.Errorf("redis del detection state: %w", err)
	}
	return nil
}
