package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/HexaTeam-By-Epitech/area-sub002/internal/domain"
	apperrors "github.com/HexaTeam-By-Epitech/area-sub002/pkg/errors"
)

const credentialKeyPrefix = "credential:"

// CredentialStore implements repository.CredentialStore on Redis. Values are
// the JSON-encoded credential with ciphertext tokens; entries are durable
// (no TTL) and live until the user unlinks the provider.
type CredentialStore struct {
	client *redis.Client
}

// NewCredentialStore creates a Redis-backed credential store.
func NewCredentialStore(client *redis.Client) *CredentialStore {
	return &CredentialStore{client: client}
}

func credentialKey(userID, provider string) string {
	return credentialKeyPrefix + userID + ":" + provider
}

// Get retrieves the credential for (user, provider).
func (s *CredentialStore) Get(ctx context.Context, userID, provider string) (*domain.Credential, error) {
	data, err := s.client.Get(ctx, credentialKey(userID, provider)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("credential", userID+":"+provider)
		}
		return nil, fmt.Errorf("redis get credential: %w", err)
	}

	var cred domain.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("unmarshal credential: %w", err)
	}

	return &cred, nil
}

// Save persists the credential, overwriting any existing entry for the same
// (user, provider). Redis SET is atomic per key, so concurrent writers
// degrade to last-write-wins without corruption.
func (s *CredentialStore) Save(ctx context.Context, cred *domain.Credential) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}

	if err := s.client.Set(ctx, credentialKey(cred.UserID, cred.Provider), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set credential: %w", err)
	}

	return nil
}

// Delete clears the credential on unlink.
func (s *CredentialStore) Delete(ctx context.Context, userID, provider string) error {
	if err := s.client.Del(ctx, credentialKey(userID, provider)).Err(); err != nil {
		return fmt.Errorf("redis del credential: %w", err)
	}
	return nil
}
