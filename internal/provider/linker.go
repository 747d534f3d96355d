package provider

import (
	"context"
	"fmt"

	"github.com/HexaTeam-By-Epitech/area-sub002/internal/crypto"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/domain"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/repository"
)

// StoreLinker implements LinkingProvider on top of the credential store.
// Tokens arrive in plaintext and are encrypted before they are persisted.
type StoreLinker struct {
	key    string
	store  repository.CredentialStore
	cipher *crypto.TokenCipher
}

// NewStoreLinker creates a linking provider for the given provider key.
func NewStoreLinker(key string, store repository.CredentialStore, cipher *crypto.TokenCipher) *StoreLinker {
	return &StoreLinker{key: key, store: store, cipher: cipher}
}

// Key returns the provider key.
func (l *StoreLinker) Key() string { return l.key }

// Link encrypts the token pair and persists it, replacing any previous
// credential for the same user.
func (l *StoreLinker) Link(ctx context.Context, userID string, tokens domain.TokenPair) error {
	access, err := l.cipher.Encrypt(tokens.AccessToken)
	if err != nil {
		return fmt.Errorf("encrypt access token: %w", err)
	}
	refresh, err := l.cipher.Encrypt(tokens.RefreshToken)
	if err != nil {
		return fmt.Errorf("encrypt refresh token: %w", err)
	}

	cred := &domain.Credential{
		UserID:       userID,
		Provider:     l.key,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    tokens.ExpiresAt,
	}
	if err := l.store.Save(ctx, cred); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

// Unlink removes the stored credential. Unlinking an account that was never
// linked is a no-op.
func (l *StoreLinker) Unlink(ctx context.Context, userID string) error {
	if err := l.store.Delete(ctx, userID, l.key); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}
