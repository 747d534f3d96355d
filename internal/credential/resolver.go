package credential

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/HexaTeam-By-Epitech/area-sub002/internal/crypto"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/domain"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/provider"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/repository"
	apperrors "github.com/HexaTeam-By-Epitech/area-sub002/pkg/errors"
)

// Resolver is the single path from a (user, provider) pair to a usable
// plaintext access token. Executors never touch the credential store or the
// cipher directly; everything token-related funnels through here so the
// refresh-once policy holds no matter which executor is calling.
type Resolver struct {
	store    repository.CredentialStore
	registry *provider.Registry
	cipher   *crypto.TokenCipher
	now      func() time.Time
}

// NewResolver creates a credential resolver.
func NewResolver(store repository.CredentialStore, registry *provider.Registry, cipher *crypto.TokenCipher) *Resolver {
	return &Resolver{
		store:    store,
		registry: registry,
		cipher:   cipher,
		now:      time.Now,
	}
}

// AccessToken resolves the plaintext access token for (user, provider),
// refreshing it first when the stored expiry has passed.
//
// Errors: ErrNoLinkedAccount when the user never linked the provider,
// ErrInvalidToken when the stored entry cannot be decrypted, and
// ErrAuthExhausted when a needed refresh fails.
func (r *Resolver) AccessToken(ctx context.Context, userID, providerKey string) (string, error) {
	token, _, err := r.resolve(ctx, userID, providerKey)
	return token, err
}

// Execute resolves a token and runs fn with it. When fn reports the upstream
// rejected the token (an error wrapping ErrInvalidToken), the resolver
// refreshes once and retries fn once; a second rejection, or a failed
// refresh, yields ErrAuthExhausted. At most one refresh happens per call,
// counting any expiry-driven refresh done while resolving.
func (r *Resolver) Execute(ctx context.Context, userID, providerKey string, fn func(ctx context.Context, accessToken string) error) error {
	token, refreshed, err := r.resolve(ctx, userID, providerKey)
	if err != nil {
		return err
	}

	err = fn(ctx, token)
	if err == nil || !errors.Is(err, apperrors.ErrInvalidToken) {
		return err
	}

	if refreshed {
		return fmt.Errorf("provider %s rejected a freshly refreshed token: %w", providerKey, apperrors.ErrAuthExhausted)
	}

	cred, gerr := r.store.Get(ctx, userID, providerKey)
	if gerr != nil {
		return fmt.Errorf("reload credential: %w", gerr)
	}
	token, rerr := r.refresh(ctx, cred)
	if rerr != nil {
		return rerr
	}

	if err := fn(ctx, token); err != nil {
		if errors.Is(err, apperrors.ErrInvalidToken) {
			return fmt.Errorf("provider %s rejected the token after refresh: %w", providerKey, apperrors.ErrAuthExhausted)
		}
		return err
	}
	return nil
}

// resolve loads, decrypts and (when expired) refreshes the credential. The
// second return value reports whether a refresh happened.
func (r *Resolver) resolve(ctx context.Context, userID, providerKey string) (string, bool, error) {
	cred, err := r.store.Get(ctx, userID, providerKey)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", false, apperrors.NoLinkedAccount(providerKey)
		}
		return "", false, fmt.Errorf("load credential: %w", err)
	}

	token := r.cipher.Decrypt(cred.AccessToken)
	if token == "" {
		// A stored entry that no longer decrypts means the cipher key rotated
		// or the entry is corrupt. Re-linking is the only way out.
		return "", false, fmt.Errorf("provider %s: undecryptable access token: %w", providerKey, apperrors.ErrInvalidToken)
	}

	if cred.Expired(r.now()) {
		fresh, err := r.refresh(ctx, cred)
		if err != nil {
			return "", false, err
		}
		return fresh, true, nil
	}

	return token, false, nil
}

// refresh exchanges the stored refresh token for a new pair and persists the
// result. Failures map to ErrAuthExhausted so callers treat all refresh dead
// ends uniformly.
func (r *Resolver) refresh(ctx context.Context, cred *domain.Credential) (string, error) {
	idp, ok := r.registry.Identity(cred.Provider)
	if !ok {
		return "", fmt.Errorf("no identity provider registered for %s: %w", cred.Provider, apperrors.ErrAuthExhausted)
	}

	refreshToken := r.cipher.Decrypt(cred.RefreshToken)
	if refreshToken == "" {
		return "", fmt.Errorf("provider %s: no usable refresh token: %w", cred.Provider, apperrors.ErrAuthExhausted)
	}

	pair, err := idp.Refresh(ctx, refreshToken)
	if err != nil {
		return "", fmt.Errorf("refresh %s token: %w: %w", cred.Provider, err, apperrors.ErrAuthExhausted)
	}

	access, err := r.cipher.Encrypt(pair.AccessToken)
	if err != nil {
		return "", fmt.Errorf("encrypt refreshed access token: %w", err)
	}
	cred.AccessToken = access
	cred.ExpiresAt = pair.ExpiresAt

	// Providers that do not rotate refresh tokens omit one; keep the old.
	if pair.RefreshToken != "" {
		rotated, err := r.cipher.Encrypt(pair.RefreshToken)
		if err != nil {
			return "", fmt.Errorf("encrypt rotated refresh token: %w", err)
		}
		cred.RefreshToken = rotated
	}

	if err := r.store.Save(ctx, cred); err != nil {
		return "", fmt.Errorf("persist refreshed credential: %w", err)
	}

	return pair.AccessToken, nil
}
