package repository

import (
	"context"

	"github.com/HexaTeam-By-Epitech/area-sub002/internal/domain"
)

// AreaRepository defines persistence for area bindings. Areas are never
// hard-deleted; unbinding deactivates them.
type AreaRepository interface {
	// Create persists a new area.
	Create(ctx context.Context, area *domain.Area) error

	// GetByID retrieves an area by its ID.
	GetByID(ctx context.Context, id string) (*domain.Area, error)

	// ListByUser returns all areas owned by the user, newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.Area, error)

	// ListActive returns all active areas across all users.
	ListActive(ctx context.Context) ([]domain.Area, error)

	// Deactivate marks an area inactive. Returns ErrNotFound when no such
	// area exists; deactivating an already-inactive area is a no-op.
	Deactivate(ctx context.Context, id string) error
}

// CredentialStore holds the encrypted token pair per (user, provider).
type CredentialStore interface {
	// Get retrieves the credential. Returns ErrNotFound when the user has
	// never linked the provider.
	Get(ctx context.Context, userID, provider string) (*domain.Credential, error)

	// Save persists the credential, overwriting any existing one for the
	// same (user, provider). Single-key set, last write wins.
	Save(ctx context.Context, cred *domain.Credential) error

	// Delete clears the credential on unlink.
	Delete(ctx context.Context, userID, provider string) error
}

// DetectionStore is the dedup memory per (user, action): the last observed
// signal id that turns a stateless poll into an edge-triggered event.
type DetectionStore interface {
	// LastSignal returns the stored id, or "" when nothing has been observed
	// yet. The empty sentinel and a missing key are equivalent by design.
	LastSignal(ctx context.Context, userID, actionName string) (string, error)

	// SetLastSignal stores the id. An empty id writes the empty sentinel,
	// deliberately forgetting the previous observation.
	SetLastSignal(ctx context.Context, userID, actionName, id string) error

	// Clear removes the stored id entirely.
	Clear(ctx context.Context, userID, actionName string) error
}
