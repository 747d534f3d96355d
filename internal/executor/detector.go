package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/HexaTeam-By-Epitech/area-sub002/internal/credential"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/domain"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/repository"
	apperrors "github.com/HexaTeam-By-Epitech/area-sub002/pkg/errors"
)

// FetchLatestFunc fetches the identifier of the newest upstream item using an
// already-resolved access token. An empty id with a nil error means the
// upstream list is empty.
type FetchLatestFunc func(ctx context.Context, accessToken string) (string, error)

// Detector turns a latest-item fetch into an edge-triggered signal by
// comparing the fetched id against the last one stored per (user, action).
// Identity is an exact string comparison: any change of the newest item,
// including deletion of the previous one, reads as a new edge.
type Detector struct {
	detections repository.DetectionStore
	resolver   *credential.Resolver
}

// NewDetector creates a detector over the given state store and resolver.
func NewDetector(detections repository.DetectionStore, resolver *credential.Resolver) *Detector {
	return &Detector{detections: detections, resolver: resolver}
}

// Detect runs one edge-detection poll for the area against providerKey.
//
// A user without a linked account yields a no-account signal, not an error.
// An empty upstream list resets the stored state so the next item triggers
// again. An unobtainable id yields unchanged and leaves the state alone.
func (d *Detector) Detect(ctx context.Context, area *domain.Area, providerKey string, fetch FetchLatestFunc) (domain.Signal, error) {
	var latest string
	err := d.resolver.Execute(ctx, area.UserID, providerKey, func(ctx context.Context, token string) error {
		id, err := fetch(ctx, token)
		if err != nil {
			return err
		}
		latest = id
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNoLinkedAccount) {
			return domain.NoAccount(), nil
		}
		if errors.Is(err, ErrUnobtainableID) {
			return domain.Unchanged(), nil
		}
		return domain.Unchanged(), err
	}

	last, err := d.detections.LastSignal(ctx, area.UserID, area.ActionName)
	if err != nil {
		return domain.Unchanged(), fmt.Errorf("load detection state: %w", err)
	}

	switch {
	case latest == "" && last == "":
		return domain.Unchanged(), nil

	case latest == "":
		// The upstream list emptied out. Reset so the next item, even a
		// re-addition of the old one, triggers again.
		if err := d.detections.SetLastSignal(ctx, area.UserID, area.ActionName, ""); err != nil {
			return domain.Unchanged(), fmt.Errorf("reset detection state: %w", err)
		}
		return domain.Unchanged(), nil

	case latest == last:
		return domain.Unchanged(), nil

	default:
		if err := d.detections.SetLastSignal(ctx, area.UserID, area.ActionName, latest); err != nil {
			return domain.Unchanged(), fmt.Errorf("store detection state: %w", err)
		}
		return domain.Triggered(latest), nil
	}
}
