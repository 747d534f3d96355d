package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/HexaTeam-By-Epitech/area-sub002/internal/domain"
	"github.com/HexaTeam-By-Epitech/area-sub002/pkg/database"
	apperrors "github.com/HexaTeam-By-Epitech/area-sub002/pkg/errors"
)

// AreaRepository implements repository.AreaRepository using PostgreSQL.
type AreaRepository struct {
	pool database.DBTX
}

// NewAreaRepository creates a new PostgreSQL-backed area repository.
func NewAreaRepository(pool database.DBTX) *AreaRepository {
	return &AreaRepository{pool: pool}
}

// Create inserts a new area.
func (r *AreaRepository) Create(ctx context.Context, area *domain.Area) error {
	configJSON, err := json.Marshal(area.Config)
	if err != nil {
		return fmt.Errorf("marshal area config: %w", err)
	}

	query := `
		INSERT INTO areas (id, user_id, action_name, reaction_name, config, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.pool.Exec(ctx, query,
		area.ID,
		area.UserID,
		area.ActionName,
		area.ReactionName,
		configJSON,
		area.Active,
		area.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert area: %w", err)
	}

	return nil
}

// GetByID retrieves an area by its ID.
func (r *AreaRepository) GetByID(ctx context.Context, id string) (*domain.Area, error) {
	query := `
		SELECT id, user_id, action_name, reaction_name, config, active, created_at
		FROM areas
		WHERE id = $1`

	area, err := scanArea(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("area", id)
		}
		return nil, fmt.Errorf("select area: %w", err)
	}
	return area, nil
}

// ListByUser returns all areas owned by the user, newest first.
func (r *AreaRepository) ListByUser(ctx context.Context, userID string) ([]domain.Area, error) {
	query := `
		SELECT id, user_id, action_name, reaction_name, config, active, created_at
		FROM areas
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("select areas by user: %w", err)
	}
	defer rows.Close()

	return collectAreas(rows)
}

// ListActive returns all active areas across all users, oldest first so that
// scheduler re-seeding after a restart is deterministic.
func (r *AreaRepository) ListActive(ctx context.Context) ([]domain.Area, error) {
	query := `
		SELECT id, user_id, action_name, reaction_name, config, active, created_at
		FROM areas
		WHERE active
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select active areas: %w", err)
	}
	defer rows.Close()

	return collectAreas(rows)
}

// Deactivate marks an area inactive. Deactivating an already-inactive area
// is a no-op; a missing area returns ErrNotFound.
func (r *AreaRepository) Deactivate(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `UPDATE areas SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate area: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("area", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArea(row rowScanner) (*domain.Area, error) {
	var (
		area       domain.Area
		configJSON []byte
	)
	if err := row.Scan(
		&area.ID,
		&area.UserID,
		&area.ActionName,
		&area.ReactionName,
		&configJSON,
		&area.Active,
		&area.CreatedAt,
	); err != nil {
		return nil, err
	}

	if len(configJSON) > 0 {
		if err := json.Unmarshal(configJSON, &area.Config); err != nil {
			return nil, fmt.Errorf("unmarshal area config: %w", err)
		}
	}
	if area.Config == nil {
		area.Config = map[string]string{}
	}

	return &area, nil
}

func collectAreas(rows pgx.Rows) ([]domain.Area, error) {
	var areas []domain.Area
	for rows.Next() {
		area, err := scanArea(rows)
		if err != nil {
			return nil, fmt.Errorf("scan area: %w", err)
		}
		areas = append(areas, *area)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate areas: %w", err)
	}
	return areas, nil
}
