package governance

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"schoolgle/internal/domain"
	models "schoolgle/internal/domain/models/governance"
	govRepo "schoolgle/internal/domain/repositories/governance"
	"schoolgle/internal/repository/postgres"
)

// PostgresPackRepository implements the PackRepository interface
type PostgresPackRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewPackRepository creates a new pack repository
func NewPackRepository(config *postgres.RepositoryConfig) govRepo.PackRepository {
	return &PostgresPackRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const packColumns = `id, organization_id, template_id, title, status, sections, current_version, created_by, created_at, updated_at`

// Create creates a new pack
func (r *PostgresPackRepository) Create(ctx context.Context, pack *models.Pack) error {
	sections, err := marshalSections(pack.Sections)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (organization_id, template_id, title, status, sections, current_version, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, r.tables.Packs)

	now := time.Now()
	if pack.CreatedAt.IsZero() {
		pack.CreatedAt = now
	}
	if pack.UpdatedAt.IsZero() {
		pack.UpdatedAt = now
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		pack.OrganizationID,
		pack.TemplateID,
		pack.Title,
		pack.Status,
		sections,
		pack.CurrentVersion,
		pack.CreatedBy,
		pack.CreatedAt,
		pack.UpdatedAt,
	).Scan(&pack.ID, &pack.CreatedAt, &pack.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create pack: %w", err)
	}

	return nil
}

// GetByID retrieves a pack within an organization
func (r *PostgresPackRepository) GetByID(ctx context.Context, id, orgID string) (*models.Pack, error) {
	return r.get(ctx, id, orgID, "")
}

// GetByIDForUpdate retrieves a pack and holds its row lock until the
// transaction in ctx commits or rolls back. Outside a transaction the lock is
// released as soon as the statement completes.
func (r *PostgresPackRepository) GetByIDForUpdate(ctx context.Context, id, orgID string) (*models.Pack, error) {
	return r.get(ctx, id, orgID, "FOR UPDATE")
}

func (r *PostgresPackRepository) get(ctx context.Context, id, orgID, lock string) (*models.Pack, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND organization_id = $2
		%s
	`, packColumns, r.tables.Packs, lock)

	executor := postgres.GetExecutor(ctx, r.pool)
	pack, err := scanPack(executor.QueryRow(ctx, query, id, orgID))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("pack %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get pack: %w", err)
	}

	return pack, nil
}

// List retrieves packs for an organization, ordered by updated_at DESC
func (r *PostgresPackRepository) List(ctx context.Context, orgID string, status *models.Status) ([]models.Pack, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE organization_id = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY updated_at DESC
	`, packColumns, r.tables.Packs)

	var statusArg *string
	if status != nil {
		s := string(*status)
		statusArg = &s
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, orgID, statusArg)
	if err != nil {
		return nil, fmt.Errorf("list packs: %w", err)
	}
	defer rows.Close()

	packs := []models.Pack{}
	for rows.Next() {
		pack, err := scanPack(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pack: %w", err)
		}
		packs = append(packs, *pack)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate packs: %w", err)
	}

	return packs, nil
}

// UpdateStatus sets status and updated_at
func (r *PostgresPackRepository) UpdateStatus(ctx context.Context, id, orgID string, status models.Status) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $1, updated_at = now()
		WHERE id = $2 AND organization_id = $3
	`, r.tables.Packs)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, status, id, orgID)
	if err != nil {
		return fmt.Errorf("update pack status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("pack %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// UpdateContent persists title and sections. The status predicate makes the
// write a no-op once the pack has been submitted or approved.
func (r *PostgresPackRepository) UpdateContent(ctx context.Context, pack *models.Pack) error {
	sections, err := marshalSections(pack.Sections)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, sections = $2, updated_at = now()
		WHERE id = $3 AND organization_id = $4 AND status IN ($5, $6)
		RETURNING status, updated_at
	`, r.tables.Packs)

	executor := postgres.GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		pack.Title,
		sections,
		pack.ID,
		pack.OrganizationID,
		models.StatusDraft,
		models.StatusChangesRequested,
	).Scan(&pack.Status, &pack.UpdatedAt)
	if err == nil {
		return nil
	}
	if !postgres.IsPgNoRowsError(err) {
		return fmt.Errorf("update pack content: %w", err)
	}

	// Nothing matched: either the pack is gone or it is no longer editable
	current, getErr := r.GetByID(ctx, pack.ID, pack.OrganizationID)
	if getErr != nil {
		return getErr
	}
	return &domain.InvalidTransitionError{Action: "edit", From: string(current.Status)}
}

// ReplaceSections persists sections and status
func (r *PostgresPackRepository) ReplaceSections(ctx context.Context, pack *models.Pack) error {
	sections, err := marshalSections(pack.Sections)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET sections = $1, status = $2, updated_at = now()
		WHERE id = $3 AND organization_id = $4
		RETURNING updated_at
	`, r.tables.Packs)

	executor := postgres.GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		sections,
		pack.Status,
		pack.ID,
		pack.OrganizationID,
	).Scan(&pack.UpdatedAt)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return fmt.Errorf("pack %s: %w", pack.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("replace pack sections: %w", err)
	}

	return nil
}

// NextVersion increments current_version in place. Callers normally already
// hold the row lock from GetByIDForUpdate; the UPDATE takes it otherwise.
func (r *PostgresPackRepository) NextVersion(ctx context.Context, id, orgID string) (int, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET current_version = current_version + 1
		WHERE id = $1 AND organization_id = $2
		RETURNING current_version
	`, r.tables.Packs)

	var next int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id, orgID).Scan(&next); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return 0, fmt.Errorf("pack %s: %w", id, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("allocate pack version: %w", err)
	}

	return next, nil
}

func scanPack(row pgx.Row) (*models.Pack, error) {
	var pack models.Pack
	var sections []byte
	err := row.Scan(
		&pack.ID,
		&pack.OrganizationID,
		&pack.TemplateID,
		&pack.Title,
		&pack.Status,
		&sections,
		&pack.CurrentVersion,
		&pack.CreatedBy,
		&pack.CreatedAt,
		&pack.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if pack.Sections, err = unmarshalSections(sections); err != nil {
		return nil, err
	}

	return &pack, nil
}

func marshalSections(sections []models.Section) ([]byte, error) {
	if sections == nil {
		sections = []models.Section{}
	}
	b, err := json.Marshal(sections)
	if err != nil {
		return nil, fmt.Errorf("marshal sections: %w", err)
	}
	return b, nil
}

func unmarshalSections(b []byte) ([]models.Section, error) {
	sections := []models.Section{}
	if len(b) == 0 {
		return sections, nil
	}
	if err := json.Unmarshal(b, &sections); err != nil {
		return nil, fmt.Errorf("unmarshal sections: %w", err)
	}
	return sections, nil
}
