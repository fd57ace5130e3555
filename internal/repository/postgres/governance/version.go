package governance

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"schoolgle/internal/domain"
	models "schoolgle/internal/domain/models/governance"
	govRepo "schoolgle/internal/domain/repositories/governance"
	"schoolgle/internal/repository/postgres"
)

// PostgresVersionRepository implements the VersionRepository interface
type PostgresVersionRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewVersionRepository creates a new version repository
func NewVersionRepository(config *postgres.RepositoryConfig) govRepo.VersionRepository {
	return &PostgresVersionRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const versionColumns = `id, pack_id, organization_id, version_number, sections, trigger, created_by, change_summary, created_at`

// Create inserts a snapshot. The (pack_id, version_number) unique constraint
// turns a lost version race into a VersionConflictError.
func (r *PostgresVersionRepository) Create(ctx context.Context, version *models.Version) error {
	sections, err := marshalSections(version.Sections)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (pack_id, organization_id, version_number, sections, trigger, created_by, change_summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, r.tables.PackVersions)

	executor := postgres.GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		version.PackID,
		version.OrganizationID,
		version.VersionNumber,
		sections,
		version.Trigger,
		version.CreatedBy,
		version.ChangeSummary,
	).Scan(&version.ID, &version.CreatedAt)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.VersionConflictError{PackID: version.PackID, Version: version.VersionNumber}
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("pack %s: %w", version.PackID, domain.ErrNotFound)
		}
		return fmt.Errorf("create pack version: %w", err)
	}

	return nil
}

// GetByNumber retrieves one snapshot of a pack
func (r *PostgresVersionRepository) GetByNumber(ctx context.Context, packID, orgID string, versionNumber int) (*models.Version, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE pack_id = $1 AND organization_id = $2 AND version_number = $3
	`, versionColumns, r.tables.PackVersions)

	executor := postgres.GetExecutor(ctx, r.pool)
	version, err := scanVersion(executor.QueryRow(ctx, query, packID, orgID, versionNumber))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("version %d not found", versionNumber)}
		}
		return nil, fmt.Errorf("get pack version: %w", err)
	}

	return version, nil
}

// ListByPack retrieves all snapshots of a pack, newest first
func (r *PostgresVersionRepository) ListByPack(ctx context.Context, packID, orgID string) ([]models.Version, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE pack_id = $1 AND organization_id = $2
		ORDER BY version_number DESC
	`, versionColumns, r.tables.PackVersions)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, packID, orgID)
	if err != nil {
		return nil, fmt.Errorf("list pack versions: %w", err)
	}
	defer rows.Close()

	versions := []models.Version{}
	for rows.Next() {
		version, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pack version: %w", err)
		}
		versions = append(versions, *version)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pack versions: %w", err)
	}

	return versions, nil
}

func scanVersion(row pgx.Row) (*models.Version, error) {
	var version models.Version
	var sections []byte
	err := row.Scan(
		&version.ID,
		&version.PackID,
		&version.OrganizationID,
		&version.VersionNumber,
		&sections,
		&version.Trigger,
		&version.CreatedBy,
		&version.ChangeSummary,
		&version.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if version.Sections, err = unmarshalSections(sections); err != nil {
		return nil, err
	}

	return &version, nil
}
