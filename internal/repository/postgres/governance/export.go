package governance

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"schoolgle/internal/domain"
	models "schoolgle/internal/domain/models/governance"
	govRepo "schoolgle/internal/domain/repositories/governance"
	"schoolgle/internal/repository/postgres"
)

// PostgresExportRepository implements the ExportRepository interface
type PostgresExportRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewExportRepository creates a new export repository
func NewExportRepository(config *postgres.RepositoryConfig) govRepo.ExportRepository {
	return &PostgresExportRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create records an export request
func (r *PostgresExportRepository) Create(ctx context.Context, record *models.ExportRecord) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (pack_id, organization_id, version_number, format, file_url, requested_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, r.tables.PackExports)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		record.PackID,
		record.OrganizationID,
		record.VersionNumber,
		record.Format,
		record.FileURL,
		record.RequestedBy,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("pack %s: %w", record.PackID, domain.ErrNotFound)
		}
		return fmt.Errorf("create pack export: %w", err)
	}

	return nil
}

// ListByPack returns export records for a pack, newest first
func (r *PostgresExportRepository) ListByPack(ctx context.Context, packID, orgID string) ([]models.ExportRecord, error) {
	query := fmt.Sprintf(`
		SELECT id, pack_id, organization_id, version_number, format, file_url, requested_by, created_at
		FROM %s
		WHERE pack_id = $1 AND organization_id = $2
		ORDER BY created_at DESC
	`, r.tables.PackExports)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, packID, orgID)
	if err != nil {
		return nil, fmt.Errorf("list pack exports: %w", err)
	}
	defer rows.Close()

	records := []models.ExportRecord{}
	for rows.Next() {
		var record models.ExportRecord
		err := rows.Scan(
			&record.ID,
			&record.PackID,
			&record.OrganizationID,
			&record.VersionNumber,
			&record.Format,
			&record.FileURL,
			&record.RequestedBy,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan pack export: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pack exports: %w", err)
	}

	return records, nil
}
