package governance

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	models "schoolgle/internal/domain/models/governance"
	govRepo "schoolgle/internal/domain/repositories/governance"
	"schoolgle/internal/repository/postgres"
)

// PostgresTimelineRepository implements the TimelineRepository interface
type PostgresTimelineRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewTimelineRepository creates a new timeline repository
func NewTimelineRepository(config *postgres.RepositoryConfig) govRepo.TimelineRepository {
	return &PostgresTimelineRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts a timeline entry
func (r *PostgresTimelineRepository) Create(ctx context.Context, entry *models.TimelineEntry) error {
	evidence := entry.EvidenceIDs
	if evidence == nil {
		evidence = []string{}
	}
	evidenceJSON, err := json.Marshal(evidence)
	if err != nil {
		return fmt.Errorf("marshal evidence ids: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (organization_id, user_id, title, description, entry_type, source_type, source_id,
			evidence_ids, category, subcategory, icon, color)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at
	`, r.tables.TimelineEntries)

	executor := postgres.GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		entry.OrganizationID,
		entry.UserID,
		entry.Title,
		entry.Description,
		entry.EntryType,
		entry.SourceType,
		entry.SourceID,
		evidenceJSON,
		entry.Category,
		entry.Subcategory,
		entry.Icon,
		entry.Color,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("create timeline entry: %w", err)
	}

	return nil
}

// List returns entries matching the filter, newest first
func (r *PostgresTimelineRepository) List(ctx context.Context, filter models.TimelineFilter) ([]models.TimelineEntry, error) {
	query := fmt.Sprintf(`
		SELECT id, organization_id, user_id, title, description, entry_type, source_type, source_id,
			evidence_ids, category, subcategory, icon, color, created_at
		FROM %s
		WHERE organization_id = $1
			AND ($2 = '' OR source_type = $2)
			AND ($3 = '' OR source_id = $3)
		ORDER BY created_at DESC
		LIMIT $4
	`, r.tables.TimelineEntries)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, filter.OrganizationID, filter.SourceType, filter.SourceID, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("list timeline entries: %w", err)
	}
	defer rows.Close()

	entries := []models.TimelineEntry{}
	for rows.Next() {
		var entry models.TimelineEntry
		var evidence []byte
		err := rows.Scan(
			&entry.ID,
			&entry.OrganizationID,
			&entry.UserID,
			&entry.Title,
			&entry.Description,
			&entry.EntryType,
			&entry.SourceType,
			&entry.SourceID,
			&evidence,
			&entry.Category,
			&entry.Subcategory,
			&entry.Icon,
			&entry.Color,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan timeline entry: %w", err)
		}
		entry.EvidenceIDs = []string{}
		if len(evidence) > 0 {
			if err := json.Unmarshal(evidence, &entry.EvidenceIDs); err != nil {
				return nil, fmt.Errorf("unmarshal evidence ids: %w", err)
			}
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timeline entries: %w", err)
	}

	return entries, nil
}
