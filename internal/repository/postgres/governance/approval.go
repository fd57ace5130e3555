package governance

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"schoolgle/internal/domain"
	models "schoolgle/internal/domain/models/governance"
	govRepo "schoolgle/internal/domain/repositories/governance"
	"schoolgle/internal/repository/postgres"
)

// PostgresApprovalRepository implements the ApprovalRepository interface
type PostgresApprovalRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewApprovalRepository creates a new approval repository
func NewApprovalRepository(config *postgres.RepositoryConfig) govRepo.ApprovalRepository {
	return &PostgresApprovalRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create appends an approval record
func (r *PostgresApprovalRepository) Create(ctx context.Context, approval *models.Approval) error {
	var sectionComments []byte
	if len(approval.SectionComments) > 0 {
		b, err := json.Marshal(approval.SectionComments)
		if err != nil {
			return fmt.Errorf("marshal section comments: %w", err)
		}
		sectionComments = b
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (pack_id, organization_id, version_number, action, actor_id, comments, section_comments)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, r.tables.PackApprovals)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		approval.PackID,
		approval.OrganizationID,
		approval.VersionNumber,
		approval.Action,
		approval.ActorID,
		approval.Comments,
		sectionComments,
	).Scan(&approval.ID, &approval.CreatedAt)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("pack %s: %w", approval.PackID, domain.ErrNotFound)
		}
		return fmt.Errorf("create pack approval: %w", err)
	}

	return nil
}

// ListByPack returns approval records for a pack, newest first
func (r *PostgresApprovalRepository) ListByPack(ctx context.Context, packID, orgID string) ([]models.Approval, error) {
	query := fmt.Sprintf(`
		SELECT id, pack_id, organization_id, version_number, action, actor_id, comments, section_comments, created_at
		FROM %s
		WHERE pack_id = $1 AND organization_id = $2
		ORDER BY created_at DESC
	`, r.tables.PackApprovals)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, packID, orgID)
	if err != nil {
		return nil, fmt.Errorf("list pack approvals: %w", err)
	}
	defer rows.Close()

	approvals := []models.Approval{}
	for rows.Next() {
		var approval models.Approval
		var sectionComments []byte
		err := rows.Scan(
			&approval.ID,
			&approval.PackID,
			&approval.OrganizationID,
			&approval.VersionNumber,
			&approval.Action,
			&approval.ActorID,
			&approval.Comments,
			&sectionComments,
			&approval.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan pack approval: %w", err)
		}
		if len(sectionComments) > 0 {
			if err := json.Unmarshal(sectionComments, &approval.SectionComments); err != nil {
				return nil, fmt.Errorf("unmarshal section comments: %w", err)
			}
		}
		approvals = append(approvals, approval)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pack approvals: %w", err)
	}

	return approvals, nil
}
