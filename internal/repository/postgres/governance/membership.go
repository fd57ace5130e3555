package governance

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	models "schoolgle/internal/domain/models/governance"
	govRepo "schoolgle/internal/domain/repositories/governance"
	"schoolgle/internal/repository/postgres"
)

// PostgresMembershipRepository implements the MembershipRepository interface
type PostgresMembershipRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(config *postgres.RepositoryConfig) govRepo.MembershipRepository {
	return &PostgresMembershipRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// IsMember reports whether userID belongs to orgID
func (r *PostgresMembershipRepository) IsMember(ctx context.Context, orgID, userID string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s WHERE organization_id = $1 AND user_id = $2
		)
	`, r.tables.OrganizationMembers)

	var exists bool
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, orgID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check organization membership: %w", err)
	}

	return exists, nil
}

// Upsert adds a member or updates their role
func (r *PostgresMembershipRepository) Upsert(ctx context.Context, member *models.Member) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (organization_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (organization_id, user_id) DO UPDATE SET role = EXCLUDED.role
		RETURNING created_at
	`, r.tables.OrganizationMembers)

	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, member.OrganizationID, member.UserID, member.Role).Scan(&member.CreatedAt); err != nil {
		return fmt.Errorf("upsert organization member: %w", err)
	}

	return nil
}
