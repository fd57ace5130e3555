package governance

import (
	"log/slog"
	"time"

	"schoolgle/internal/domain/repositories"
	govRepo "schoolgle/internal/domain/repositories/governance"
	"schoolgle/internal/domain/services"
	govSvc "schoolgle/internal/domain/services/governance"
)

// ConflictRecorder is told about every lost version race
type ConflictRecorder interface {
	RecordVersionConflict()
}

// Dependencies bundles the collaborators shared by the governance services
type Dependencies struct {
	Packs      govRepo.PackRepository
	Versions   govRepo.VersionRepository
	Approvals  govRepo.ApprovalRepository
	Exports    govRepo.ExportRepository
	Timeline   govRepo.TimelineRepository
	TxManager  repositories.TransactionManager
	Publisher  services.EventPublisher
	Authorizer services.TenantAuthorizer
	Templates  govSvc.TemplateCatalog
	Conflicts  ConflictRecorder // optional
	Logger     *slog.Logger
	Now        func() time.Time // optional, defaults to time.Now
}

func (d Dependencies) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
