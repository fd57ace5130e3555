package governance

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"schoolgle/internal/domain"
	models "schoolgle/internal/domain/models/governance"
	"schoolgle/internal/domain/repositories"
	govSvc "schoolgle/internal/domain/services/governance"
	"schoolgle/internal/service/audit"
	"schoolgle/internal/service/events"
	"schoolgle/internal/templates"
)

// memStore is an in-memory stand-in for the Postgres schema. Writes made
// inside memTxManager.ExecTx are journaled and undone if the transaction fails.
type memStore struct {
	mu        sync.Mutex
	clock     time.Time
	packs     map[string]*models.Pack
	versions  []models.Version
	approvals []models.Approval
	exports   []models.ExportRecord
	timeline  []models.TimelineEntry
	members   map[string]bool
	rowLocks  map[string]*sync.Mutex

	// test hooks
	beforeGetPack    func()
	afterLockPack    func(id string) // runs while the row lock is held
	onLockWait       func(id string) // runs when a locked read has to wait
	versionConflicts int // next N version inserts fail with a conflict
	timelineErr      error
	nextVersionCalls int
}

func newMemStore() *memStore {
	return &memStore{
		clock:   time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC),
		packs:   make(map[string]*models.Pack),
		members:  make(map[string]bool),
		rowLocks: make(map[string]*sync.Mutex),
	}
}

// tick advances the fake clock; callers hold s.mu
func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

type memTxKey struct{}

type memTx struct {
	undo   []func()
	locked map[string]*sync.Mutex
}

// lockRow blocks until the transaction in ctx holds the row lock for id.
// Outside a transaction nothing is held, like a FOR UPDATE in autocommit.
func (s *memStore) lockRow(ctx context.Context, id string) {
	tx, ok := ctx.Value(memTxKey{}).(*memTx)
	if !ok || tx.locked[id] != nil {
		return
	}

	s.mu.Lock()
	l, ok := s.rowLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.rowLocks[id] = l
	}
	onWait := s.onLockWait
	s.mu.Unlock()

	if !l.TryLock() {
		if onWait != nil {
			onWait(id)
		}
		l.Lock()
	}
	if tx.locked == nil {
		tx.locked = make(map[string]*sync.Mutex)
	}
	tx.locked[id] = l
}

func (tx *memTx) release() {
	for _, l := range tx.locked {
		l.Unlock()
	}
}

// journal registers an undo step; callers hold s.mu
func (s *memStore) journal(ctx context.Context, undo func()) {
	if tx, ok := ctx.Value(memTxKey{}).(*memTx); ok {
		tx.undo = append(tx.undo, undo)
	}
}

type memTxManager struct {
	store *memStore
	mu    sync.Mutex
	runs  int
}

func (m *memTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if _, ok := ctx.Value(memTxKey{}).(*memTx); ok {
		return fn(ctx)
	}
	m.mu.Lock()
	m.runs++
	m.mu.Unlock()

	tx := &memTx{}
	defer tx.release()
	if err := fn(context.WithValue(ctx, memTxKey{}, tx)); err != nil {
		m.store.mu.Lock()
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		m.store.mu.Unlock()
		return err
	}
	return nil
}

func (m *memTxManager) Runs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs
}

// --- packs ---

type memPackRepo struct{ s *memStore }

func copyPack(p *models.Pack) *models.Pack {
	c := *p
	c.Sections = models.CloneSections(p.Sections)
	return &c
}

func (r memPackRepo) Create(ctx context.Context, pack *models.Pack) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pack.ID = uuid.NewString()
	pack.UpdatedAt = r.s.tick()
	r.s.packs[pack.ID] = copyPack(pack)
	id := pack.ID
	r.s.journal(ctx, func() { delete(r.s.packs, id) })
	return nil
}

func (r memPackRepo) GetByID(ctx context.Context, id, orgID string) (*models.Pack, error) {
	if hook := r.s.beforeGetPack; hook != nil {
		hook()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.packs[id]
	if !ok || p.OrganizationID != orgID {
		return nil, fmt.Errorf("pack %s: %w", id, domain.ErrNotFound)
	}
	return copyPack(p), nil
}

func (r memPackRepo) GetByIDForUpdate(ctx context.Context, id, orgID string) (*models.Pack, error) {
	if hook := r.s.beforeGetPack; hook != nil {
		hook()
	}
	r.s.lockRow(ctx, id)

	r.s.mu.Lock()
	p, ok := r.s.packs[id]
	if !ok || p.OrganizationID != orgID {
		r.s.mu.Unlock()
		return nil, fmt.Errorf("pack %s: %w", id, domain.ErrNotFound)
	}
	pack := copyPack(p)
	after := r.s.afterLockPack
	r.s.mu.Unlock()

	if after != nil {
		after(id)
	}
	return pack, nil
}

func (r memPackRepo) List(ctx context.Context, orgID string, status *models.Status) ([]models.Pack, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Pack{}
	for _, p := range r.s.packs {
		if p.OrganizationID != orgID || (status != nil && p.Status != *status) {
			continue
		}
		out = append(out, *copyPack(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r memPackRepo) UpdateStatus(ctx context.Context, id, orgID string, status models.Status) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.packs[id]
	if !ok || p.OrganizationID != orgID {
		return fmt.Errorf("pack %s: %w", id, domain.ErrNotFound)
	}
	prev := copyPack(p)
	p.Status = status
	p.UpdatedAt = r.s.tick()
	r.s.journal(ctx, func() { r.s.packs[id] = prev })
	return nil
}

func (r memPackRepo) UpdateContent(ctx context.Context, pack *models.Pack) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.packs[pack.ID]
	if !ok || p.OrganizationID != pack.OrganizationID {
		return fmt.Errorf("pack %s: %w", pack.ID, domain.ErrNotFound)
	}
	if !p.Status.CanEdit() {
		return &domain.InvalidTransitionError{Action: "edit", From: string(p.Status)}
	}
	prev := copyPack(p)
	p.Title = pack.Title
	p.Sections = models.CloneSections(pack.Sections)
	p.UpdatedAt = r.s.tick()
	pack.Status = p.Status
	pack.UpdatedAt = p.UpdatedAt
	id := pack.ID
	r.s.journal(ctx, func() { r.s.packs[id] = prev })
	return nil
}

func (r memPackRepo) ReplaceSections(ctx context.Context, pack *models.Pack) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.packs[pack.ID]
	if !ok || p.OrganizationID != pack.OrganizationID {
		return fmt.Errorf("pack %s: %w", pack.ID, domain.ErrNotFound)
	}
	prev := copyPack(p)
	p.Sections = models.CloneSections(pack.Sections)
	p.Status = pack.Status
	p.UpdatedAt = r.s.tick()
	pack.UpdatedAt = p.UpdatedAt
	id := pack.ID
	r.s.journal(ctx, func() { r.s.packs[id] = prev })
	return nil
}

func (r memPackRepo) NextVersion(ctx context.Context, id, orgID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextVersionCalls++
	p, ok := r.s.packs[id]
	if !ok || p.OrganizationID != orgID {
		return 0, fmt.Errorf("pack %s: %w", id, domain.ErrNotFound)
	}
	p.CurrentVersion++
	next := p.CurrentVersion
	r.s.journal(ctx, func() {
		if cur, ok := r.s.packs[id]; ok && cur.CurrentVersion == next {
			cur.CurrentVersion--
		}
	})
	return next, nil
}

// --- versions ---

type memVersionRepo struct{ s *memStore }

func (r memVersionRepo) Create(ctx context.Context, v *models.Version) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.versionConflicts > 0 {
		r.s.versionConflicts--
		return &domain.VersionConflictError{PackID: v.PackID, Version: v.VersionNumber}
	}
	for _, existing := range r.s.versions {
		if existing.PackID == v.PackID && existing.VersionNumber == v.VersionNumber {
			return &domain.VersionConflictError{PackID: v.PackID, Version: v.VersionNumber}
		}
	}
	v.ID = uuid.NewString()
	v.CreatedAt = r.s.tick()
	stored := *v
	stored.Sections = models.CloneSections(v.Sections)
	r.s.versions = append(r.s.versions, stored)
	id := v.ID
	r.s.journal(ctx, func() {
		for i := range r.s.versions {
			if r.s.versions[i].ID == id {
				r.s.versions = append(r.s.versions[:i], r.s.versions[i+1:]...)
				return
			}
		}
	})
	return nil
}

func (r memVersionRepo) GetByNumber(ctx context.Context, packID, orgID string, n int) (*models.Version, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.versions {
		if v.PackID == packID && v.OrganizationID == orgID && v.VersionNumber == n {
			c := v
			c.Sections = models.CloneSections(v.Sections)
			return &c, nil
		}
	}
	return nil, &domain.NotFoundError{Message: fmt.Sprintf("version %d not found", n)}
}

func (r memVersionRepo) ListByPack(ctx context.Context, packID, orgID string) ([]models.Version, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Version{}
	for _, v := range r.s.versions {
		if v.PackID == packID && v.OrganizationID == orgID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VersionNumber > out[j].VersionNumber })
	return out, nil
}

// --- approvals, exports, timeline ---

type memApprovalRepo struct{ s *memStore }

func (r memApprovalRepo) Create(ctx context.Context, a *models.Approval) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a.ID = uuid.NewString()
	a.CreatedAt = r.s.tick()
	r.s.approvals = append(r.s.approvals, *a)
	n := len(r.s.approvals) - 1
	r.s.journal(ctx, func() { r.s.approvals = r.s.approvals[:n] })
	return nil
}

func (r memApprovalRepo) ListByPack(ctx context.Context, packID, orgID string) ([]models.Approval, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Approval{}
	for i := len(r.s.approvals) - 1; i >= 0; i-- {
		if a := r.s.approvals[i]; a.PackID == packID && a.OrganizationID == orgID {
			out = append(out, a)
		}
	}
	return out, nil
}

type memExportRepo struct{ s *memStore }

func (r memExportRepo) Create(ctx context.Context, e *models.ExportRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e.ID = uuid.NewString()
	e.CreatedAt = r.s.tick()
	r.s.exports = append(r.s.exports, *e)
	n := len(r.s.exports) - 1
	r.s.journal(ctx, func() { r.s.exports = r.s.exports[:n] })
	return nil
}

func (r memExportRepo) ListByPack(ctx context.Context, packID, orgID string) ([]models.ExportRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.ExportRecord{}
	for i := len(r.s.exports) - 1; i >= 0; i-- {
		if e := r.s.exports[i]; e.PackID == packID && e.OrganizationID == orgID {
			out = append(out, e)
		}
	}
	return out, nil
}

type memTimelineRepo struct{ s *memStore }

func (r memTimelineRepo) Create(ctx context.Context, e *models.TimelineEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.timelineErr != nil {
		return r.s.timelineErr
	}
	e.ID = uuid.NewString()
	e.CreatedAt = r.s.tick()
	r.s.timeline = append(r.s.timeline, *e)
	n := len(r.s.timeline) - 1
	r.s.journal(ctx, func() { r.s.timeline = r.s.timeline[:n] })
	return nil
}

func (r memTimelineRepo) List(ctx context.Context, f models.TimelineFilter) ([]models.TimelineEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.TimelineEntry{}
	for i := len(r.s.timeline) - 1; i >= 0 && len(out) < f.Limit; i-- {
		e := r.s.timeline[i]
		if e.OrganizationID != f.OrganizationID {
			continue
		}
		if (f.SourceType != "" && e.SourceType != f.SourceType) || (f.SourceID != "" && e.SourceID != f.SourceID) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// memAuthorizer admits users added with addMember
type memAuthorizer struct{ s *memStore }

func (a memAuthorizer) CanAccessOrganization(ctx context.Context, userID, orgID string) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if !a.s.members[orgID+"/"+userID] {
		return fmt.Errorf("access denied to organization %s: %w", orgID, domain.ErrForbidden)
	}
	return nil
}

type countingConflicts struct {
	mu sync.Mutex
	n  int
}

func (c *countingConflicts) RecordVersionConflict() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

// harness wires the services to the in-memory store, the real event bus and
// the real timeline writer.
type harness struct {
	t         *testing.T
	store     *memStore
	tx        *memTxManager
	bus       *events.Bus
	conflicts *countingConflicts
	announced []models.Event
	annMu     sync.Mutex

	lifecycle govSvc.LifecycleService
	exports   govSvc.ExportService
	packs     govSvc.PackService
	timeline  govSvc.TimelineService

	orgID  string
	userID string
}

func newHarness(t *testing.T, opts LifecycleOptions) *harness {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newMemStore()
	registry, err := templates.NewRegistry()
	if err != nil {
		t.Fatalf("load templates: %v", err)
	}

	h := &harness{
		t:         t,
		store:     store,
		tx:        &memTxManager{store: store},
		bus:       events.NewBus(logger),
		conflicts: &countingConflicts{},
		orgID:     uuid.NewString(),
		userID:    uuid.NewString(),
	}
	h.addMember(h.orgID, h.userID)

	writer := audit.NewTimelineWriter(memTimelineRepo{store}, logger)
	h.bus.Subscribe("timeline", writer.HandleEvent)
	h.bus.Observe("recorder", func(ctx context.Context, ev models.Event) error {
		h.annMu.Lock()
		h.announced = append(h.announced, ev)
		h.annMu.Unlock()
		return nil
	})

	deps := Dependencies{
		Packs:      memPackRepo{store},
		Versions:   memVersionRepo{store},
		Approvals:  memApprovalRepo{store},
		Exports:    memExportRepo{store},
		Timeline:   memTimelineRepo{store},
		TxManager:  h.tx,
		Publisher:  h.bus,
		Authorizer: memAuthorizer{store},
		Templates:  registry,
		Conflicts:  h.conflicts,
		Logger:     logger,
	}
	h.lifecycle = NewLifecycleService(deps, opts)
	h.exports = NewExportService(deps)
	h.packs = NewPackService(deps)
	h.timeline = NewTimelineService(deps)
	return h
}

func (h *harness) addMember(orgID, userID string) {
	h.store.mu.Lock()
	h.store.members[orgID+"/"+userID] = true
	h.store.mu.Unlock()
}

// createPack creates a draft pack through the service
func (h *harness) createPack(title string) *models.Pack {
	h.t.Helper()
	pack, err := h.packs.CreatePack(context.Background(), &govSvc.CreatePackRequest{
		OrganizationID: h.orgID,
		UserID:         h.userID,
		TemplateID:     "governor-termly-report",
		Title:          title,
		Sections: []models.Section{
			{ID: "summary", Title: "Executive Summary", Content: "Strong term", EvidenceIDs: []string{"ev-1"}},
			{ID: "finance", Title: "Finance", Content: "On budget"},
		},
	})
	if err != nil {
		h.t.Fatalf("create pack: %v", err)
	}
	return pack
}

// setStatus forces a pack into a status without going through the lifecycle
func (h *harness) setStatus(packID string, status models.Status) {
	h.store.mu.Lock()
	h.store.packs[packID].Status = status
	h.store.mu.Unlock()
}

func (h *harness) transition(packID string) govSvc.TransitionRequest {
	return govSvc.TransitionRequest{PackID: packID, OrganizationID: h.orgID, UserID: h.userID}
}

func (h *harness) counts() (versions, approvals, exports, timeline int) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return len(h.store.versions), len(h.store.approvals), len(h.store.exports), len(h.store.timeline)
}

func (h *harness) announcedTypes() []models.EventType {
	h.annMu.Lock()
	defer h.annMu.Unlock()
	out := make([]models.EventType, len(h.announced))
	for i, ev := range h.announced {
		out[i] = ev.Type
	}
	return out
}
