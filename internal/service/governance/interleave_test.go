package governance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolgle/internal/domain"
	models "schoolgle/internal/domain/models/governance"
	govSvc "schoolgle/internal/domain/services/governance"
)

// interleave runs first until it holds the pack row lock, then starts second
// and lets first carry on only once second is queued behind that lock.
func (h *harness) interleave(first, second func() error) (firstErr, secondErr error) {
	h.t.Helper()

	queued := make(chan struct{})
	done := make(chan error, 1)
	var queuedOnce, startOnce sync.Once

	h.store.mu.Lock()
	h.store.onLockWait = func(string) { queuedOnce.Do(func() { close(queued) }) }
	h.store.afterLockPack = func(string) {
		startOnce.Do(func() {
			go func() { done <- second() }()
			select {
			case <-queued:
			case <-time.After(5 * time.Second):
			}
		})
	}
	h.store.mu.Unlock()

	defer func() {
		h.store.mu.Lock()
		h.store.onLockWait = nil
		h.store.afterLockPack = nil
		h.store.mu.Unlock()
	}()

	firstErr = first()
	select {
	case secondErr = <-done:
	case <-time.After(5 * time.Second):
		h.t.Fatal("second operation did not finish")
	}
	return firstErr, secondErr
}

func (h *harness) save(packID string, title string, sections []models.Section) func() error {
	return func() error {
		_, err := h.packs.UpdateSections(context.Background(), &govSvc.UpdateSectionsRequest{
			PackID:         packID,
			OrganizationID: h.orgID,
			UserID:         h.userID,
			Title:          &title,
			Sections:       sections,
		})
		return err
	}
}

func (h *harness) submit(packID string) func() error {
	return func() error {
		req := h.transition(packID)
		_, err := h.lifecycle.Submit(context.Background(), &req)
		return err
	}
}

func (h *harness) restore(packID string, n int) func() error {
	return func() error {
		_, err := h.lifecycle.RestoreVersion(context.Background(), &govSvc.RestoreVersionRequest{
			TransitionRequest: h.transition(packID),
			VersionNumber:     n,
		})
		return err
	}
}

func (h *harness) approve(packID string) func() error {
	return func() error {
		_, err := h.lifecycle.Approve(context.Background(), &govSvc.ApproveRequest{TransitionRequest: h.transition(packID)})
		return err
	}
}

func (h *harness) requestChanges(packID string) func() error {
	return func() error {
		_, err := h.lifecycle.RequestChanges(context.Background(), &govSvc.RequestChangesRequest{TransitionRequest: h.transition(packID)})
		return err
	}
}

// returnedForChanges leaves a pack in changes_requested with version 1 cut
func (h *harness) returnedForChanges(title string) *models.Pack {
	h.t.Helper()
	pack := h.createPack(title)
	require.NoError(h.t, h.submit(pack.ID)())
	require.NoError(h.t, h.requestChanges(pack.ID)())
	return pack
}

func (h *harness) pack(packID string) *models.Pack {
	h.t.Helper()
	pack, err := h.packs.GetPack(context.Background(), packID, h.orgID, h.userID)
	require.NoError(h.t, err)
	return pack
}

func (h *harness) version(packID string, n int) models.Version {
	h.t.Helper()
	versions, err := h.packs.ListVersions(context.Background(), packID, h.orgID, h.userID)
	require.NoError(h.t, err)
	for _, v := range versions {
		if v.VersionNumber == n {
			return v
		}
	}
	h.t.Fatalf("version %d not found", n)
	return models.Version{}
}

var editedSections = []models.Section{
	{ID: "summary", Title: "Executive Summary", Content: "Revised after governor feedback", EvidenceIDs: []string{"ev-2"}},
}

func TestUpdateSections_SubmitWaitsForSave(t *testing.T) {
	h := newHarness(t, LifecycleOptions{})
	pack := h.createPack("Spring Governor Pack")

	saveErr, submitErr := h.interleave(
		h.save(pack.ID, "Spring Governor Pack", editedSections),
		h.submit(pack.ID),
	)
	require.NoError(t, saveErr)
	require.NoError(t, submitErr)

	final := h.pack(pack.ID)
	assert.Equal(t, models.StatusSubmitted, final.Status)
	assert.Equal(t, 1, final.CurrentVersion)

	// The snapshot carries the content saved before the submit
	v1 := h.version(pack.ID, 1)
	assert.Equal(t, final.Sections, v1.Sections)
	require.Len(t, v1.Sections, 1)
	assert.Equal(t, "Revised after governor feedback", v1.Sections[0].Content)
}

func TestUpdateSections_RejectedWhileSubmitHoldsPack(t *testing.T) {
	h := newHarness(t, LifecycleOptions{})
	pack := h.createPack("Spring Governor Pack")

	submitErr, saveErr := h.interleave(
		h.submit(pack.ID),
		h.save(pack.ID, "Renamed", editedSections),
	)
	require.NoError(t, submitErr)
	assert.ErrorIs(t, saveErr, domain.ErrInvalidTransition)

	final := h.pack(pack.ID)
	assert.Equal(t, models.StatusSubmitted, final.Status)
	assert.Equal(t, "Spring Governor Pack", final.Title)
	assert.Equal(t, pack.Sections, final.Sections)
	assert.Equal(t, pack.Sections, h.version(pack.ID, 1).Sections)
}

func TestUpdateSections_StatusCheckedAtWrite(t *testing.T) {
	h := newHarness(t, LifecycleOptions{})
	pack := h.createPack("Spring Governor Pack")

	// The pack leaves draft after the save has read it
	var once sync.Once
	h.store.afterLockPack = func(id string) {
		once.Do(func() { h.setStatus(id, models.StatusSubmitted) })
	}
	err := h.save(pack.ID, "Renamed", editedSections)()
	h.store.afterLockPack = nil

	var invalid *domain.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "edit", invalid.Action)
	assert.Equal(t, string(models.StatusSubmitted), invalid.From)

	final := h.pack(pack.ID)
	assert.Equal(t, models.StatusSubmitted, final.Status)
	assert.Equal(t, "Spring Governor Pack", final.Title)
	assert.Equal(t, pack.Sections, final.Sections)
}

func TestRestoreVersion_SaveWaitsForRestore(t *testing.T) {
	h := newHarness(t, LifecycleOptions{})
	pack := h.returnedForChanges("Summer Governor Pack")

	restoreErr, saveErr := h.interleave(
		h.restore(pack.ID, 1),
		h.save(pack.ID, "Summer Governor Pack (final)", editedSections),
	)
	require.NoError(t, restoreErr)
	require.NoError(t, saveErr)

	// The save lands on top of the restored draft
	final := h.pack(pack.ID)
	assert.Equal(t, models.StatusDraft, final.Status)
	assert.Equal(t, 2, final.CurrentVersion)
	assert.Equal(t, "Summer Governor Pack (final)", final.Title)
	assert.Equal(t, "Revised after governor feedback", final.Sections[0].Content)
	assert.Equal(t, pack.Sections, h.version(pack.ID, 2).Sections)
}

func TestRestoreVersion_WaitsForSaveAndKeepsTitle(t *testing.T) {
	h := newHarness(t, LifecycleOptions{})
	pack := h.returnedForChanges("Summer Governor Pack")

	saveErr, restoreErr := h.interleave(
		h.save(pack.ID, "Summer Governor Pack (final)", editedSections),
		h.restore(pack.ID, 1),
	)
	require.NoError(t, saveErr)
	require.NoError(t, restoreErr)

	final := h.pack(pack.ID)
	assert.Equal(t, models.StatusDraft, final.Status)
	assert.Equal(t, 2, final.CurrentVersion)
	assert.Equal(t, "Summer Governor Pack (final)", final.Title)
	assert.Equal(t, pack.Sections, final.Sections)
}

// latestDecision maps the newest approval row to the status it implies
func (h *harness) latestDecision(packID string) models.Status {
	h.t.Helper()
	approvals, err := h.packs.ListApprovals(context.Background(), packID, h.orgID, h.userID)
	require.NoError(h.t, err)
	require.NotEmpty(h.t, approvals)
	switch approvals[0].Action {
	case models.ActionApproved:
		return models.StatusApproved
	case models.ActionChangesRequested:
		return models.StatusChangesRequested
	default:
		return models.StatusSubmitted
	}
}

func TestApprove_RequestChangesWaits(t *testing.T) {
	h := newHarness(t, LifecycleOptions{})
	pack := h.createPack("Autumn Governor Pack")
	require.NoError(t, h.submit(pack.ID)())

	approveErr, changesErr := h.interleave(h.approve(pack.ID), h.requestChanges(pack.ID))
	require.NoError(t, approveErr)
	require.NoError(t, changesErr)

	final := h.pack(pack.ID)
	assert.Equal(t, models.StatusChangesRequested, final.Status)
	assert.Equal(t, final.Status, h.latestDecision(pack.ID))
	_, approvals, _, _ := h.counts()
	assert.Equal(t, 3, approvals)
}

func TestRequestChanges_ApproveWaits(t *testing.T) {
	h := newHarness(t, LifecycleOptions{})
	pack := h.createPack("Autumn Governor Pack")
	require.NoError(t, h.submit(pack.ID)())

	changesErr, approveErr := h.interleave(h.requestChanges(pack.ID), h.approve(pack.ID))
	require.NoError(t, changesErr)
	require.NoError(t, approveErr)

	final := h.pack(pack.ID)
	assert.Equal(t, models.StatusApproved, final.Status)
	assert.Equal(t, final.Status, h.latestDecision(pack.ID))
}

func TestApprove_SecondApprovalRejectedOnceFirstCommits(t *testing.T) {
	h := newHarness(t, LifecycleOptions{})
	pack := h.createPack("Autumn Governor Pack")
	require.NoError(t, h.submit(pack.ID)())

	firstErr, secondErr := h.interleave(h.approve(pack.ID), h.approve(pack.ID))
	require.NoError(t, firstErr)
	assert.ErrorIs(t, secondErr, domain.ErrInvalidTransition)

	_, approvals, _, _ := h.counts()
	assert.Equal(t, 2, approvals)
}

func TestRequestExport_WaitsForRestore(t *testing.T) {
	h := newHarness(t, LifecycleOptions{})
	pack := h.returnedForChanges("Summer Governor Pack")

	var result *govSvc.ExportResult
	restoreErr, exportErr := h.interleave(
		h.restore(pack.ID, 1),
		func() error {
			var err error
			result, err = h.exports.RequestExport(context.Background(), &govSvc.ExportRequest{
				TransitionRequest: h.transition(pack.ID),
				Format:            "pdf",
			})
			return err
		},
	)
	require.NoError(t, restoreErr)
	require.NoError(t, exportErr)

	exports, err := h.exports.ListExports(context.Background(), pack.ID, h.orgID, h.userID)
	require.NoError(t, err)
	require.Len(t, exports, 1)
	assert.Equal(t, result.ExportID, exports[0].ID)
	assert.Equal(t, 2, exports[0].VersionNumber)
}
