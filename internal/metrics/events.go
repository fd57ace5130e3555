package metrics

import (
	"context"

	"schoolgle/internal/domain/models/governance"
)

// transitionActions labels lifecycle events for schoolgle_pack_transitions_total
var transitionActions = map[governance.EventType]string{
	governance.EventPackCreated:          "create",
	governance.EventPackSubmitted:        "submit",
	governance.EventPackApproved:         "approve",
	governance.EventPackChangesRequested: "request_changes",
	governance.EventPackVersionRestored:  "restore",
}

// HandleEvent counts committed pack events. Registered as a bus observer.
func (m *Metrics) HandleEvent(_ context.Context, event governance.Event) error {
	if event.Type == governance.EventPackExportRequested {
		m.RecordExport(string(event.Format))
		return nil
	}
	if action, ok := transitionActions[event.Type]; ok {
		m.RecordTransition(action)
	}
	return nil
}

// RequestStarted and RequestFinished track in-flight HTTP requests
func (m *Metrics) RequestStarted()  { m.HTTPRequestsInFlight.Inc() }
func (m *Metrics) RequestFinished() { m.HTTPRequestsInFlight.Dec() }
