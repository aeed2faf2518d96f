// Package httpapi exposes the scheduler's internal operations API.
//
// The router serves the following endpoints, all guarded by the
// X-Scheduler-Secret header except the health and metrics probes:
//   - POST /internal/sessions/{id}/provision: creates the provider meeting
//     for a session and returns the updated `sessionDTO`. Returns 409 when
//     the session already owns a meeting resource.
//   - POST /internal/sessions/{id}/notify: dispatches the session's
//     notifications and returns the per-recipient `notificationReportDTO`.
//   - POST /internal/schedules/weekly: expands a weekly recurrence into
//     session rows. Body: the `weeklyScheduleRequest` payload defined in
//     schedule_handler.go.
//   - POST /internal/poll: runs one poll cycle. Body: {"forced":bool}
//     (optional). Returns the cycle's `pollSummaryDTO`.
//   - GET /healthz: liveness probe, no authentication.
//   - GET /metrics: Prometheus exposition, no authentication.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package httpapi
