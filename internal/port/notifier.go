package port

import "context"

type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notifier surfaces a human-readable message to the user. Calls are fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, severity Severity, message string)
}
