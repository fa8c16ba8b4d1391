package logging

import "log/slog"

// Common field names for consistent logging across the service.
const (
	FieldService  = "service"
	FieldChannel  = "channel"
	FieldThreadTS = "thread_ts"
	FieldEventID  = "event_id"
	FieldRunID    = "run_id"
	FieldItems    = "items"
	FieldIP       = "ip"
	FieldMethod   = "method"
	FieldPath     = "path"
	FieldStatus   = "status"
	FieldError    = "error"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// Channel returns a slog attribute for a Slack channel ID.
func Channel(id string) slog.Attr {
	return slog.String(FieldChannel, id)
}

// ThreadTS returns a slog attribute for a Slack thread timestamp.
func ThreadTS(ts string) slog.Attr {
	return slog.String(FieldThreadTS, ts)
}

// EventID returns a slog attribute for a Slack event ID.
func EventID(id string) slog.Attr {
	return slog.String(FieldEventID, id)
}

// RunID returns a slog attribute for an automation run ID.
func RunID(id string) slog.Attr {
	return slog.String(FieldRunID, id)
}

// Items returns a slog attribute for a grocery item count.
func Items(n int) slog.Attr {
	return slog.Int(FieldItems, n)
}

// IP returns a slog attribute for the IP address.
func IP(ip string) slog.Attr {
	return slog.String(FieldIP, ip)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}
