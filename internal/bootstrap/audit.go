package bootstrap

import "context"

// AuditLog adalah catatan kejadian penting di level proses (startup, shutdown)
type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}
