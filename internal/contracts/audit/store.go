package audit

import (
	"context"

	"portal/internal/domain"
)

// Repository defines persistence operations for audit logs.
type Repository interface {
	WriteAuditLog(ctx context.Context, actorID int, action, target string, metadata map[string]string) error
	ListAuditLogsForUser(ctx context.Context, userID, limit int) ([]domain.AuditLog, error)
}
