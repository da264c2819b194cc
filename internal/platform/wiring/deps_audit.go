package wiring

import (
	"context"

	"portal/internal/domain"
)

// Audit.
func (d Deps) ListAuditLogsForUser(ctx context.Context, userID, limit int) ([]domain.AuditLog, error) {
	return d.repos.Audit.ListAuditLogsForUser(ctx, userID, limit)
}
