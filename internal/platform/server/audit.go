package server

import (
	"context"
	"errors"
)

// auditStatus records status as an audit event.
func auditStatus(err error) string {
	if err == nil {
		return "success"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	return "failure"
}

// mergeAuditMeta merges audit meta values into the target.
func mergeAuditMeta(meta map[string]string, extra map[string]string) map[string]string {
	if meta == nil {
		meta = map[string]string{}
	}
	for key, value := range extra {
		meta[key] = value
	}
	return meta
}

// AuditOutcome records the result of a security-relevant action. Write
// failures are logged, never returned.
func (s *Server) AuditOutcome(ctx context.Context, actorID int, action, target string, err error, meta map[string]string) {
	meta = mergeAuditMeta(meta, map[string]string{"status": auditStatus(err)})
	if err != nil {
		meta["error"] = err.Error()
	}
	if s.repos.Audit == nil {
		return
	}
	if werr := s.repos.Audit.WriteAuditLog(ctx, actorID, action, target, meta); werr != nil {
		s.logger.WarnContext(ctx, "audit write failed", "action", action, "err", werr)
	}
}
