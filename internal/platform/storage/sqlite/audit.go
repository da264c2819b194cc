package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"

	"portal/internal/domain"
)

func WriteAuditLog(ctx context.Context, db *sql.DB, actorID int, action, target string, metadata map[string]string) error {
	metaJSON := ""
	if metadata != nil {
		if raw, err := json.Marshal(metadata); err == nil {
			metaJSON = string(raw)
		}
	}
	var actor any
	if actorID > 0 {
		actor = actorID
	}
	_, err := db.ExecContext(
		ctx,
		"INSERT INTO audit_log (actor_id, action, target, metadata, created_at) VALUES (?, ?, ?, ?, ?)",
		actor,
		action,
		target,
		metaJSON,
		now(),
	)
	return err
}

// ListAuditLogsForUser returns the most recent entries recorded for a user.
func ListAuditLogsForUser(ctx context.Context, db *sql.DB, userID, limit int) ([]domain.AuditLog, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.QueryContext(ctx, "SELECT audit_log.id, COALESCE(audit_log.actor_id, 0), COALESCE(user.username,''), audit_log.action, COALESCE(audit_log.target,''), COALESCE(audit_log.metadata,''), audit_log.created_at FROM audit_log LEFT JOIN user ON user.id = audit_log.actor_id WHERE audit_log.actor_id = ? ORDER BY audit_log.id DESC LIMIT ?", userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []domain.AuditLog
	for rows.Next() {
		var logEntry domain.AuditLog
		var actorID int64
		var created string
		if err := rows.Scan(&logEntry.ID, &actorID, &logEntry.ActorName, &logEntry.Action, &logEntry.Target, &logEntry.Metadata, &created); err != nil {
			return nil, err
		}
		if actorID > 0 {
			logEntry.ActorID = sql.NullInt64{Int64: actorID, Valid: true}
		}
		logEntry.CreatedAt = parseTime(created)
		logs = append(logs, logEntry)
	}
	return logs, rows.Err()
}
