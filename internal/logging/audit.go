package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region audit-entry
// AuditEntry is a single row in the audit_log table.
type AuditEntry struct {
	Actor      string
	Action     string // "run" | "replay" | "estimate" | "decide" | "supersede"
	SubjectID  string // run ID, record ID, or scenario ID the action touched
	DetailJSON string
	CreatedAt  time.Time
}
// #endregion audit-entry

// #region log-audit
// LogAudit appends an audit entry. The audit_log table is append-only;
// nothing in this module updates or deletes its rows.
func LogAudit(db *sql.DB, entry AuditEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO audit_log (actor, action, subject_id, detail_json, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.Actor,
		entry.Action,
		nullIfEmpty(entry.SubjectID),
		nullIfEmpty(entry.DetailJSON),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log audit: %w", err)
	}
	return nil
}
// #endregion log-audit

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
