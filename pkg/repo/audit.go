package repo

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"time"
)

// auditLogPath returns the append-only audit trail location.
func (r *Repo) auditLogPath() string {
	return filepath.Join(r.StrataDir, "logs", "audit.log")
}

var auditHeader = []string{"timestamp", "action", "user", "details", "category"}

// initAuditLog writes the CSV header for a fresh repository.
func (r *Repo) initAuditLog() error {
	f, err := os.OpenFile(r.auditLogPath(), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return fmt.Errorf("init audit log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(auditHeader); err != nil {
		return fmt.Errorf("init audit log: %w", err)
	}
	w.Flush()
	return w.Error()
}

// auditEnabled reports whether security.auditlog is turned on in config.
func (r *Repo) auditEnabled() bool {
	cfg, err := r.LoadMergedConfig()
	if err != nil {
		return false
	}
	v, ok := cfg.Get("security.auditlog")
	return ok && v == "true"
}

// Audit appends one record to the audit trail when auditing is enabled.
// Audit failures never fail the operation being recorded; the trail is an
// observability surface, not a transaction participant.
func (r *Repo) Audit(action, details, category string) {
	if !r.auditEnabled() {
		return
	}

	username := "unknown"
	if u, err := user.Current(); err == nil && u.Username != "" {
		username = u.Username
	}

	f, err := os.OpenFile(r.auditLogPath(), os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	w := csv.NewWriter(f)
	_ = w.Write([]string{
		time.Now().UTC().Format(time.RFC3339),
		action,
		username,
		details,
		category,
	})
	w.Flush()
}

// AuditEntry is one parsed record from the audit trail.
type AuditEntry struct {
	Timestamp string
	Action    string
	User      string
	Details   string
	Category  string
}

// ReadAuditLog returns the recorded entries, oldest first. The header row is
// skipped. A missing log yields no entries.
func (r *Repo) ReadAuditLog() ([]AuditEntry, error) {
	f, err := os.Open(r.auditLogPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read audit log: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = len(auditHeader)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}

	var entries []AuditEntry
	for i, rec := range records {
		if i == 0 && rec[0] == auditHeader[0] {
			continue
		}
		entries = append(entries, AuditEntry{
			Timestamp: rec[0],
			Action:    rec[1],
			User:      rec[2],
			Details:   rec[3],
			Category:  rec[4],
		})
	}
	return entries, nil
}
