// internal/auth/accesslog.go
package auth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const maxLogEntries = 200

// AccessLogEntry records one successful admin login.
type AccessLogEntry struct {
	At   int64  `json:"at"` // epoch milliseconds
	IP   string `json:"ip"`
	UA   string `json:"ua"`
	User string `json:"user"`
}

// AccessLog is an append-only audit trail persisted as a JSON array, capped at
// the most recent 200 entries. Not built for high write concurrency; a mutex
// keeps the file whole under the handful of logins it actually sees.
type AccessLog struct {
	path string
	mu   sync.Mutex
}

func NewAccessLog(path string) *AccessLog {
	return &AccessLog{path: path}
}

func (l *AccessLog) ensureLocked() error {
	if _, err := os.Stat(l.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return &StorageError{Op: "stat", Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return &StorageError{Op: "mkdir", Err: err}
	}
	if err := os.WriteFile(l.path, []byte("[]"), 0644); err != nil {
		return &StorageError{Op: "create", Err: err}
	}
	return nil
}

func (l *AccessLog) readLocked() ([]AccessLogEntry, error) {
	if err := l.ensureLocked(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(l.path)
	if err != nil {
		return nil, &StorageError{Op: "read", Err: err}
	}
	var entries []AccessLogEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, &StorageError{Op: "decode", Err: err}
	}
	return entries, nil
}

// Append writes entry to the log, evicting the oldest entries beyond the cap.
func (l *AccessLog) Append(entry AccessLogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.readLocked()
	if err != nil {
		return err
	}
	entries = append(entries, entry)
	if len(entries) > maxLogEntries {
		entries = entries[len(entries)-maxLogEntries:]
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return &StorageError{Op: "encode", Err: err}
	}
	if err := os.WriteFile(l.path, data, 0644); err != nil {
		return &StorageError{Op: "write", Err: err}
	}
	return nil
}

// ReadRecent returns up to limit entries, most recent first. A limit of zero
// or less returns everything.
func (l *AccessLog) ReadRecent(limit int) ([]AccessLogEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.readLocked()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}
