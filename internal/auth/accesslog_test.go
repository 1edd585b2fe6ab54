package auth

import (
	"fmt"
	"path/filepath"
	"testing"
)

func newTestLog(t *testing.T) *AccessLog {
	t.Helper()
	return NewAccessLog(filepath.Join(t.TempDir(), "admin-access.json"))
}

func TestAccessLogAppendAndRead(t *testing.T) {
	l := newTestLog(t)

	entries := []AccessLogEntry{
		{At: 1000, IP: "1.1.1.1", UA: "ua-1", User: "admin"},
		{At: 2000, IP: "2.2.2.2", UA: "ua-2", User: "admin"},
		{At: 3000, IP: "3.3.3.3", UA: "ua-3", User: "admin"},
	}
	for _, e := range entries {
		if err := l.Append(e); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, err := l.ReadRecent(2)
	if err != nil {
		t.Fatalf("ReadRecent failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ReadRecent(2) returned %d entries, want 2", len(got))
	}
	// Most recent first.
	if got[0].At != 3000 || got[1].At != 2000 {
		t.Errorf("ReadRecent order = [%d, %d], want [3000, 2000]", got[0].At, got[1].At)
	}
}

func TestAccessLogReadEmptyLog(t *testing.T) {
	l := newTestLog(t)

	got, err := l.ReadRecent(50)
	if err != nil {
		t.Fatalf("ReadRecent on absent file failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ReadRecent on empty log returned %d entries", len(got))
	}
}

func TestAccessLogCapEvictsOldest(t *testing.T) {
	l := newTestLog(t)

	for i := 0; i < maxLogEntries+1; i++ {
		entry := AccessLogEntry{
			At:   int64(i),
			IP:   fmt.Sprintf("10.0.0.%d", i%250),
			UA:   "test-agent",
			User: "admin",
		}
		if err := l.Append(entry); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}

	got, err := l.ReadRecent(0)
	if err != nil {
		t.Fatalf("ReadRecent failed: %v", err)
	}
	if len(got) != maxLogEntries {
		t.Fatalf("log holds %d entries after overflow, want %d", len(got), maxLogEntries)
	}
	// Entry 0 (the oldest) was evicted; the newest entry is first.
	if got[0].At != int64(maxLogEntries) {
		t.Errorf("newest entry At = %d, want %d", got[0].At, maxLogEntries)
	}
	if got[len(got)-1].At != 1 {
		t.Errorf("oldest retained entry At = %d, want 1", got[len(got)-1].At)
	}
}
