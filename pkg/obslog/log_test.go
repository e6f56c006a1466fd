package obslog

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerPrefixesScope(t *testing.T) {
	var buf bytes.Buffer
	l := New("brp-mcp").WithOutput(&buf)
	l.Printf("listening on %s", "127.0.0.1:15702")

	got := buf.String()
	if !strings.HasPrefix(got, "brp-mcp: ") {
		t.Fatalf("line = %q, want brp-mcp: prefix", got)
	}
	if !strings.Contains(got, "127.0.0.1:15702") {
		t.Fatalf("line = %q, want formatted message", got)
	}
}

func TestScopedLoggerNestsPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := New("brp-mcp").WithOutput(&buf).Scoped("recovery")
	l.Warnf("retrying after format error")

	got := buf.String()
	if !strings.HasPrefix(got, "brp-mcp/recovery: warning: ") {
		t.Fatalf("line = %q, want brp-mcp/recovery: warning: prefix", got)
	}
}
