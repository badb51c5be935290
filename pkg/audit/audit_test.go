package audit

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/doodlesbykumbi/ownership-manager/pkg/model"
)

func fixedLogger(buf *bytes.Buffer) *Logger {
	l := NewLogger()
	l.SetWriter(buf)
	l.hostname = "host1"
	l.pid = 42
	l.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 10_000_000, time.UTC) }
	return l
}

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := fixedLogger(&buf)

	logger.Log(TransferEvent{
		Tenant: "prod",
		Entry: model.AuditEntry{
			ObjectID:   "a1",
			ObjectType: model.ObjectTypeApp,
			OldOwnerID: "u1",
			NewOwnerID: "u2",
			ChangedBy:  "admin",
			Status:     model.AuditStatusSuccess,
		},
	})

	want := `<86>1 2024-05-06T07:08:09.010Z host1 ownership-manager 42 ownership-transfer ` +
		`[action@32473 operation="transfer" result="success"]` +
		`[auth@32473 user="admin"]` +
		`[subject@32473 new_owner="u2" object="a1" old_owner="u1" type="app"]` +
		`[tenant@32473 slug="prod"]` +
		` admin transferred app a1 from u1 to u2` + "\n"
	if buf.String() != want {
		t.Errorf("Log() =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestNilLoggerIsSilent(t *testing.T) {
	var l *Logger
	l.Log(TransferEvent{})
}

func TestTransferEvent(t *testing.T) {
	errMsg := "HTTP 403"
	tests := []struct {
		name    string
		event   TransferEvent
		wantMsg string
		wantSev Severity
		result  string
	}{
		{
			name: "success",
			event: TransferEvent{Entry: model.AuditEntry{
				ObjectID: "a1", ObjectType: model.ObjectTypeApp, ChangedBy: "admin",
				OldOwnerID: "u1", NewOwnerID: "u2", Status: model.AuditStatusSuccess,
			}},
			wantMsg: "admin transferred app a1 from u1 to u2",
			wantSev: SeverityInfo,
			result:  "success",
		},
		{
			name: "failure",
			event: TransferEvent{Entry: model.AuditEntry{
				ObjectID: "t1", ObjectType: model.ObjectTypeReloadTask, ChangedBy: "admin",
				OldOwnerID: "u1", NewOwnerID: "u2", Status: model.AuditStatusFailed, ErrorMessage: &errMsg,
			}},
			wantMsg: "admin tried to transfer reload_task t1 from u1 to u2: HTTP 403",
			wantSev: SeverityWarning,
			result:  "failure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.event.Message() != tt.wantMsg {
				t.Errorf("Message() = %q, want %q", tt.event.Message(), tt.wantMsg)
			}
			if tt.event.Severity() != tt.wantSev {
				t.Errorf("Severity() = %v, want %v", tt.event.Severity(), tt.wantSev)
			}
			if tt.event.MessageID() != "ownership-transfer" {
				t.Errorf("MessageID() = %v", tt.event.MessageID())
			}
			if got := tt.event.StructuredData()[SDIDAction]["result"]; got != tt.result {
				t.Errorf("result = %q, want %q", got, tt.result)
			}
		})
	}
}

func TestEscapeSDValue(t *testing.T) {
	got := escapeSDValue(`a"b\c]d`)
	want := `"a\"b\\c\]d"`
	if got != want {
		t.Errorf("escapeSDValue() = %s, want %s", got, want)
	}
	if formatStructuredData(nil) != "" {
		t.Error("expected empty structured data")
	}
	if !strings.HasPrefix(formatStructuredData(map[string]map[string]string{"x@1": {}}), "[x@1]") {
		t.Error("expected bare sdid block")
	}
}
