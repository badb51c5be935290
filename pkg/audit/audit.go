package audit

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Structured data ids. 32473 is the documentation enterprise number (RFC 5612).
const (
	SDIDSubject = "subject@32473"
	SDIDAction  = "action@32473"
	SDIDAuth    = "auth@32473"
	SDIDTenant  = "tenant@32473"
)

// FacilityAuthPriv is LOG_AUTHPRIV.
const FacilityAuthPriv = 10

// Severity is an RFC5424 severity. Only the levels audit events use are named.
type Severity int

const (
	SeverityWarning Severity = 4
	SeverityInfo    Severity = 6
)

const (
	appName      = "ownership-manager"
	syslogTime   = "2006-01-02T15:04:05.000Z"
	nilValue     = "-"
	syslogFormat = "<%d>1 %s %s %s %d %s %s %s\n"
)

// Event is anything that renders as one syslog line.
type Event interface {
	MessageID() string
	Message() string
	Severity() Severity
	Facility() int
	StructuredData() map[string]map[string]string
}

// Logger writes events as RFC5424 lines. A nil *Logger discards everything.
type Logger struct {
	mu       sync.Mutex
	writer   io.Writer
	hostname string
	pid      int
	now      func() time.Time
}

// NewLogger writes to stdout.
func NewLogger() *Logger {
	hostname, _ := os.Hostname()
	return &Logger{
		writer:   os.Stdout,
		hostname: hostname,
		pid:      os.Getpid(),
		now:      time.Now,
	}
}

func (l *Logger) SetWriter(w io.Writer) {
	l.mu.Lock()
	l.writer = w
	l.mu.Unlock()
}

func (l *Logger) Log(event Event) {
	if l == nil {
		return
	}
	line := l.format(event)

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.writer, line)
}

func (l *Logger) format(event Event) string {
	host := l.hostname
	if host == "" {
		host = nilValue
	}
	sd := formatStructuredData(event.StructuredData())
	if sd == "" {
		sd = nilValue
	}
	return fmt.Sprintf(syslogFormat,
		event.Facility()*8+int(event.Severity()),
		l.now().UTC().Format(syslogTime),
		host, appName, l.pid,
		event.MessageID(), sd, event.Message())
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatStructuredData renders one [id k="v"...] element per id, ids and
// params sorted so lines are stable.
func formatStructuredData(sd map[string]map[string]string) string {
	var b strings.Builder
	for _, id := range sortedKeys(sd) {
		b.WriteByte('[')
		b.WriteString(id)
		params := sd[id]
		for _, k := range sortedKeys(params) {
			fmt.Fprintf(&b, " %s=%s", k, escapeSDValue(params[k]))
		}
		b.WriteByte(']')
	}
	return b.String()
}

var sdEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `]`, `\]`)

// escapeSDValue quotes a PARAM-VALUE (RFC5424 6.3.3).
func escapeSDValue(value string) string {
	return `"` + sdEscaper.Replace(value) + `"`
}
