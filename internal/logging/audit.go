package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AuditEventType names a user-visible state change.
type AuditEventType string

const (
	AuditCartAdd      AuditEventType = "cart_add"
	AuditCartChange   AuditEventType = "cart_change"
	AuditCartRemove   AuditEventType = "cart_remove"
	AuditCartClear    AuditEventType = "cart_clear"
	AuditCheckout     AuditEventType = "checkout"
	AuditSignup       AuditEventType = "signup"
	AuditLogin        AuditEventType = "login"
	AuditLoginFailed  AuditEventType = "login_failed"
	AuditLogout       AuditEventType = "logout"
	AuditImport       AuditEventType = "browser_import"
	AuditCatalogFetch AuditEventType = "catalog_fetch"
)

// AuditEvent is one line of .shop/logs/audit.jsonl.
type AuditEvent struct {
	Timestamp int64                  `json:"ts"`
	Type      AuditEventType         `json:"type"`
	Success   bool                   `json:"ok"`
	Message   string                 `json:"msg,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// AuditLogger appends audit events as JSON lines.
type AuditLogger struct {
	mu   sync.Mutex
	file *os.File
}

var (
	auditLogger *AuditLogger
	auditMu     sync.Mutex
)

// Audit returns the process audit logger. It is a no-op outside debug mode.
func Audit() *AuditLogger {
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditLogger != nil {
		return auditLogger
	}
	if !IsDebugMode() {
		return &AuditLogger{}
	}

	optsMu.RLock()
	dir := logsDir
	optsMu.RUnlock()
	if dir == "" {
		return &AuditLogger{}
	}

	f, err := os.OpenFile(filepath.Join(dir, "audit.jsonl"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open audit log: %v\n", err)
		return &AuditLogger{}
	}
	auditLogger = &AuditLogger{file: f}
	return auditLogger
}

// CloseAudit closes the audit file.
func CloseAudit() {
	auditMu.Lock()
	defer auditMu.Unlock()
	if auditLogger != nil && auditLogger.file != nil {
		auditLogger.file.Close()
	}
	auditLogger = nil
}

// Log writes one event.
func (a *AuditLogger) Log(event AuditEvent) {
	if a.file == nil {
		return
	}
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	_, _ = a.file.Write(append(data, '\n'))
}

// Record is shorthand for Log with key-value fields.
func (a *AuditLogger) Record(t AuditEventType, ok bool, keysAndValues ...interface{}) {
	if a.file == nil {
		return
	}
	fields := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	a.Log(AuditEvent{Type: t, Success: ok, Fields: fields})
}
