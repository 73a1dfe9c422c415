// Package envelope - Envelope logging and audit
package envelope

import (
	"time"

	"go.uber.org/zap"
)

// AuditEntry is a log entry for an envelope
type AuditEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	InputHash  string    `json:"input_hash"`
	Historical bool      `json:"historical"`
	RequestID  string    `json:"request_id,omitempty"`
	ClientIP   string    `json:"client_ip,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	DurationMs int64     `json:"duration_ms,omitempty"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
}

// AuditLogger logs envelopes for audit and replay
type AuditLogger interface {
	Log(entry AuditEntry) error
}

// ZapAuditLogger writes audit entries through a zap logger
type ZapAuditLogger struct {
	Logger *zap.Logger
}

// Log logs an audit entry at info level
func (l *ZapAuditLogger) Log(entry AuditEntry) error {
	fields := []zap.Field{
		zap.Time("timestamp", entry.Timestamp),
		zap.String("inputHash", entry.InputHash),
		zap.Bool("historical", entry.Historical),
		zap.String("requestId", entry.RequestID),
		zap.String("clientIp", entry.ClientIP),
		zap.String("userAgent", entry.UserAgent),
		zap.Int64("durationMs", entry.DurationMs),
		zap.Bool("success", entry.Success),
	}
	if entry.Error != "" {
		fields = append(fields, zap.String("error", entry.Error))
	}
	l.Logger.Info("quote audit", fields...)
	return nil
}

// CreateAuditEntry creates an audit entry from an envelope
func CreateAuditEntry(envelope *QuoteEnvelope, requestID, clientIP, userAgent string) AuditEntry {
	return AuditEntry{
		Timestamp:  time.Now().UTC(),
		InputHash:  envelope.InputHash,
		Historical: envelope.IsHistorical(),
		RequestID:  requestID,
		ClientIP:   clientIP,
		UserAgent:  userAgent,
		Success:    true,
	}
}

// MarkFailed marks the audit entry as failed
func (e *AuditEntry) MarkFailed(err error) {
	e.Success = false
	e.Error = err.Error()
}

// SetDuration sets the duration
func (e *AuditEntry) SetDuration(d time.Duration) {
	e.DurationMs = d.Milliseconds()
}
