package audit

import "time"

// Severity of an audit entry.
type Severity string

const (
	SeverityInfo    Severity = "Info"
	SeverityWarning Severity = "Warning"
	SeverityError   Severity = "Error"
)

const (
	MaxDetailsLength   = 4000
	MaxUserAgentLength = 500
	truncatedSuffix    = "... (truncated)"
)

// Log is one append-only audit row.
type Log struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	EntityName string    `json:"entity_name" gorm:"size:100;not null;index:idx_audit_entity"`
	EntityID   *uint     `json:"entity_id,omitempty" gorm:"index:idx_audit_entity"`
	Action     string    `json:"action" gorm:"size:50;not null;index"`
	UserID     string    `json:"user_id,omitempty" gorm:"size:64"`
	UserName   string    `json:"user_name,omitempty" gorm:"size:255"`
	Timestamp  time.Time `json:"timestamp" gorm:"column:occurred_at;not null;index"`
	IPAddress  string    `json:"ip_address,omitempty" gorm:"size:64"`
	UserAgent  string    `json:"user_agent,omitempty" gorm:"size:500"`
	Details    string    `json:"details,omitempty" gorm:"type:text"`
	Severity   Severity  `json:"severity" gorm:"size:20;not null"`
}

func (Log) TableName() string {
	return "audit_logs"
}

// Entry is what callers hand to the recorder.
type Entry struct {
	EntityName string
	EntityID   uint
	Action     string
	UserID     string
	UserName   string
	IPAddress  string
	UserAgent  string
	Details    string
	Severity   Severity
}

func (e Entry) toLog(at time.Time) Log {
	l := Log{
		EntityName: e.EntityName,
		Action:     e.Action,
		UserID:     e.UserID,
		UserName:   e.UserName,
		Timestamp:  at,
		IPAddress:  e.IPAddress,
		UserAgent:  truncate(e.UserAgent, MaxUserAgentLength, ""),
		Details:    truncate(e.Details, MaxDetailsLength, truncatedSuffix),
		Severity:   e.Severity,
	}
	if e.EntityID != 0 {
		id := e.EntityID
		l.EntityID = &id
	}
	if l.Severity == "" {
		l.Severity = SeverityInfo
	}
	return l
}

func truncate(s string, max int, suffix string) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + suffix
}
