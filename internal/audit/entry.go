package audit

// TimestampFormat is the UTC timestamp layout used in audit entries.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// AuditEntry is one line in the hash-chained JSONL audit log: a terminal
// arbitration decision for one correlation id. All fields are scalar (no
// map[string]any) to guarantee deterministic json.Marshal field order for
// reproducible hashing.
type AuditEntry struct {
	Timestamp     string `json:"ts"`
	CorrelationID string `json:"correlation_id"`
	SafeAddress   string `json:"safe_address"`
	Transfers     int    `json:"transfers"`
	Decision      string `json:"decision"`
	Rationale     string `json:"rationale"`
	Warning       string `json:"warning,omitempty"`
	ConfigHash    string `json:"config_hash"`
	PrevHash      string `json:"prev_hash"`
}
