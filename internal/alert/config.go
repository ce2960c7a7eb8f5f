package alert

// AlertConfig defines a webhook alert destination.
type AlertConfig struct {
	URL     string            `yaml:"url"     json:"url"`
	Format  string            `yaml:"format"  json:"format"` // "generic", "slack", "pagerduty"
	Events  []string          `yaml:"events"  json:"events"` // ["rejected", "approved", "warning_received"]
	Headers map[string]string `yaml:"headers" json:"headers"`
}

// AlertEvent is the payload sent to webhook endpoints.
type AlertEvent struct {
	Timestamp     string `json:"timestamp"`
	CorrelationID string `json:"correlation_id"`
	SafeAddress   string `json:"safe_address"`
	Decision      string `json:"decision"`
	Rationale     string `json:"rationale"`
	Warning       string `json:"warning,omitempty"`
	ConfigHash    string `json:"config_hash"`
	Type          string `json:"type,omitempty"` // "warning_received" etc.
}
