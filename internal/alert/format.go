package alert

import (
	"encoding/json"
	"fmt"
)

// FormatPayload builds the webhook body for the given format.
func FormatPayload(format string, event AlertEvent) ([]byte, error) {
	switch format {
	case "slack":
		return formatSlack(event)
	case "pagerduty":
		return formatPagerDuty(event)
	default:
		return formatGeneric(event)
	}
}

func formatGeneric(event AlertEvent) ([]byte, error) {
	return json.Marshal(event)
}

func formatSlack(event AlertEvent) ([]byte, error) {
	payload := map[string]any{
		"blocks": []any{
			map[string]any{
				"type": "header",
				"text": map[string]any{
					"type": "plain_text",
					"text": fmt.Sprintf("txwarden: %s", event.Decision),
				},
			},
			map[string]any{
				"type": "section",
				"fields": []any{
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Safe:* %s", event.SafeAddress)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Tx:* %s", shortID(event.CorrelationID))},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Warning:* %s", orNone(event.Warning))},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Rationale:* %s", event.Rationale)},
				},
			},
		},
	}
	return json.Marshal(payload)
}

func formatPagerDuty(event AlertEvent) ([]byte, error) {
	severity := "info"
	switch {
	case event.Decision == "REJECTED":
		severity = "critical"
	case event.Warning != "":
		severity = "warning"
	}

	payload := map[string]any{
		"event_action": "trigger",
		"payload": map[string]any{
			"summary":  fmt.Sprintf("txwarden %s: %s", event.Decision, event.SafeAddress),
			"severity": severity,
			"source":   "txwarden",
			"custom_details": map[string]any{
				"correlation_id": event.CorrelationID,
				"safe_address":   event.SafeAddress,
				"warning":        event.Warning,
				"rationale":      event.Rationale,
			},
		},
	}
	return json.Marshal(payload)
}

func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12] + "..."
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
