package alert

import (
	"encoding/json"
	"fmt"
	"strings"
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
	fields := []any{
		map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Ticket:* %s", event.TicketID)},
	}
	if event.Product != "" {
		fields = append(fields,
			map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Product:* %s", event.Product)},
			map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Route:* %s → %s", event.OriginCountry, event.DestinationCountry)},
			map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Confidence:* %.2f", event.Confidence)},
		)
	}
	if len(event.Reasons) > 0 {
		fields = append(fields,
			map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Reasons:* %s", strings.Join(event.Reasons, " "))})
	}
	if event.Decision != "" {
		fields = append(fields,
			map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Decision:* %s by %s", event.Decision, event.Reviewer)})
	}

	payload := map[string]any{
		"blocks": []any{
			map[string]any{
				"type": "header",
				"text": map[string]any{
					"type": "plain_text",
					"text": fmt.Sprintf("tariffwatch: %s", event.Type),
				},
			},
			map[string]any{
				"type":   "section",
				"fields": fields,
			},
		},
	}
	return json.Marshal(payload)
}

func formatPagerDuty(event AlertEvent) ([]byte, error) {
	severity := "info"
	switch {
	case event.Decision == "rejected":
		severity = "warning"
	case event.Type == EventReviewRequired && len(event.Reasons) > 1:
		severity = "warning"
	}

	payload := map[string]any{
		"event_action": "trigger",
		"payload": map[string]any{
			"summary":  fmt.Sprintf("tariffwatch %s: %s", event.Type, event.TicketID),
			"severity": severity,
			"source":   "tariffwatch",
			"custom_details": map[string]any{
				"product":    event.Product,
				"hs_code":    event.HSCode,
				"confidence": event.Confidence,
				"reasons":    event.Reasons,
				"decision":   event.Decision,
				"reviewer":   event.Reviewer,
			},
		},
	}
	return json.Marshal(payload)
}
