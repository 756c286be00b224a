package alert

// Event types a webhook can subscribe to.
const (
	EventReviewRequired = "review_required"
	EventReviewDecision = "review_decision"
)

// AlertConfig defines a webhook alert destination.
type AlertConfig struct {
	URL     string            `yaml:"url"     json:"url"`
	Format  string            `yaml:"format"  json:"format"` // "generic", "slack", "pagerduty"
	Events  []string          `yaml:"events"  json:"events"` // ["review_required", "review_decision"]
	Headers map[string]string `yaml:"headers" json:"headers"`
}

// AlertEvent is the payload sent to webhook endpoints.
type AlertEvent struct {
	Timestamp          string   `json:"timestamp"`
	Type               string   `json:"type"`
	TicketID           string   `json:"ticket_id"`
	Product            string   `json:"product,omitempty"`
	OriginCountry      string   `json:"origin_country,omitempty"`
	DestinationCountry string   `json:"destination_country,omitempty"`
	HSCode             string   `json:"hs_code,omitempty"`
	Confidence         float64  `json:"confidence,omitempty"`
	Reasons            []string `json:"reasons,omitempty"`
	Decision           string   `json:"decision,omitempty"`
	Reviewer           string   `json:"reviewer,omitempty"`
	PolicyHash         string   `json:"policy_hash,omitempty"`
}
