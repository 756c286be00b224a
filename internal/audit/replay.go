package audit

import (
	"fmt"
	"time"
)

// ReplayFilter holds filtering criteria for replaying the audit trail.
// Zero values match everything.
type ReplayFilter struct {
	EventType string
	TicketID  string
	From      time.Time
	To        time.Time
}

// ReplaySummary holds event counts and metadata for a replayed slice.
type ReplaySummary struct {
	Total           int    `json:"total"`
	Classifications int    `json:"classifications"`
	ReviewRequired  int    `json:"review_required"`
	Approved        int    `json:"approved"`
	Rejected        int    `json:"rejected"`
	FirstTimestamp  string `json:"first_timestamp"`
	LastTimestamp   string `json:"last_timestamp"`
}

// ReplayResult holds filtered events and their summary.
type ReplayResult struct {
	Filter  ReplayFilter  `json:"-"`
	Events  []Event       `json:"events"`
	Summary ReplaySummary `json:"summary"`
}

// payloadFields picks out the fields replay needs from either event shape.
type payloadFields struct {
	ReviewID string `json:"review_id"`
	Decision string `json:"decision"`
	Response struct {
		RequiresHumanReview bool    `json:"requires_human_review"`
		ReviewTicketID      *string `json:"review_ticket_id"`
	} `json:"response"`
}

func (p payloadFields) ticketID() string {
	if p.ReviewID != "" {
		return p.ReviewID
	}
	if p.Response.ReviewTicketID != nil {
		return *p.Response.ReviewTicketID
	}
	return ""
}

// Replay reads the audit log and returns events matching the filter.
func Replay(path string, filter ReplayFilter) (*ReplayResult, error) {
	events, err := ReadAll(path)
	if err != nil {
		return nil, err
	}

	result := &ReplayResult{Filter: filter}
	for _, e := range events {
		var fields payloadFields
		if err := e.DecodePayload(&fields); err != nil {
			continue // payload is not an object; nothing to match on
		}

		if filter.EventType != "" && e.EventType != filter.EventType {
			continue
		}
		if filter.TicketID != "" && fields.ticketID() != filter.TicketID {
			continue
		}

		if !filter.From.IsZero() || !filter.To.IsZero() {
			ts, err := time.Parse(TimestampFormat, e.CreatedAt)
			if err != nil {
				continue // skip unparseable timestamps
			}
			if !filter.From.IsZero() && ts.Before(filter.From) {
				continue
			}
			if !filter.To.IsZero() && ts.After(filter.To) {
				continue
			}
		}

		result.Events = append(result.Events, e)
		updateSummary(&result.Summary, e, fields)
	}

	return result, nil
}

func updateSummary(s *ReplaySummary, e Event, fields payloadFields) {
	s.Total++

	switch e.EventType {
	case EventClassification:
		s.Classifications++
		if fields.Response.RequiresHumanReview {
			s.ReviewRequired++
		}
	case EventReviewDecision:
		switch fields.Decision {
		case "approved":
			s.Approved++
		case "rejected":
			s.Rejected++
		}
	}

	if s.FirstTimestamp == "" {
		s.FirstTimestamp = e.CreatedAt
	}
	s.LastTimestamp = e.CreatedAt
}

// describe renders a one-line description of an event for timelines.
func describe(e Event) string {
	var fields payloadFields
	e.DecodePayload(&fields)

	switch e.EventType {
	case EventClassification:
		if id := fields.ticketID(); id != "" {
			return fmt.Sprintf("review required -> %s", id)
		}
		return "auto-approved"
	case EventReviewDecision:
		return fmt.Sprintf("%s %s", fields.ReviewID, fields.Decision)
	default:
		return ""
	}
}
