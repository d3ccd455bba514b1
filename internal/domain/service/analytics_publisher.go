package service

import (
	"context"
	"time"
)

// ProfileEvent is a profile-scoped analytics event shipped to the external
// sink. Delivery is fire-and-forget: the engine never blocks a mutation on
// the sink and never surfaces sink failures to the caller.
type ProfileEvent struct {
	RequestID string         `json:"request_id,omitempty"` // For distributed tracing
	ProfileID string         `json:"profile_id"`
	SessionID string         `json:"session_id"`
	Action    string         `json:"action"`
	Data      map[string]any `json:"data,omitempty"`
	PageURL   string         `json:"page_url,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// AnalyticsPublisher defines the interface for shipping profile events to a
// message sink.
type AnalyticsPublisher interface {
	// PublishProfileEvent publishes one event for async processing.
	PublishProfileEvent(ctx context.Context, event *ProfileEvent) error

	// Close releases any resources held by the publisher.
	Close() error
}
