// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"
)

// ProfileType distinguishes the two identity states a profile can be in.
type ProfileType string

const (
	// ProfileTypeGuest is an unauthenticated, session-scoped profile.
	ProfileTypeGuest ProfileType = "guest"
	// ProfileTypeRegistered is a profile tied to a durable authenticated identity.
	ProfileTypeRegistered ProfileType = "registered"
)

// History ring-buffer bounds. Oldest entries are dropped first.
const (
	MaxPageViews       = 500
	MaxProductViews    = 100
	MaxAnalyticsEvents = 1000
	MaxAbandonedCarts  = 10
)

// GuestProfileID derives the profile identifier for a guest session.
// A guest profile's id and its session-cache key are derived from the same
// session id; losing the session id loses the guest's profile linkage.
func GuestProfileID(sessionID string) string {
	return "guest_" + sessionID
}

// Profile is the root entity: the unified customer record holding identity,
// cart, wishlist and history. Exactly one Profile per session is authoritative
// in memory at any time.
type Profile struct {
	ID           string         `json:"id" firestore:"id"`                       // Guest: derived from session id. Registered: the identity provider's account id.
	Type         ProfileType    `json:"type" firestore:"type"`                   // guest or registered.
	SessionID    string         `json:"session_id" firestore:"session_id"`       // Stable per-session identifier, generated once.
	CreatedAt    time.Time      `json:"created_at" firestore:"created_at"`       // Timestamp of profile creation.
	UpdatedAt    time.Time      `json:"updated_at" firestore:"updated_at"`       // Bumped on every mutation.
	PersonalInfo PersonalInfo   `json:"personal_info" firestore:"personal_info"` // Optional contact fields, populated progressively.
	Shopping     Shopping       `json:"shopping" firestore:"shopping"`
	Browsing     Browsing       `json:"browsing" firestore:"browsing"`
	Analytics    Analytics      `json:"analytics" firestore:"analytics"`
	Preferences  map[string]any `json:"preferences" firestore:"preferences"` // Free-form settings.
	Metadata     Metadata       `json:"metadata" firestore:"metadata"`       // Device/environment fingerprint captured at creation.

	// ConvertedFrom is the audit record left behind by a guest-to-registered
	// conversion, nil for profiles that never converted.
	ConvertedFrom *ConversionRecord `json:"converted_from_guest,omitempty" firestore:"converted_from_guest,omitempty"`
}

// PersonalInfo holds progressively collected contact fields.
// None of them are required for guest operation.
type PersonalInfo struct {
	Email     string   `json:"email,omitempty" firestore:"email,omitempty"`
	FirstName string   `json:"first_name,omitempty" firestore:"first_name,omitempty"`
	LastName  string   `json:"last_name,omitempty" firestore:"last_name,omitempty"`
	Phone     string   `json:"phone,omitempty" firestore:"phone,omitempty"`
	Addresses []string `json:"addresses,omitempty" firestore:"addresses,omitempty"`
}

// Metadata captures the environment the profile was created in.
type Metadata struct {
	UserAgent  string `json:"user_agent,omitempty" firestore:"user_agent,omitempty"`
	Referrer   string `json:"referrer,omitempty" firestore:"referrer,omitempty"`
	Language   string `json:"language,omitempty" firestore:"language,omitempty"`
	VisitCount int    `json:"visit_count" firestore:"visit_count"`
}

// ConversionRecord is the audit record attached when a guest profile is
// converted to a registered one. Conversion is one-way and non-reentrant.
type ConversionRecord struct {
	OriginalGuestID string    `json:"original_guest_id" firestore:"original_guest_id"`
	GuestSessionID  string    `json:"guest_session_id" firestore:"guest_session_id"`
	ConvertedAt     time.Time `json:"converted_at" firestore:"converted_at"`
}

// Browsing holds bounded, append-only browsing history.
type Browsing struct {
	PageViews    []PageView    `json:"page_views" firestore:"page_views"`
	ProductViews []ProductView `json:"product_views" firestore:"product_views"`
}

// PageView records a single page visit.
type PageView struct {
	Name     string         `json:"name" firestore:"name"`
	Data     map[string]any `json:"data,omitempty" firestore:"data,omitempty"`
	ViewedAt time.Time      `json:"viewed_at" firestore:"viewed_at"`
}

// ProductView records a single product-detail visit.
type ProductView struct {
	ProductID string         `json:"product_id" firestore:"product_id"`
	Data      map[string]any `json:"data,omitempty" firestore:"data,omitempty"`
	ViewedAt  time.Time      `json:"viewed_at" firestore:"viewed_at"`
}

// Analytics holds the bounded event stream attached to the profile.
type Analytics struct {
	Events []AnalyticsEvent `json:"events" firestore:"events"`
}

// AnalyticsEvent is one tracked action.
type AnalyticsEvent struct {
	Action    string         `json:"action" firestore:"action"`
	Data      map[string]any `json:"data,omitempty" firestore:"data,omitempty"`
	PageURL   string         `json:"page_url,omitempty" firestore:"page_url,omitempty"`
	Timestamp time.Time      `json:"timestamp" firestore:"timestamp"`
}

// NewGuestProfile synthesizes a fresh guest profile for a session. The visit
// count starts at zero; InitializeProfile counts the visit itself, so a brand
// new guest lands at exactly one.
func NewGuestProfile(sessionID string, meta Metadata, now time.Time) *Profile {
	return &Profile{
		ID:          GuestProfileID(sessionID),
		Type:        ProfileTypeGuest,
		SessionID:   sessionID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Preferences: map[string]any{},
		Metadata:    meta,
	}
}

// Touch bumps the profile's modification timestamp.
func (p *Profile) Touch(now time.Time) {
	p.UpdatedAt = now
}

// IsGuest reports whether the profile is still in the guest identity state.
func (p *Profile) IsGuest() bool {
	return p.Type == ProfileTypeGuest
}

// AppendPageView appends to the page-view ring buffer, dropping the oldest
// entries beyond the bound.
func (p *Profile) AppendPageView(view PageView) {
	p.Browsing.PageViews = append(p.Browsing.PageViews, view)
	p.Browsing.PageViews = truncateOldest(p.Browsing.PageViews, MaxPageViews)
}

// AppendProductView appends to the product-view ring buffer.
func (p *Profile) AppendProductView(view ProductView) {
	p.Browsing.ProductViews = append(p.Browsing.ProductViews, view)
	p.Browsing.ProductViews = truncateOldest(p.Browsing.ProductViews, MaxProductViews)
}

// AppendEvent appends to the analytics ring buffer.
func (p *Profile) AppendEvent(event AnalyticsEvent) {
	p.Analytics.Events = append(p.Analytics.Events, event)
	p.Analytics.Events = truncateOldest(p.Analytics.Events, MaxAnalyticsEvents)
}

// Clone returns a deep copy of the profile. Conversion and merge operate on
// copies so a failed transition never corrupts the live profile.
func (p *Profile) Clone() *Profile {
	clone := *p

	clone.PersonalInfo.Addresses = append([]string(nil), p.PersonalInfo.Addresses...)
	clone.Shopping = p.Shopping.clone()
	clone.Browsing.PageViews = append([]PageView(nil), p.Browsing.PageViews...)
	clone.Browsing.ProductViews = append([]ProductView(nil), p.Browsing.ProductViews...)
	clone.Analytics.Events = append([]AnalyticsEvent(nil), p.Analytics.Events...)
	clone.Preferences = cloneMap(p.Preferences)
	if p.ConvertedFrom != nil {
		record := *p.ConvertedFrom
		clone.ConvertedFrom = &record
	}

	return &clone
}

// truncateOldest keeps the most recent max entries, FIFO truncation.
func truncateOldest[T any](entries []T, max int) []T {
	if len(entries) <= max {
		return entries
	}

	return entries[len(entries)-max:]
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}

	return dst
}
