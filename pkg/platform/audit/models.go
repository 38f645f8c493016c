package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events so sinks can route and retain them
// differently.
type EventCategory string

const (
	// CategorySecurity covers events a SIEM should alert on: failed client
	// authentication, code replay, device drift.
	CategorySecurity EventCategory = "security"

	// CategoryCompliance covers grant decisions made by the resource owner.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine issuance and can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from the authorization flow. It is transport-agnostic so
// stores and sinks can fan out.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	UserID    string        `json:"user_id,omitempty"`
	ClientID  string        `json:"client_id,omitempty"`
	Subject   string        `json:"subject,omitempty"`
	Action    string        `json:"action"`
	Decision  string        `json:"decision,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	Device    string        `json:"device,omitempty"`
	IP        string        `json:"ip,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
}

type AuditEvent string

const (
	EventAuthorizationGranted AuditEvent = "authorization_granted"
	EventConsentDenied        AuditEvent = "consent_denied"
	EventCodeIssued           AuditEvent = "code_issued"
	EventCodeReplayed         AuditEvent = "code_replayed"
	EventTokenIssued          AuditEvent = "token_issued"
	EventAuthFailed           AuditEvent = "auth_failed"
	EventDeviceDrift          AuditEvent = "session_device_drift"
	EventLoginSucceeded       AuditEvent = "login_succeeded"
	EventLoginFailed          AuditEvent = "login_failed"
	EventTokenRejected        AuditEvent = "token_rejected"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventAuthorizationGranted: CategoryCompliance,
	EventConsentDenied:        CategoryCompliance,

	EventCodeReplayed:   CategorySecurity,
	EventAuthFailed:     CategorySecurity,
	EventDeviceDrift:    CategorySecurity,
	EventLoginFailed:    CategorySecurity,
	EventTokenRejected:  CategorySecurity,
	EventLoginSucceeded: CategorySecurity,

	EventCodeIssued:  CategoryOperations,
	EventTokenIssued: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Normalize fills Category from Action and stamps Timestamp when unset.
func (e Event) Normalize(now time.Time) Event {
	if e.Category == "" {
		e.Category = AuditEvent(e.Action).Category()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}
	return e
}

// Store is a sink for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
