package audit

import "time"

// EventCategory separates security-relevant decisions from routine activity.
type EventCategory string

const (
	CategorySecurity   EventCategory = "security"
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	AccountID string
	Action    string
	Decision  string
	Reason    string
	RequestID string
	// Detail carries action-specific context such as a transaction hash.
	Detail string
}

const (
	EventAccountRegistered  = "account_registered"
	EventAccountUpdated     = "account_updated"
	EventAdminAccessGranted = "admin_access_granted"
	EventAdminAccessDenied  = "admin_access_denied"
	EventTemplateCreated    = "template_created"
	EventMintSubmitted      = "mint_submitted"
	EventMintFailed         = "mint_failed"
)
