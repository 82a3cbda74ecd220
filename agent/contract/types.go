package contract

import (
	"github.com/voicedeskai/voicedesk/agent/callctx"
	"github.com/voicedeskai/voicedesk/agent/confidence"
	"github.com/voicedeskai/voicedesk/agent/crm"
	"github.com/voicedeskai/voicedesk/agent/escalation"
)

// Operation enumerates the five tool operations a call can invoke.
type Operation string

const (
	OpFAQLookup Operation = "faq_lookup"
	OpCRMLookup Operation = "crm_lookup"
	OpBooking   Operation = "booking"
	OpRenewal   Operation = "renewal"
	OpTriage    Operation = "triage"
)

// Request is the uniform tool-invocation envelope. Exactly one args
// variant matching Op must be populated.
type Request struct {
	CallID string    `json:"call_id"`
	Op     Operation `json:"operation"`

	FAQ     *FAQArgs     `json:"faq,omitempty"`
	CRM     *CRMArgs     `json:"crm,omitempty"`
	Booking *BookingArgs `json:"booking,omitempty"`
	Renewal *RenewalArgs `json:"renewal,omitempty"`
	Triage  *TriageArgs  `json:"triage,omitempty"`
}

type FAQArgs struct {
	Query       string `json:"query"`
	UrgencyHint string `json:"urgency_hint,omitempty"`
}

type CRMArgs struct {
	// Identifier is of ambiguous kind: customer id, phone, email, or name.
	Identifier string `json:"identifier"`
}

type BookingArgs struct {
	Service string `json:"service"`
	Slot    string `json:"slot"`
	Notes   string `json:"notes,omitempty"`
}

type RenewalArgs struct {
	PolicyNumber string `json:"policy_number"`
}

type TriageArgs struct {
	Description string `json:"description"`
	UrgencyHint string `json:"urgency_hint,omitempty"`
}

// Response mirrors Request: the variant matching Op is populated.
type Response struct {
	CallID string    `json:"call_id"`
	Op     Operation `json:"operation"`

	FAQ     *FAQResult          `json:"faq,omitempty"`
	CRM     *CRMResult          `json:"crm,omitempty"`
	Booking *ConfirmationResult `json:"booking,omitempty"`
	Renewal *ConfirmationResult `json:"renewal,omitempty"`
	Triage  *TriageResult       `json:"triage,omitempty"`
}

// FAQResult always carries an outcome and confidence so the agent loop can
// phrase its reply; retrieval failures surface as escalations, never errors.
type FAQResult struct {
	Outcome    confidence.Outcome `json:"outcome"`
	Confidence float64            `json:"confidence"`
	Reason     confidence.Reason  `json:"reason"`
	Answer     string             `json:"answer,omitempty"`
	Escalation *escalation.Record `json:"escalation,omitempty"`
}

type CRMResult struct {
	Found           bool               `json:"found"`
	Customer        *crm.Customer      `json:"customer,omitempty"`
	MatchedBy       crm.IdentifierKind `json:"matched_by,omitempty"`
	AlreadyVerified bool               `json:"already_verified,omitempty"`
}

// ConfirmationResult is shared by booking and renewal. NeedsVerification
// is the structured "please verify identity" outcome; Escalation is set
// when a renewal eligibility check escalates instead of confirming.
type ConfirmationResult struct {
	NeedsVerification bool                       `json:"needs_verification,omitempty"`
	ConfirmationID    string                     `json:"confirmation_id,omitempty"`
	Status            callctx.ConfirmationStatus `json:"status,omitempty"`
	Escalation        *escalation.Record         `json:"escalation,omitempty"`
	Message           string                     `json:"message,omitempty"`
}

type TriageResult struct {
	Category escalation.Category `json:"category"`
	Urgency  escalation.Urgency  `json:"urgency"`

	// Escalation is nil when a technical issue was answered from the
	// knowledge base and escalation was suppressed.
	Escalation     *escalation.Record `json:"escalation,omitempty"`
	AnswerProvided bool               `json:"answer_provided,omitempty"`
	Answer         string             `json:"answer,omitempty"`
	Confidence     float64            `json:"confidence,omitempty"`
}
