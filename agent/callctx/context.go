package callctx

import (
	"fmt"
	"time"

	"github.com/voicedeskai/voicedesk/agent/crm"
	"github.com/voicedeskai/voicedesk/agent/escalation"
)

type EscalationState string

const (
	EscalationNone    EscalationState = "none"
	EscalationPending EscalationState = "pending"
	EscalationRouted  EscalationState = "routed"
)

// ToolInvocation is one entry in a call's ordered tool log.
type ToolInvocation struct {
	Operation string    `json:"operation"`
	At        time.Time `json:"at"`
	Outcome   string    `json:"outcome"`
}

type ConfirmationStatus string

const (
	StatusPendingHuman ConfirmationStatus = "pending-human-confirmation"
	StatusConfirmed    ConfirmationStatus = "confirmed"
	StatusRejected     ConfirmationStatus = "rejected"
)

// ConfirmationRecord is a booking or renewal held for human confirmation.
// IDs are deterministic per (call, request) so retries are idempotent.
type ConfirmationRecord struct {
	ID        string             `json:"id"`
	Kind      string             `json:"kind"` // "booking" or "renewal"
	Digest    string             `json:"-"`
	Status    ConfirmationStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
}

// CallContext is the mutable state scoped to one phone call. All access
// goes through the Store's per-call serialized interface.
type CallContext struct {
	CallID    string    `json:"call_id"`
	StartedAt time.Time `json:"started_at"`

	Customer   *crm.Customer      `json:"customer,omitempty"`
	VerifiedBy crm.IdentifierKind `json:"verified_by,omitempty"`

	ToolLog           []ToolInvocation `json:"tool_log,omitempty"`
	ConfidenceHistory []float64        `json:"confidence_history,omitempty"`

	EscalationState  EscalationState      `json:"escalation_state"`
	ActiveEscalation *escalation.Record   `json:"active_escalation,omitempty"`
	Confirmations    []ConfirmationRecord `json:"confirmations,omitempty"`
}

func New(callID string, now time.Time) *CallContext {
	return &CallContext{
		CallID:          callID,
		StartedAt:       now.UTC(),
		EscalationState: EscalationNone,
	}
}

func (c *CallContext) AppendLog(operation string, outcome string, now time.Time) {
	c.ToolLog = append(c.ToolLog, ToolInvocation{
		Operation: operation,
		At:        now.UTC(),
		Outcome:   outcome,
	})
}

func (c *CallContext) RecordConfidence(score float64) {
	c.ConfidenceHistory = append(c.ConfidenceHistory, score)
}

// Verified reports whether a CRM lookup has authenticated the caller.
func (c *CallContext) Verified() bool {
	return c.Customer != nil
}

// SetCustomer writes the authenticated-customer reference. The reference
// is immutable for the call's lifetime: once set, later matches are
// ignored and false is returned.
func (c *CallContext) SetCustomer(customer *crm.Customer, kind crm.IdentifierKind) bool {
	if c.Customer != nil {
		return false
	}
	c.Customer = customer
	c.VerifiedBy = kind
	return true
}

// RecordEscalation installs the record as the call's active escalation.
// While one is already active, a new record replaces it only when its
// category has strictly higher priority. Returns whether the record was
// accepted.
func (c *CallContext) RecordEscalation(record escalation.Record) bool {
	if c.ActiveEscalation != nil &&
		record.Category.Priority() <= c.ActiveEscalation.Category.Priority() {
		return false
	}
	c.ActiveEscalation = &record
	c.EscalationState = EscalationRouted
	return true
}

// MarkEscalationPending flags that an escalate decision was made before
// routing completed. Routed state is never downgraded.
func (c *CallContext) MarkEscalationPending() {
	if c.EscalationState == EscalationNone {
		c.EscalationState = EscalationPending
	}
}

// EnsureConfirmation returns the confirmation record for a request digest,
// creating one when the digest is new. The id derives from the call id and
// a per-call sequence number, so an identical retry yields the same id.
func (c *CallContext) EnsureConfirmation(kind string, digest string, now time.Time) (ConfirmationRecord, bool) {
	for _, record := range c.Confirmations {
		if record.Kind == kind && record.Digest == digest {
			return record, false
		}
	}

	record := ConfirmationRecord{
		ID:        fmt.Sprintf("%s-%04d", c.CallID, len(c.Confirmations)+1),
		Kind:      kind,
		Digest:    digest,
		Status:    StatusPendingHuman,
		CreatedAt: now.UTC(),
	}
	c.Confirmations = append(c.Confirmations, record)
	return record, true
}

// Clone returns a snapshot safe to hand outside the store's lock.
func (c *CallContext) Clone() CallContext {
	out := *c

	out.ToolLog = append([]ToolInvocation(nil), c.ToolLog...)
	out.ConfidenceHistory = append([]float64(nil), c.ConfidenceHistory...)
	out.Confirmations = append([]ConfirmationRecord(nil), c.Confirmations...)

	if c.Customer != nil {
		customer := *c.Customer
		out.Customer = &customer
	}
	if c.ActiveEscalation != nil {
		record := *c.ActiveEscalation
		out.ActiveEscalation = &record
	}
	return out
}
