package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/voicedeskai/voicedesk/agent/callctx"
	"github.com/voicedeskai/voicedesk/agent/contract"
	"github.com/voicedeskai/voicedesk/agent/escalation"
)

// handleRenewal verifies the policy belongs to the caller and is in good
// standing before queueing the renewal for human confirmation. Eligibility
// failures escalate to billing instead of confirming.
func (d *Dispatcher) handleRenewal(ctx context.Context, req contract.Request) (*contract.ConfirmationResult, error) {
	if req.Renewal == nil {
		return nil, fmt.Errorf("%w: renewal args", contract.ErrMissingArgs)
	}
	policyNumber := strings.TrimSpace(req.Renewal.PolicyNumber)
	if policyNumber == "" {
		return nil, fmt.Errorf("%w: renewal requires a policy number", contract.ErrValidation)
	}

	digest := requestDigest("renewal", req.Renewal)

	result := &contract.ConfirmationResult{}
	accepted := false
	if _, err := d.store.Update(req.CallID, func(c *callctx.CallContext) error {
		if !c.Verified() {
			result.NeedsVerification = true
			result.Message = verifyIdentityMessage
			c.AppendLog(string(req.Op), "customer_not_verified", d.now())
			return nil
		}

		switch {
		case !c.Customer.HoldsPolicy(policyNumber):
			record := d.router.Route(escalation.CategoryBilling, escalation.UrgencyMedium,
				fmt.Sprintf("renewal requested for policy %s not on the customer account", policyNumber))
			c.MarkEscalationPending()
			accepted = c.RecordEscalation(record)
			result.Escalation = &record
			result.Message = "policy is not on this account; routed to billing"
			c.AppendLog(string(req.Op), "escalated", d.now())

		case c.Customer.PolicyDelinquent(policyNumber):
			record := d.router.Route(escalation.CategoryBilling, escalation.UrgencyMedium,
				fmt.Sprintf("renewal blocked for policy %s with an outstanding balance", policyNumber))
			c.MarkEscalationPending()
			accepted = c.RecordEscalation(record)
			result.Escalation = &record
			result.Message = "policy has an outstanding balance; routed to billing"
			c.AppendLog(string(req.Op), "escalated", d.now())

		default:
			record, _ := c.EnsureConfirmation("renewal", digest, d.now())
			result.ConfirmationID = record.ID
			result.Status = record.Status
			result.Message = fmt.Sprintf("renewal of policy %s is awaiting human confirmation", policyNumber)
			c.AppendLog(string(req.Op), string(record.Status), d.now())
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if accepted && result.Escalation != nil {
		d.notifyEscalation(ctx, req.CallID, *result.Escalation)
	}
	return result, nil
}
