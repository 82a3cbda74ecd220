package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/voicedeskai/voicedesk/agent/callctx"
	"github.com/voicedeskai/voicedesk/agent/contract"
	"github.com/voicedeskai/voicedesk/agent/crm"
)

// handleCRM resolves an identifier of ambiguous kind against the CRM in
// priority order. The first match verifies the caller; the customer
// reference is immutable per call, so a later match for a different
// customer is reported but never overwrites it.
func (d *Dispatcher) handleCRM(ctx context.Context, req contract.Request) (*contract.CRMResult, error) {
	if req.CRM == nil {
		return nil, fmt.Errorf("%w: crm args", contract.ErrMissingArgs)
	}
	identifier := strings.TrimSpace(req.CRM.Identifier)
	if identifier == "" {
		return nil, fmt.Errorf("%w: crm identifier is empty", contract.ErrValidation)
	}

	var (
		found   *crm.Customer
		matched crm.IdentifierKind
	)
	for _, kind := range crm.LookupOrder(identifier) {
		customer, err := d.directory.FindBy(ctx, kind, identifier)
		if err != nil {
			if errors.Is(err, crm.ErrCustomerNotFound) {
				continue
			}
			// A flaky CRM backend degrades to not-found for this kind
			// rather than dropping the call.
			log.Warn().Err(err).Str("kind", string(kind)).Msg("crm lookup failed")
			continue
		}
		found, matched = customer, kind
		break
	}

	if found == nil {
		if _, err := d.store.Update(req.CallID, func(c *callctx.CallContext) error {
			c.AppendLog(string(req.Op), "not_found", d.now())
			return nil
		}); err != nil {
			return nil, err
		}
		return &contract.CRMResult{Found: false}, nil
	}

	result := &contract.CRMResult{Found: true}
	snapshot, err := d.store.Update(req.CallID, func(c *callctx.CallContext) error {
		if !c.SetCustomer(found, matched) {
			result.AlreadyVerified = true
		}
		c.AppendLog(string(req.Op), "verified", d.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Customer = snapshot.Customer
	result.MatchedBy = snapshot.VerifiedBy
	return result, nil
}
