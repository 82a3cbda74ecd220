package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/voicedeskai/voicedesk/agent/callctx"
	"github.com/voicedeskai/voicedesk/agent/contract"
)

const verifyIdentityMessage = "please verify your identity with a CRM lookup before this operation"

// handleBooking records a booking request for human confirmation. Bookings
// never auto-confirm; an identical retry returns the same confirmation id.
func (d *Dispatcher) handleBooking(ctx context.Context, req contract.Request) (*contract.ConfirmationResult, error) {
	if req.Booking == nil {
		return nil, fmt.Errorf("%w: booking args", contract.ErrMissingArgs)
	}
	if strings.TrimSpace(req.Booking.Service) == "" || strings.TrimSpace(req.Booking.Slot) == "" {
		return nil, fmt.Errorf("%w: booking requires service and slot", contract.ErrValidation)
	}

	digest := requestDigest("booking", req.Booking)

	result := &contract.ConfirmationResult{}
	if _, err := d.store.Update(req.CallID, func(c *callctx.CallContext) error {
		if !c.Verified() {
			result.NeedsVerification = true
			result.Message = verifyIdentityMessage
			c.AppendLog(string(req.Op), "customer_not_verified", d.now())
			return nil
		}

		record, _ := c.EnsureConfirmation("booking", digest, d.now())
		result.ConfirmationID = record.ID
		result.Status = record.Status
		result.Message = fmt.Sprintf("booking for %s at %s is awaiting human confirmation", req.Booking.Service, req.Booking.Slot)
		c.AppendLog(string(req.Op), string(record.Status), d.now())
		return nil
	}); err != nil {
		return nil, err
	}
	return result, nil
}
