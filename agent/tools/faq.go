package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/voicedeskai/voicedesk/agent/callctx"
	"github.com/voicedeskai/voicedesk/agent/contract"
	"github.com/voicedeskai/voicedesk/agent/faq"
)

func (d *Dispatcher) handleFAQ(ctx context.Context, req contract.Request) (*contract.FAQResult, error) {
	if req.FAQ == nil {
		return nil, fmt.Errorf("%w: faq args", contract.ErrMissingArgs)
	}
	if strings.TrimSpace(req.FAQ.Query) == "" {
		return nil, fmt.Errorf("%w: faq query is empty", contract.ErrValidation)
	}

	answer, err := d.faq.Lookup(ctx, faq.Query{
		Text:        req.FAQ.Query,
		UrgencyHint: req.FAQ.UrgencyHint,
	})
	if err != nil {
		return nil, err
	}

	accepted := false
	if _, err := d.store.Update(req.CallID, func(c *callctx.CallContext) error {
		c.RecordConfidence(answer.Decision.Confidence)
		if answer.Escalation != nil {
			c.MarkEscalationPending()
			accepted = c.RecordEscalation(*answer.Escalation)
		}
		c.AppendLog(string(req.Op), string(answer.Decision.Outcome), d.now())
		return nil
	}); err != nil {
		return nil, err
	}
	if accepted {
		d.notifyEscalation(ctx, req.CallID, *answer.Escalation)
	}

	return &contract.FAQResult{
		Outcome:    answer.Decision.Outcome,
		Confidence: answer.Decision.Confidence,
		Reason:     answer.Decision.Reason,
		Answer:     answer.Answer,
		Escalation: answer.Escalation,
	}, nil
}
