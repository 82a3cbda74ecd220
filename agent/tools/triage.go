package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/voicedeskai/voicedesk/agent/callctx"
	"github.com/voicedeskai/voicedesk/agent/contract"
	"github.com/voicedeskai/voicedesk/agent/escalation"
	"github.com/voicedeskai/voicedesk/agent/faq"
)

// handleTriage classifies the issue for routing. Technical issues first get
// a subsidiary knowledge-base lookup; a confident answer downgrades the
// triage to an informational reply and suppresses the escalation.
func (d *Dispatcher) handleTriage(ctx context.Context, req contract.Request) (*contract.TriageResult, error) {
	if req.Triage == nil {
		return nil, fmt.Errorf("%w: triage args", contract.ErrMissingArgs)
	}
	description := strings.TrimSpace(req.Triage.Description)
	if description == "" {
		return nil, fmt.Errorf("%w: triage description is empty", contract.ErrValidation)
	}

	record := d.router.Classify(description, req.Triage.UrgencyHint)

	if record.Category == escalation.CategoryTechnical {
		answer, err := d.faq.Lookup(ctx, faq.Query{
			Text:        description,
			UrgencyHint: req.Triage.UrgencyHint,
		})
		if err == nil && answer.Decision.Resolved() {
			if _, err := d.store.Update(req.CallID, func(c *callctx.CallContext) error {
				c.RecordConfidence(answer.Decision.Confidence)
				c.AppendLog(string(req.Op), "answered", d.now())
				return nil
			}); err != nil {
				return nil, err
			}
			return &contract.TriageResult{
				Category:       record.Category,
				Urgency:        record.Urgency,
				AnswerProvided: true,
				Answer:         answer.Answer,
				Confidence:     answer.Decision.Confidence,
			}, nil
		}
		if err != nil {
			log.Warn().Err(err).Msg("subsidiary faq lookup failed, escalating")
		}
	}

	accepted := false
	if _, err := d.store.Update(req.CallID, func(c *callctx.CallContext) error {
		c.MarkEscalationPending()
		accepted = c.RecordEscalation(record)
		c.AppendLog(string(req.Op), "escalated", d.now())
		return nil
	}); err != nil {
		return nil, err
	}
	if accepted {
		d.notifyEscalation(ctx, req.CallID, record)
	}

	return &contract.TriageResult{
		Category:   record.Category,
		Urgency:    record.Urgency,
		Escalation: &record,
	}, nil
}
