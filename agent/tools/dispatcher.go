package tools

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/voicedeskai/voicedesk/agent/callctx"
	"github.com/voicedeskai/voicedesk/agent/contract"
	"github.com/voicedeskai/voicedesk/agent/crm"
	"github.com/voicedeskai/voicedesk/agent/escalation"
	"github.com/voicedeskai/voicedesk/agent/faq"
)

// Dispatcher routes tool invocations to their operation handlers. It is
// the only writer of call context on the request path; every handler
// funnels its mutations through one store.Update per invocation.
type Dispatcher struct {
	store     *callctx.Store
	faq       *faq.Service
	router    *escalation.Router
	directory crm.Directory
	notifier  escalation.Notifier

	now func() time.Time
}

// DispatcherOption customizes a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithNotifier delivers every newly accepted escalation to a department
// queue. Delivery failures are logged and never fail the invocation.
func WithNotifier(notifier escalation.Notifier) DispatcherOption {
	return func(d *Dispatcher) {
		if notifier != nil {
			d.notifier = notifier
		}
	}
}

func NewDispatcher(store *callctx.Store, faqSvc *faq.Service, router *escalation.Router, directory crm.Directory, opts ...DispatcherOption) (*Dispatcher, error) {
	if store == nil {
		return nil, errors.New("call context store is required")
	}
	if faqSvc == nil {
		return nil, errors.New("faq service is required")
	}
	if router == nil {
		return nil, errors.New("escalation router is required")
	}
	if directory == nil {
		return nil, errors.New("crm directory is required")
	}
	d := &Dispatcher{
		store:     store,
		faq:       faqSvc,
		router:    router,
		directory: directory,
		notifier:  escalation.NoopNotifier{},
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d, nil
}

func (d *Dispatcher) notifyEscalation(ctx context.Context, callID string, record escalation.Record) {
	if err := d.notifier.Notify(ctx, callID, record); err != nil {
		log.Warn().
			Err(err).
			Str("call_id", callID).
			Str("department", record.Department).
			Msg("escalation notification failed")
	}
}

// Dispatch executes one tool invocation against its call context.
// Unknown or ended calls fail hard with callctx.ErrUnknownCall; business
// conditions such as an unverified customer come back as structured
// results, never as errors.
func (d *Dispatcher) Dispatch(ctx context.Context, req contract.Request) (contract.Response, error) {
	resp := contract.Response{CallID: req.CallID, Op: req.Op}

	if _, err := d.store.Get(req.CallID); err != nil {
		return resp, err
	}

	var err error
	switch req.Op {
	case contract.OpFAQLookup:
		resp.FAQ, err = d.handleFAQ(ctx, req)
	case contract.OpCRMLookup:
		resp.CRM, err = d.handleCRM(ctx, req)
	case contract.OpBooking:
		resp.Booking, err = d.handleBooking(ctx, req)
	case contract.OpRenewal:
		resp.Renewal, err = d.handleRenewal(ctx, req)
	case contract.OpTriage:
		resp.Triage, err = d.handleTriage(ctx, req)
	default:
		err = fmt.Errorf("%w: %q", contract.ErrUnknownOperation, req.Op)
	}
	if err != nil {
		return contract.Response{CallID: req.CallID, Op: req.Op}, err
	}

	log.Debug().
		Str("call_id", req.CallID).
		Str("operation", string(req.Op)).
		Msg("tool invocation dispatched")
	return resp, nil
}

// requestDigest canonicalizes operation args so an identical retry maps
// to the same confirmation record.
func requestDigest(kind string, args any) string {
	payload, err := json.Marshal(args)
	if err != nil {
		payload = []byte(fmt.Sprintf("%+v", args))
	}
	sum := sha256.Sum256(append([]byte(kind+":"), payload...))
	return hex.EncodeToString(sum[:])
}
