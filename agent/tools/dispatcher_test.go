package tools

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/voicedeskai/voicedesk/agent/callctx"
	"github.com/voicedeskai/voicedesk/agent/confidence"
	"github.com/voicedeskai/voicedesk/agent/contract"
	"github.com/voicedeskai/voicedesk/agent/crm"
	"github.com/voicedeskai/voicedesk/agent/escalation"
	"github.com/voicedeskai/voicedesk/agent/faq"
	"github.com/voicedeskai/voicedesk/agent/retrieval"
)

var testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeSearcher struct {
	snippets []retrieval.Snippet
	err      error
	calls    int
}

func (f *fakeSearcher) Search(context.Context, string, string, int) ([]retrieval.Snippet, error) {
	f.calls++
	return f.snippets, f.err
}

type fakeDirectory struct {
	customers map[crm.IdentifierKind]map[string]*crm.Customer
	err       error
}

func (f *fakeDirectory) FindBy(_ context.Context, kind crm.IdentifierKind, value string) (*crm.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	if byValue, ok := f.customers[kind]; ok {
		if customer, ok := byValue[value]; ok {
			return customer, nil
		}
	}
	return nil, crm.ErrCustomerNotFound
}

type capturingNotifier struct {
	records []escalation.Record
	callIDs []string
}

func (n *capturingNotifier) Notify(_ context.Context, callID string, record escalation.Record) error {
	n.callIDs = append(n.callIDs, callID)
	n.records = append(n.records, record)
	return nil
}

type fixture struct {
	dispatcher *Dispatcher
	store      *callctx.Store
	searcher   *fakeSearcher
	directory  *fakeDirectory
	notifier   *capturingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	searcher := &fakeSearcher{}
	directory := &fakeDirectory{customers: map[crm.IdentifierKind]map[string]*crm.Customer{}}
	notifier := &capturingNotifier{}

	engine, err := retrieval.NewEngine(searcher, retrieval.Config{})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	router := escalation.NewRouter(escalation.Config{
		CriticalKeywords:  []string{"emergency", "fraud"},
		BillingKeywords:   []string{"payment", "refund", "billing"},
		TechnicalKeywords: []string{"error", "bug", "not working"},
	})
	faqService, err := faq.New(engine, confidence.NewPolicy(confidence.Config{}), router, faq.Config{})
	if err != nil {
		t.Fatalf("faq.New() error = %v", err)
	}

	store := callctx.NewStore()
	dispatcher, err := NewDispatcher(store, faqService, router, directory, WithNotifier(notifier))
	if err != nil {
		t.Fatalf("NewDispatcher() error = %v", err)
	}
	dispatcher.now = func() time.Time { return testTime }

	return &fixture{
		dispatcher: dispatcher,
		store:      store,
		searcher:   searcher,
		directory:  directory,
		notifier:   notifier,
	}
}

func (f *fixture) startCall(t *testing.T, callID string) {
	t.Helper()
	if _, err := f.store.Start(callID, testTime); err != nil {
		t.Fatalf("Start(%q) error = %v", callID, err)
	}
}

func (f *fixture) verifyCaller(t *testing.T, callID string, customer *crm.Customer) {
	t.Helper()
	f.directory.customers[crm.KindID] = map[string]*crm.Customer{customer.ID: customer}
	resp, err := f.dispatcher.Dispatch(context.Background(), contract.Request{
		CallID: callID,
		Op:     contract.OpCRMLookup,
		CRM:    &contract.CRMArgs{Identifier: customer.ID},
	})
	if err != nil {
		t.Fatalf("crm Dispatch() error = %v", err)
	}
	if !resp.CRM.Found {
		t.Fatalf("crm lookup for %q did not find customer", customer.ID)
	}
}

func TestDispatchFAQResolved(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.startCall(t, "call-1")
	f.searcher.snippets = []retrieval.Snippet{{ID: "s1", Text: "we open at 9am", Score: 0.85}}

	resp, err := f.dispatcher.Dispatch(context.Background(), contract.Request{
		CallID: "call-1",
		Op:     contract.OpFAQLookup,
		FAQ:    &contract.FAQArgs{Query: "What are your business hours?"},
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if resp.FAQ.Outcome != confidence.OutcomeResolved {
		t.Fatalf("Outcome = %q, want resolved", resp.FAQ.Outcome)
	}
	if resp.FAQ.Confidence != 0.85 {
		t.Fatalf("Confidence = %v, want 0.85", resp.FAQ.Confidence)
	}
	if resp.FAQ.Escalation != nil {
		t.Fatalf("Escalation = %+v, want nil", resp.FAQ.Escalation)
	}

	snapshot, err := f.store.Get("call-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(snapshot.ConfidenceHistory) != 1 || snapshot.ConfidenceHistory[0] != 0.85 {
		t.Fatalf("ConfidenceHistory = %v, want [0.85]", snapshot.ConfidenceHistory)
	}
	if snapshot.EscalationState != callctx.EscalationNone {
		t.Fatalf("EscalationState = %q, want none", snapshot.EscalationState)
	}
	if len(snapshot.ToolLog) != 1 || snapshot.ToolLog[0].Operation != "faq_lookup" {
		t.Fatalf("ToolLog = %+v, want one faq_lookup entry", snapshot.ToolLog)
	}
	if len(f.notifier.records) != 0 {
		t.Fatalf("notifier records = %+v, want none", f.notifier.records)
	}
}

func TestDispatchFAQNoResultsEscalates(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.startCall(t, "call-1")

	resp, err := f.dispatcher.Dispatch(context.Background(), contract.Request{
		CallID: "call-1",
		Op:     contract.OpFAQLookup,
		FAQ:    &contract.FAQArgs{Query: "something nobody documented"},
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if resp.FAQ.Outcome != confidence.OutcomeEscalated {
		t.Fatalf("Outcome = %q, want escalated", resp.FAQ.Outcome)
	}
	if resp.FAQ.Reason != confidence.ReasonNoResults {
		t.Fatalf("Reason = %q, want no_results", resp.FAQ.Reason)
	}
	if resp.FAQ.Escalation == nil || resp.FAQ.Escalation.Category != escalation.CategoryGeneral {
		t.Fatalf("Escalation = %+v, want general category", resp.FAQ.Escalation)
	}

	snapshot, _ := f.store.Get("call-1")
	if snapshot.EscalationState != callctx.EscalationRouted {
		t.Fatalf("EscalationState = %q, want routed", snapshot.EscalationState)
	}
	if len(f.notifier.records) != 1 || f.notifier.callIDs[0] != "call-1" {
		t.Fatalf("notifier = %+v, want one record for call-1", f.notifier.records)
	}
}

func TestDispatchFAQRetrievalFailureStillAnswers(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.startCall(t, "call-1")
	f.searcher.err = errors.New("index down")

	resp, err := f.dispatcher.Dispatch(context.Background(), contract.Request{
		CallID: "call-1",
		Op:     contract.OpFAQLookup,
		FAQ:    &contract.FAQArgs{Query: "anything"},
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v, retrieval failures must degrade", err)
	}
	if resp.FAQ.Outcome != confidence.OutcomeEscalated {
		t.Fatalf("Outcome = %q, want escalated", resp.FAQ.Outcome)
	}
}

func TestDispatchCRMVerifiesCaller(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.startCall(t, "call-1")
	f.directory.customers[crm.KindPhone] = map[string]*crm.Customer{
		"+1 555 123 4567": {ID: "cust-1", Name: "Ada Lovelace", Phone: "+1 555 123 4567"},
	}

	resp, err := f.dispatcher.Dispatch(context.Background(), contract.Request{
		CallID: "call-1",
		Op:     contract.OpCRMLookup,
		CRM:    &contract.CRMArgs{Identifier: "+1 555 123 4567"},
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if !resp.CRM.Found {
		t.Fatal("Found = false, want true")
	}
	if resp.CRM.MatchedBy != crm.KindPhone {
		t.Fatalf("MatchedBy = %q, want phone", resp.CRM.MatchedBy)
	}
	if resp.CRM.AlreadyVerified {
		t.Fatal("AlreadyVerified = true on first lookup, want false")
	}

	snapshot, _ := f.store.Get("call-1")
	if snapshot.Customer == nil || snapshot.Customer.ID != "cust-1" {
		t.Fatalf("Customer = %+v, want cust-1", snapshot.Customer)
	}
}

func TestDispatchCRMSecondMatchKeepsFirstCustomer(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.startCall(t, "call-1")
	f.verifyCaller(t, "call-1", &crm.Customer{ID: "cust-1", Name: "Ada"})

	f.directory.customers[crm.KindEmail] = map[string]*crm.Customer{
		"grace@example.com": {ID: "cust-2", Name: "Grace"},
	}
	resp, err := f.dispatcher.Dispatch(context.Background(), contract.Request{
		CallID: "call-1",
		Op:     contract.OpCRMLookup,
		CRM:    &contract.CRMArgs{Identifier: "grace@example.com"},
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if !resp.CRM.AlreadyVerified {
		t.Fatal("AlreadyVerified = false, want true")
	}
	if resp.CRM.Customer.ID != "cust-1" {
		t.Fatalf("Customer.ID = %q, want original cust-1", resp.CRM.Customer.ID)
	}

	snapshot, _ := f.store.Get("call-1")
	if snapshot.Customer.ID != "cust-1" {
		t.Fatalf("stored Customer.ID = %q, want cust-1", snapshot.Customer.ID)
	}
}

func TestDispatchCRMNotFoundLeavesCallUnverified(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.startCall(t, "call-1")

	resp, err := f.dispatcher.Dispatch(context.Background(), contract.Request{
		CallID: "call-1",
		Op:     contract.OpCRMLookup,
		CRM:    &contract.CRMArgs{Identifier: "nobody@example.com"},
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if resp.CRM.Found {
		t.Fatal("Found = true, want false")
	}

	snapshot, _ := f.store.Get("call-1")
	if snapshot.Customer != nil {
		t.Fatalf("Customer = %+v, want nil", snapshot.Customer)
	}
}

func TestDispatchBookingRequiresVerification(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.startCall(t, "call-1")

	resp, err := f.dispatcher.Dispatch(context.Background(), contract.Request{
		CallID:  "call-1",
		Op:      contract.OpBooking,
		Booking: &contract.BookingArgs{Service: "inspection", Slot: "2025-06-02T10:00"},
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v, CustomerNotVerified must be a result", err)
	}
	if !resp.Booking.NeedsVerification {
		t.Fatal("NeedsVerification = false, want true")
	}
	if resp.Booking.ConfirmationID != "" {
		t.Fatalf("ConfirmationID = %q, want empty", resp.Booking.ConfirmationID)
	}
}

func TestDispatchBookingIdempotentConfirmationIDs(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.startCall(t, "call-1")
	f.verifyCaller(t, "call-1", &crm.Customer{ID: "cust-1", Name: "Ada"})

	request := contract.Request{
		CallID:  "call-1",
		Op:      contract.OpBooking,
		Booking: &contract.BookingArgs{Service: "inspection", Slot: "2025-06-02T10:00"},
	}

	first, err := f.dispatcher.Dispatch(context.Background(), request)
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if first.Booking.Status != callctx.StatusPendingHuman {
		t.Fatalf("Status = %q, want pending-human-confirmation", first.Booking.Status)
	}

	retry, err := f.dispatcher.Dispatch(context.Background(), request)
	if err != nil {
		t.Fatalf("retry Dispatch() error = %v", err)
	}
	if retry.Booking.ConfirmationID != first.Booking.ConfirmationID {
		t.Fatalf("retry ConfirmationID = %q, want %q", retry.Booking.ConfirmationID, first.Booking.ConfirmationID)
	}

	other := request
	other.Booking = &contract.BookingArgs{Service: "inspection", Slot: "2025-06-03T10:00"}
	second, err := f.dispatcher.Dispatch(context.Background(), other)
	if err != nil {
		t.Fatalf("second Dispatch() error = %v", err)
	}
	if second.Booking.ConfirmationID == first.Booking.ConfirmationID {
		t.Fatalf("distinct request reused ConfirmationID %q", first.Booking.ConfirmationID)
	}
}

func TestDispatchRenewalHappyPath(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.startCall(t, "call-1")
	f.verifyCaller(t, "call-1", &crm.Customer{
		ID:            "cust-1",
		PolicyNumbers: []string{"POL-100"},
	})

	resp, err := f.dispatcher.Dispatch(context.Background(), contract.Request{
		CallID:  "call-1",
		Op:      contract.OpRenewal,
		Renewal: &contract.RenewalArgs{PolicyNumber: "POL-100"},
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if resp.Renewal.Status != callctx.StatusPendingHuman {
		t.Fatalf("Status = %q, want pending-human-confirmation", resp.Renewal.Status)
	}
	if resp.Renewal.Escalation != nil {
		t.Fatalf("Escalation = %+v, want nil", resp.Renewal.Escalation)
	}
}

func TestDispatchRenewalDelinquentPolicyEscalatesBilling(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.startCall(t, "call-1")
	f.verifyCaller(t, "call-1", &crm.Customer{
		ID:                 "cust-1",
		PolicyNumbers:      []string{"POL-100"},
		DelinquentPolicies: []string{"POL-100"},
	})

	resp, err := f.dispatcher.Dispatch(context.Background(), contract.Request{
		CallID:  "call-1",
		Op:      contract.OpRenewal,
		Renewal: &contract.RenewalArgs{PolicyNumber: "POL-100"},
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if resp.Renewal.Escalation == nil || resp.Renewal.Escalation.Category != escalation.CategoryBilling {
		t.Fatalf("Escalation = %+v, want billing", resp.Renewal.Escalation)
	}
	if resp.Renewal.ConfirmationID != "" {
		t.Fatalf("ConfirmationID = %q, want empty on escalation", resp.Renewal.ConfirmationID)
	}

	snapshot, _ := f.store.Get("call-1")
	if snapshot.ActiveEscalation == nil || snapshot.ActiveEscalation.Category != escalation.CategoryBilling {
		t.Fatalf("ActiveEscalation = %+v, want billing", snapshot.ActiveEscalation)
	}
	if len(f.notifier.records) != 1 {
		t.Fatalf("notifier records = %d, want 1", len(f.notifier.records))
	}
}

func TestDispatchRenewalUnknownPolicyEscalates(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.startCall(t, "call-1")
	f.verifyCaller(t, "call-1", &crm.Customer{ID: "cust-1", PolicyNumbers: []string{"POL-100"}})

	resp, err := f.dispatcher.Dispatch(context.Background(), contract.Request{
		CallID:  "call-1",
		Op:      contract.OpRenewal,
		Renewal: &contract.RenewalArgs{PolicyNumber: "POL-999"},
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if resp.Renewal.Escalation == nil || resp.Renewal.Escalation.Category != escalation.CategoryBilling {
		t.Fatalf("Escalation = %+v, want billing", resp.Renewal.Escalation)
	}
}

func TestDispatchTriageBillingSkipsSubsidiaryLookup(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.startCall(t, "call-1")

	resp, err := f.dispatcher.Dispatch(context.Background(), contract.Request{
		CallID: "call-1",
		Op:     contract.OpTriage,
		Triage: &contract.TriageArgs{Description: "urgent billing dispute", UrgencyHint: "high"},
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if resp.Triage.Category != escalation.CategoryBilling {
		t.Fatalf("Category = %q, want billing", resp.Triage.Category)
	}
	if resp.Triage.Urgency != escalation.UrgencyHigh {
		t.Fatalf("Urgency = %q, want high", resp.Triage.Urgency)
	}
	if resp.Triage.Escalation == nil {
		t.Fatal("Escalation = nil, want record")
	}
	if f.searcher.calls != 0 {
		t.Fatalf("searcher calls = %d, want 0 for non-technical triage", f.searcher.calls)
	}
}

func TestDispatchTriageTechnicalDowngradesOnConfidentAnswer(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.startCall(t, "call-1")
	f.searcher.snippets = []retrieval.Snippet{{ID: "s1", Text: "restart the app to fix this", Score: 0.9}}

	resp, err := f.dispatcher.Dispatch(context.Background(), contract.Request{
		CallID: "call-1",
		Op:     contract.OpTriage,
		Triage: &contract.TriageArgs{Description: "system error, not working", UrgencyHint: "medium"},
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if !resp.Triage.AnswerProvided {
		t.Fatal("AnswerProvided = false, want true")
	}
	if resp.Triage.Escalation != nil {
		t.Fatalf("Escalation = %+v, want suppressed", resp.Triage.Escalation)
	}
	if resp.Triage.Answer != "restart the app to fix this" {
		t.Fatalf("Answer = %q, want snippet text", resp.Triage.Answer)
	}
	if resp.Triage.Confidence != 0.9 {
		t.Fatalf("Confidence = %v, want 0.9", resp.Triage.Confidence)
	}

	snapshot, _ := f.store.Get("call-1")
	if snapshot.EscalationState != callctx.EscalationNone {
		t.Fatalf("EscalationState = %q, want none after downgrade", snapshot.EscalationState)
	}
}

func TestDispatchTriageTechnicalEscalatesOnWeakAnswer(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.startCall(t, "call-1")
	f.searcher.snippets = []retrieval.Snippet{{ID: "s1", Text: "maybe related", Score: 0.3}}

	resp, err := f.dispatcher.Dispatch(context.Background(), contract.Request{
		CallID: "call-1",
		Op:     contract.OpTriage,
		Triage: &contract.TriageArgs{Description: "app is not working"},
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if resp.Triage.AnswerProvided {
		t.Fatal("AnswerProvided = true, want false")
	}
	if resp.Triage.Escalation == nil || resp.Triage.Escalation.Category != escalation.CategoryTechnical {
		t.Fatalf("Escalation = %+v, want technical", resp.Triage.Escalation)
	}
}

func TestDispatchEscalationReplacementAcrossOperations(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.startCall(t, "call-1")

	// General escalation from an unanswerable FAQ.
	if _, err := f.dispatcher.Dispatch(context.Background(), contract.Request{
		CallID: "call-1",
		Op:     contract.OpFAQLookup,
		FAQ:    &contract.FAQArgs{Query: "mystery question"},
	}); err != nil {
		t.Fatalf("faq Dispatch() error = %v", err)
	}

	// A critical triage must replace the active general escalation.
	if _, err := f.dispatcher.Dispatch(context.Background(), contract.Request{
		CallID: "call-1",
		Op:     contract.OpTriage,
		Triage: &contract.TriageArgs{Description: "fraud on my account", UrgencyHint: "high"},
	}); err != nil {
		t.Fatalf("triage Dispatch() error = %v", err)
	}

	snapshot, _ := f.store.Get("call-1")
	if snapshot.ActiveEscalation == nil || snapshot.ActiveEscalation.Category != escalation.CategoryCritical {
		t.Fatalf("ActiveEscalation = %+v, want critical", snapshot.ActiveEscalation)
	}
	if len(f.notifier.records) != 2 {
		t.Fatalf("notifier records = %d, want 2", len(f.notifier.records))
	}
}

func TestDispatchUnknownCall(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.dispatcher.Dispatch(context.Background(), contract.Request{
		CallID: "never-started",
		Op:     contract.OpFAQLookup,
		FAQ:    &contract.FAQArgs{Query: "hello"},
	})
	if !errors.Is(err, callctx.ErrUnknownCall) {
		t.Fatalf("Dispatch() error = %v, want ErrUnknownCall", err)
	}
}

func TestDispatchEndedCallRejectsInvocations(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.startCall(t, "call-1")
	f.store.End("call-1")

	_, err := f.dispatcher.Dispatch(context.Background(), contract.Request{
		CallID: "call-1",
		Op:     contract.OpFAQLookup,
		FAQ:    &contract.FAQArgs{Query: "hello"},
	})
	if !errors.Is(err, callctx.ErrUnknownCall) {
		t.Fatalf("Dispatch() error = %v, want ErrUnknownCall", err)
	}
}

func TestDispatchUnknownOperation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.startCall(t, "call-1")

	_, err := f.dispatcher.Dispatch(context.Background(), contract.Request{
		CallID: "call-1",
		Op:     contract.Operation("transfer"),
	})
	if !errors.Is(err, contract.ErrUnknownOperation) {
		t.Fatalf("Dispatch() error = %v, want ErrUnknownOperation", err)
	}
}

func TestDispatchMissingArgs(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.startCall(t, "call-1")

	for _, op := range []contract.Operation{
		contract.OpFAQLookup,
		contract.OpCRMLookup,
		contract.OpBooking,
		contract.OpRenewal,
		contract.OpTriage,
	} {
		_, err := f.dispatcher.Dispatch(context.Background(), contract.Request{CallID: "call-1", Op: op})
		if !errors.Is(err, contract.ErrMissingArgs) {
			t.Fatalf("Dispatch(%q) error = %v, want ErrMissingArgs", op, err)
		}
	}
}

func TestDispatchOperationsSequenceSharesOneIdentity(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.startCall(t, "call-1")
	f.verifyCaller(t, "call-1", &crm.Customer{ID: "cust-1", PolicyNumbers: []string{"POL-100"}})
	f.searcher.snippets = []retrieval.Snippet{{ID: "s1", Text: "we open at 9am", Score: 0.8}}

	ops := []contract.Request{
		{CallID: "call-1", Op: contract.OpFAQLookup, FAQ: &contract.FAQArgs{Query: "hours?"}},
		{CallID: "call-1", Op: contract.OpBooking, Booking: &contract.BookingArgs{Service: "inspection", Slot: "tomorrow"}},
		{CallID: "call-1", Op: contract.OpRenewal, Renewal: &contract.RenewalArgs{PolicyNumber: "POL-100"}},
	}
	for _, req := range ops {
		if _, err := f.dispatcher.Dispatch(context.Background(), req); err != nil {
			t.Fatalf("Dispatch(%q) error = %v", req.Op, err)
		}
	}

	snapshot, _ := f.store.Get("call-1")
	if snapshot.Customer.ID != "cust-1" {
		t.Fatalf("Customer.ID = %q, want cust-1", snapshot.Customer.ID)
	}
	// crm + faq + booking + renewal.
	if len(snapshot.ToolLog) != 4 {
		t.Fatalf("len(ToolLog) = %d, want 4", len(snapshot.ToolLog))
	}
	if len(snapshot.Confirmations) != 2 {
		t.Fatalf("len(Confirmations) = %d, want booking and renewal", len(snapshot.Confirmations))
	}
}
