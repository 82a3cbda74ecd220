package faq

import (
	"context"
	"errors"
	"strings"

	"github.com/cloudwego/eino/compose"

	"github.com/voicedeskai/voicedesk/agent/confidence"
	"github.com/voicedeskai/voicedesk/agent/escalation"
	"github.com/voicedeskai/voicedesk/agent/retrieval"
)

var ErrEmptyQuery = retrieval.ErrEmptyQuery

// Query is the input to one knowledge-base lookup.
type Query struct {
	Text        string
	UrgencyHint string
}

// Answer is the outcome of one lookup. Escalation is nil when the
// question was answered with sufficient confidence.
type Answer struct {
	Decision   confidence.Decision
	Answer     string
	Escalation *escalation.Record
}

type Config struct {
	// Collection is the knowledge-base collection to search.
	Collection string `envconfig:"COLLECTION_NAME" default:"faq_knowledge_base"`
}

type Service struct {
	engine *retrieval.Engine
	policy *confidence.Policy
	router *escalation.Router

	collection string

	runner compose.Runnable[Query, Answer]
}

func New(engine *retrieval.Engine, policy *confidence.Policy, router *escalation.Router, cfg Config) (*Service, error) {
	if engine == nil {
		return nil, errors.New("retrieval engine is required")
	}
	if policy == nil {
		return nil, errors.New("confidence policy is required")
	}
	if router == nil {
		return nil, errors.New("escalation router is required")
	}

	collection := strings.TrimSpace(cfg.Collection)
	if collection == "" {
		collection = "faq_knowledge_base"
	}

	s := &Service{
		engine:     engine,
		policy:     policy,
		router:     router,
		collection: collection,
	}

	runner, err := s.compileLookupGraph(context.Background())
	if err != nil {
		return nil, err
	}
	s.runner = runner

	return s, nil
}

// Lookup answers a caller question from the knowledge base. Retrieval
// failures degrade to an escalated answer instead of an error so one
// flaky backend never drops a live call.
func (s *Service) Lookup(ctx context.Context, q Query) (Answer, error) {
	return s.runner.Invoke(ctx, q)
}

// pipelineState threads one lookup through the graph nodes.
type pipelineState struct {
	query Query

	result   retrieval.Result
	decision confidence.Decision

	answer     string
	escalation *escalation.Record
}

func (s *Service) validateQuery(in Query) (*pipelineState, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, ErrEmptyQuery
	}
	return &pipelineState{query: in}, nil
}

func (s *Service) retrieve(ctx context.Context, st *pipelineState) (*pipelineState, error) {
	result, err := s.engine.Search(ctx, s.collection, st.query.Text, 0)
	if err != nil {
		if errors.Is(err, retrieval.ErrEmptyQuery) {
			return nil, err
		}
		// Unavailable, timed out, or empty collection: treat as no
		// results so the decide node escalates instead of failing.
		st.result = retrieval.Result{}
		return st, nil
	}
	st.result = result
	return st, nil
}

func (s *Service) decide(st *pipelineState) (*pipelineState, error) {
	st.decision = s.policy.Decide(st.result)
	if st.decision.Resolved() && !st.result.Empty() {
		st.answer = st.result.Top().Text
	}
	return st, nil
}

func (s *Service) routeEscalation(st *pipelineState) (*pipelineState, error) {
	if st.decision.Resolved() {
		return st, nil
	}
	rec := s.router.Classify(st.query.Text, st.query.UrgencyHint)
	st.escalation = &rec
	return st, nil
}

func (s *Service) finalize(st *pipelineState) (Answer, error) {
	return Answer{
		Decision:   st.decision,
		Answer:     st.answer,
		Escalation: st.escalation,
	}, nil
}
