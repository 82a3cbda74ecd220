package faq

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
)

func (s *Service) compileLookupGraph(
	ctx context.Context,
) (compose.Runnable[Query, Answer], error) {
	graph := compose.NewGraph[Query, Answer]()

	if err := graph.AddLambdaNode("validate_query",
		compose.InvokableLambda(func(ctx context.Context, in Query) (*pipelineState, error) {
			return s.validateQuery(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_query: %w", err)
	}

	if err := graph.AddLambdaNode("retrieve",
		compose.InvokableLambda(func(ctx context.Context, in *pipelineState) (*pipelineState, error) {
			return s.retrieve(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node retrieve: %w", err)
	}

	if err := graph.AddLambdaNode("decide",
		compose.InvokableLambda(func(ctx context.Context, in *pipelineState) (*pipelineState, error) {
			return s.decide(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node decide: %w", err)
	}

	if err := graph.AddLambdaNode("route_escalation",
		compose.InvokableLambda(func(ctx context.Context, in *pipelineState) (*pipelineState, error) {
			return s.routeEscalation(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node route_escalation: %w", err)
	}

	if err := graph.AddLambdaNode("finalize",
		compose.InvokableLambda(func(ctx context.Context, in *pipelineState) (Answer, error) {
			return s.finalize(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_query"},
		{"validate_query", "retrieve"},
		{"retrieve", "decide"},
		{"decide", "route_escalation"},
		{"route_escalation", "finalize"},
		{"finalize", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("faq.lookup"))
	if err != nil {
		return nil, fmt.Errorf("compile faq lookup graph: %w", err)
	}
	return runner, nil
}
