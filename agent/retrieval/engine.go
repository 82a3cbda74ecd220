package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrRetrievalUnavailable = errors.New("retrieval index is unreachable")
	ErrRetrievalTimeout     = errors.New("retrieval timed out")
	ErrEmptyCollection      = errors.New("collection has no indexed documents")
	ErrEmptyQuery           = errors.New("query is empty")
)

const DefaultTopK = 3

// Snippet is one ranked knowledge fragment returned by the index.
type Snippet struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Result is a ranked, immutable set of snippets ordered by descending score.
type Result struct {
	Snippets []Snippet `json:"snippets"`
}

func (r Result) Empty() bool {
	return len(r.Snippets) == 0
}

// Top returns the best-ranked snippet. Only valid when the result is non-empty.
func (r Result) Top() Snippet {
	return r.Snippets[0]
}

// Searcher is the semantic-search collaborator. Collections are opaque names;
// implementations return snippets in descending score order with scores in [0,1].
type Searcher interface {
	Search(ctx context.Context, collection string, query string, topK int) ([]Snippet, error)
}

type Config struct {
	TopK    int           `envconfig:"TOP_K" split_words:"true" default:"3"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"5s"`
}

// Engine wraps a Searcher with top-k defaulting, a hard timeout, and
// rank normalization. It never blocks past the configured timeout.
type Engine struct {
	searcher Searcher
	topK     int
	timeout  time.Duration
}

func NewEngine(searcher Searcher, cfg Config) (*Engine, error) {
	if searcher == nil {
		return nil, errors.New("searcher is required")
	}

	topK := cfg.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Engine{
		searcher: searcher,
		topK:     topK,
		timeout:  timeout,
	}, nil
}

// Search runs a semantic query against the named collection. topK <= 0 falls
// back to the configured default. Zero matches is a valid empty Result;
// ErrEmptyCollection means the collection itself holds no documents.
func (e *Engine) Search(ctx context.Context, collection string, query string, topK int) (Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, ErrEmptyQuery
	}
	if strings.TrimSpace(collection) == "" {
		return Result{}, fmt.Errorf("%w: collection name is empty", ErrRetrievalUnavailable)
	}
	if topK <= 0 {
		topK = e.topK
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	snippets, err := e.searcher.Search(ctx, collection, query, topK)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Warn().Str("collection", collection).Dur("timeout", e.timeout).Msg("retrieval timed out")
			return Result{}, ErrRetrievalTimeout
		}
		if errors.Is(err, ErrEmptyCollection) {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("%w: %v", ErrRetrievalUnavailable, err)
	}

	return normalize(snippets, topK), nil
}

// normalize clamps scores into [0,1], restores descending order if the
// backend violated it, and truncates to topK. The sort is stable so ties
// keep the backend's insertion order.
func normalize(snippets []Snippet, topK int) Result {
	out := make([]Snippet, len(snippets))
	copy(out, snippets)

	for i := range out {
		if out[i].Score < 0 {
			out[i].Score = 0
		}
		if out[i].Score > 1 {
			out[i].Score = 1
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	if len(out) > topK {
		out = out[:topK]
	}
	return Result{Snippets: out}
}
