package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

// Embedder turns query text into the vector the index was built with.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type WeaviateConfig struct {
	URL string `envconfig:"URL" split_words:"true" default:"http://localhost:8080"`
}

// WeaviateSearcher implements Searcher over a Weaviate instance using
// nearVector queries with externally computed embeddings.
type WeaviateSearcher struct {
	client *weaviate.Client
	embed  Embedder
}

func NewWeaviateSearcher(cfg WeaviateConfig, embed Embedder) (*WeaviateSearcher, error) {
	if embed == nil {
		return nil, errors.New("embedder is required")
	}

	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil, errors.New("weaviate url is required")
	}

	conf := weaviate.Config{
		Host:   url,
		Scheme: "http",
	}
	if strings.HasPrefix(url, "https://") {
		conf.Scheme = "https"
		conf.Host = strings.TrimPrefix(url, "https://")
	} else if strings.HasPrefix(url, "http://") {
		conf.Host = strings.TrimPrefix(url, "http://")
	}

	client, err := weaviate.NewClient(conf)
	if err != nil {
		return nil, fmt.Errorf("create weaviate client: %w", err)
	}

	return &WeaviateSearcher{
		client: client,
		embed:  embed,
	}, nil
}

func (w *WeaviateSearcher) Search(ctx context.Context, collection string, query string, topK int) ([]Snippet, error) {
	vector, err := w.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	class := className(collection)

	nearVector := w.client.GraphQL().NearVectorArgBuilder().
		WithVector(vector)

	fields := []graphql.Field{
		{Name: "snippetId"},
		{Name: "text"},
		{Name: "_additional { certainty }"},
	}

	resp, err := w.client.GraphQL().Get().
		WithClassName(class).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(topK).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("weaviate search: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("weaviate search: %s", resp.Errors[0].Message)
	}

	snippets := parseHits(resp.Data, class)
	if len(snippets) > 0 {
		return snippets, nil
	}

	// Distinguish an unpopulated collection from a query with no matches.
	count, err := w.documentCount(ctx, class)
	if err != nil {
		return nil, fmt.Errorf("weaviate count: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCollection, collection)
	}
	return nil, nil
}

func (w *WeaviateSearcher) documentCount(ctx context.Context, class string) (int, error) {
	resp, err := w.client.GraphQL().Aggregate().
		WithClassName(class).
		WithFields(graphql.Field{
			Name:   "meta",
			Fields: []graphql.Field{{Name: "count"}},
		}).
		Do(ctx)
	if err != nil {
		return 0, err
	}
	if len(resp.Errors) > 0 {
		return 0, errors.New(resp.Errors[0].Message)
	}

	aggregate, ok := resp.Data["Aggregate"].(map[string]any)
	if !ok {
		return 0, nil
	}
	rows, ok := aggregate[class].([]any)
	if !ok || len(rows) == 0 {
		return 0, nil
	}
	row, ok := rows[0].(map[string]any)
	if !ok {
		return 0, nil
	}
	meta, ok := row["meta"].(map[string]any)
	if !ok {
		return 0, nil
	}
	count, _ := meta["count"].(float64)
	return int(count), nil
}

func parseHits(data map[string]models.JSONObject, class string) []Snippet {
	get, ok := data["Get"].(map[string]any)
	if !ok {
		return nil
	}
	rows, ok := get[class].([]any)
	if !ok {
		return nil
	}

	snippets := make([]Snippet, 0, len(rows))
	for _, raw := range rows {
		row, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		snippet := Snippet{}
		snippet.ID, _ = row["snippetId"].(string)
		snippet.Text, _ = row["text"].(string)
		if additional, ok := row["_additional"].(map[string]any); ok {
			snippet.Score, _ = additional["certainty"].(float64)
		}
		snippets = append(snippets, snippet)
	}
	return snippets
}

// className maps an opaque collection name onto a Weaviate class name,
// which must start with an upper-case letter.
func className(collection string) string {
	collection = strings.TrimSpace(collection)
	if collection == "" {
		return collection
	}
	runes := []rune(collection)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
