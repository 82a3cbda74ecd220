package embedder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type Config struct {
	APIKey  string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	BaseURL string        `envconfig:"BASE_URL" split_words:"true"`
	Model   string        `envconfig:"MODEL" split_words:"true" default:"text-embedding-3-small"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"15s"`
}

// Client turns query text into embedding vectors via the OpenAI API.
type Client struct {
	api   openaisdk.Client
	model string
}

func NewClient(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("embedder api key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if trimmed := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = string(openaisdk.EmbeddingModelTextEmbedding3Small)
	}

	return &Client{
		api:   openaisdk.NewClient(opts...),
		model: model,
	}, nil
}

func MustNew(cfg Config) *Client {
	client, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

// Embed returns the embedding vector for a single piece of text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, errors.New("embed text is empty")
	}

	resp, err := c.api.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfString: openaisdk.String(trimmed),
		},
		Model: openaisdk.EmbeddingModel(c.model),
	})
	if err != nil {
		return nil, fmt.Errorf("embedder: create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("embedder: empty embedding response")
	}

	raw := resp.Data[0].Embedding
	vec := make([]float32, len(raw))
	for i, v := range raw {
		vec[i] = float32(v)
	}
	return vec, nil
}
