package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/voicedeskai/voicedesk/agent/callctx"
)

var ErrInvalidCallID = errors.New("call id is empty")

const (
	defaultArchiveKeyPrefix = "voicedesk:call:"
	defaultArchiveTTL       = 7 * 24 * time.Hour
	maxResponseSizeBytes    = 2 << 20
)

// Archiver persists the final snapshot of an ended call for audit.
type Archiver interface {
	Archive(ctx context.Context, snapshot callctx.CallContext) error
}

// NoopArchiver discards snapshots. Used when no archive is configured.
type NoopArchiver struct{}

func (NoopArchiver) Archive(context.Context, callctx.CallContext) error { return nil }

// ArchiveOption customizes UpstashRedisArchive.
type ArchiveOption func(*UpstashRedisArchive)

func WithKeyPrefix(prefix string) ArchiveOption {
	return func(a *UpstashRedisArchive) {
		trimmed := strings.TrimSpace(prefix)
		if trimmed != "" {
			a.keyPrefix = trimmed
		}
	}
}

func WithTTL(ttl time.Duration) ArchiveOption {
	return func(a *UpstashRedisArchive) {
		a.ttl = ttl
	}
}

func WithHTTPClient(client *http.Client) ArchiveOption {
	return func(a *UpstashRedisArchive) {
		if client != nil {
			a.httpClient = client
		}
	}
}

// UpstashRedisArchive writes call snapshots to Upstash Redis via REST.
// Retention is TTL-based; archived calls are never read on the call path.
type UpstashRedisArchive struct {
	baseURL    string
	token      string
	httpClient *http.Client
	keyPrefix  string
	ttl        time.Duration
}

type redisRESTResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

type UpstashRedisConfig struct {
	URL     string        `envconfig:"URL" split_words:"true" required:"true"`
	Token   string        `envconfig:"TOKEN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

func NewUpstashRedisArchive(cfg UpstashRedisConfig, opts ...ArchiveOption) (*UpstashRedisArchive, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, errors.New("upstash redis url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid redis rest url: %w", err)
	}

	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("upstash redis token is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	archive := &UpstashRedisArchive{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		keyPrefix: defaultArchiveKeyPrefix,
		ttl:       defaultArchiveTTL,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(archive)
		}
	}

	if archive.ttl < 0 {
		return nil, errors.New("ttl must be >= 0")
	}

	return archive, nil
}

func (a *UpstashRedisArchive) Archive(ctx context.Context, snapshot callctx.CallContext) error {
	key, err := a.redisKey(snapshot.CallID)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal call snapshot: %w", err)
	}

	cmd := []any{"SET", key, string(payload)}
	if a.ttl > 0 {
		cmd = append(cmd, "EX", ttlSeconds(a.ttl))
	}

	_, err = a.exec(ctx, cmd)
	return err
}

func (a *UpstashRedisArchive) redisKey(callID string) (string, error) {
	if strings.TrimSpace(callID) == "" {
		return "", ErrInvalidCallID
	}
	return strings.TrimSpace(a.keyPrefix) + callID, nil
}

func (a *UpstashRedisArchive) exec(ctx context.Context, command []any) (*redisRESTResponse, error) {
	body, err := json.Marshal(command)
	if err != nil {
		return nil, fmt.Errorf("marshal redis command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build redis request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute redis request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read redis response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("redis http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed redisRESTResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode redis response: %w", err)
	}
	if parsed.Error != "" {
		return nil, errors.New(parsed.Error)
	}
	return &parsed, nil
}

func ttlSeconds(ttl time.Duration) int64 {
	seconds := ttl / time.Second
	if seconds <= 0 {
		return 1
	}
	if ttl%time.Second != 0 {
		seconds++
	}
	return int64(seconds)
}
