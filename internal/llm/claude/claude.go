package claude

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"crypto-chart-analyzer/internal/api"
	"crypto-chart-analyzer/internal/llm"
	"crypto-chart-analyzer/internal/logger"
	"crypto-chart-analyzer/internal/store"
	"crypto-chart-analyzer/internal/trace"
	"crypto-chart-analyzer/internal/types"
)

const apiVersion = "2023-06-01"

// Analyzer calls the Anthropic Messages API with the chart as a base64 image block.
type Analyzer struct {
	cfg    *store.Config
	client *api.Client
	apiKey string
}

func NewAnalyzer(cfg *store.Config) *Analyzer {
	// CLAUDE_API_KEY wins over the shared key so both providers can be configured at once
	apiKey := os.Getenv("CLAUDE_API_KEY")
	if apiKey == "" {
		apiKey = cfg.APIKey()
	}
	client := api.NewClient(
		api.WithBaseURL(cfg.LLM.BaseURL),
		api.WithTimeout(time.Duration(cfg.LLM.TimeoutSeconds)*time.Second),
		api.WithHeader("x-api-key", apiKey),
		api.WithHeader("anthropic-version", apiVersion),
		api.WithLogging(true),
	)
	return &Analyzer{cfg: cfg, client: client, apiKey: apiKey}
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float32   `json:"temperature,omitempty"`
	Messages    []message `json:"messages"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (a *Analyzer) Analyze(ctx context.Context, in types.AnalysisInput) (string, error) {
	ctx, span := trace.StartSpan(ctx, "claude-api-call")
	defer span.End()

	if a.apiKey == "" {
		return "", fmt.Errorf("%w: set CLAUDE_API_KEY or %s", llm.ErrMissingAPIKey, a.cfg.LLM.APIKeyEnv)
	}

	mime := in.MimeType
	if mime == "" {
		mime = "image/png"
	}
	body := messagesRequest{
		Model:       a.cfg.LLM.Model,
		MaxTokens:   a.cfg.LLM.MaxTokens,
		Temperature: a.cfg.LLM.Temperature,
		Messages: []message{{
			Role: "user",
			Content: []contentBlock{
				{Type: "text", Text: in.Prompt},
				{Type: "image", Source: &imageSource{Type: "base64", MediaType: mime, Data: in.ImageBase64}},
			},
		}},
	}

	start := time.Now()
	resp, err := a.client.POST(ctx, "/messages", body)
	if err != nil {
		return "", fmt.Errorf("claude messages: %w", err)
	}

	var out messagesResponse
	if err := resp.ParseJSON(&out); err != nil {
		return "", err
	}
	logger.Debug(ctx, "Claude reply received",
		"model", a.cfg.LLM.Model,
		"latency_ms", time.Since(start).Milliseconds(),
		"input_tokens", out.Usage.InputTokens,
		"output_tokens", out.Usage.OutputTokens,
	)

	var sb strings.Builder
	for _, c := range out.Content {
		if c.Type == "text" {
			sb.WriteString(c.Text)
		}
	}
	return llm.Reply(sb.String())
}
