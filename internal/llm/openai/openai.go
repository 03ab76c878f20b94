package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"crypto-chart-analyzer/internal/imaging"
	"crypto-chart-analyzer/internal/llm"
	"crypto-chart-analyzer/internal/logger"
	"crypto-chart-analyzer/internal/store"
	"crypto-chart-analyzer/internal/trace"
	"crypto-chart-analyzer/internal/types"
)

// Analyzer talks to any OpenAI-compatible chat completions endpoint that
// accepts image parts.
type Analyzer struct {
	cfg    *store.Config
	client *goopenai.Client
	apiKey string
}

func NewAnalyzer(cfg *store.Config) *Analyzer {
	apiKey := cfg.APIKey()
	oc := goopenai.DefaultConfig(apiKey)
	oc.BaseURL = cfg.LLM.BaseURL
	hc := &http.Client{}
	if cfg.LLM.TimeoutSeconds > 0 {
		hc.Timeout = time.Duration(cfg.LLM.TimeoutSeconds) * time.Second
	}
	oc.HTTPClient = hc
	return &Analyzer{cfg: cfg, client: goopenai.NewClientWithConfig(oc), apiKey: apiKey}
}

func (a *Analyzer) Analyze(ctx context.Context, in types.AnalysisInput) (string, error) {
	ctx, span := trace.StartSpan(ctx, "openai-api-call")
	defer span.End()

	if a.apiKey == "" {
		return "", fmt.Errorf("%w: set %s", llm.ErrMissingAPIKey, a.cfg.LLM.APIKeyEnv)
	}

	req := goopenai.ChatCompletionRequest{
		Model:       a.cfg.LLM.Model,
		MaxTokens:   a.cfg.LLM.MaxTokens,
		Temperature: a.cfg.LLM.Temperature,
		Messages: []goopenai.ChatCompletionMessage{
			{
				Role: goopenai.ChatMessageRoleUser,
				MultiContent: []goopenai.ChatMessagePart{
					{Type: goopenai.ChatMessagePartTypeText, Text: in.Prompt},
					{
						Type: goopenai.ChatMessagePartTypeImageURL,
						ImageURL: &goopenai.ChatMessageImageURL{
							URL:    imaging.DataURL(in.MimeType, in.ImageBase64),
							Detail: goopenai.ImageURLDetail(a.cfg.LLM.ImageDetail),
						},
					},
				},
			},
		},
	}

	logger.Debug(ctx, "Sending chart to inference service",
		"model", a.cfg.LLM.Model,
		"base_url", a.cfg.LLM.BaseURL,
		"image_bytes_b64", len(in.ImageBase64),
	)
	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	logger.Debug(ctx, "Inference reply received",
		"model", resp.Model,
		"latency_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)

	if len(resp.Choices) == 0 {
		return "", llm.ErrEmptyReply
	}
	return llm.Reply(resp.Choices[0].Message.Content)
}
