package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/bryanwahyu/interpretlab/internal/domain/analyses"
	"github.com/bryanwahyu/interpretlab/internal/domain/core"
	"github.com/bryanwahyu/interpretlab/internal/infra/ai/prompt"
)

const (
	maxTokens    = 2048
	defaultModel = "o3-2025-04-16"
)

// ErrQuotaExceeded indicates the provider returned a quota/limit error (HTTP 429).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// Engine runs interpretability analyses through the chat completion API.
type Engine struct {
	client *openai.Client
	Model  string
	log    *zap.Logger
}

func NewEngine(apiKey, model string, log *zap.Logger) *Engine {
	return NewEngineWithConfig(openai.DefaultConfig(apiKey), model, log)
}

// NewEngineWithConfig is used when the base URL differs (proxies, tests).
func NewEngineWithConfig(cfg openai.ClientConfig, model string, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{client: openai.NewClientWithConfig(cfg), Model: model, log: log}
}

func (e *Engine) Run(ctx context.Context, job analyses.Job) (core.Object, error) {
	system, err := prompt.System(job.Analysis.AnalysisType)
	if err != nil {
		return nil, err
	}
	user, err := prompt.User(job)
	if err != nil {
		return nil, err
	}

	model := e.Model
	if model == "" {
		model = defaultModel
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if reasoning(model) {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := e.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: %s", ErrQuotaExceeded, apiErr.Message)
		}
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned", prompt.ErrMalformed)
	}
	e.log.Debug("analysis reply received",
		zap.Int64("analysis_id", int64(job.Analysis.ID)),
		zap.String("model", model),
		zap.Int("total_tokens", resp.Usage.TotalTokens))

	return prompt.Parse(job.Analysis.AnalysisType, resp.Choices[0].Message.Content)
}

func reasoning(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}
