package openaiLLM

import (
	"context"
	"errors"
	"time"

	"github.com/openai/openai-go"
	"github.com/surajvast1/Doc-Manager/internal/config"
	"github.com/surajvast1/Doc-Manager/internal/domain/errs"
	"github.com/surajvast1/Doc-Manager/internal/metrics"
	"github.com/surajvast1/Doc-Manager/internal/rag/llm"
	"github.com/surajvast1/Doc-Manager/pkg/logger_i"
)

const providerName = "openai"

type llmClient struct {
	api         openai.Client
	modelName   string
	temperature float64
	logger      *logger_i.Logger
}

func New(api openai.Client, modelName string, temperature float64) llm.Provider {
	return &llmClient{
		api:         api,
		modelName:   modelName,
		temperature: temperature,
		logger:      logger_i.NewLogger("llm_openai"),
	}
}

func (c *llmClient) Complete(ctx context.Context, systemContext, question string) (string, error) {
	log := c.logger.WithTrace(ctx)
	ctx, cancel := context.WithTimeout(ctx, config.ProviderCallTimeout)
	defer cancel()

	start := time.Now()
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(llm.SystemMessage(systemContext)),
			openai.UserMessage(question),
		},
		Model:       openai.ChatModel(c.modelName),
		Temperature: openai.Float(c.temperature),
	})
	metrics.CaptureExecutionMetrics("completion_openai", time.Since(start))
	if err != nil {
		log.Error("Error getting completion from OpenAI", "error", err)
		return "", &errs.CompletionError{Provider: providerName, Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &errs.CompletionError{Provider: providerName, Err: errors.New("no choices returned")}
	}

	log.Debug("completion received", "model", resp.Model, "tokens", resp.Usage.TotalTokens)
	return resp.Choices[0].Message.Content, nil
}
