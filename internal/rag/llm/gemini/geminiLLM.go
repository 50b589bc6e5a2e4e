package gemini

import (
	"context"
	"errors"
	"time"

	"github.com/surajvast1/Doc-Manager/internal/config"
	"github.com/surajvast1/Doc-Manager/internal/domain/errs"
	"github.com/surajvast1/Doc-Manager/internal/metrics"
	"github.com/surajvast1/Doc-Manager/internal/rag/llm"
	"github.com/surajvast1/Doc-Manager/pkg/logger_i"
	"google.golang.org/genai"
)

const providerName = "gemini"

type llmClient struct {
	client      *genai.Client
	modelName   string
	temperature float32
	logger      *logger_i.Logger
}

func New(client *genai.Client, modelName string, temperature float64) llm.Provider {
	return &llmClient{
		client:      client,
		modelName:   modelName,
		temperature: float32(temperature),
		logger:      logger_i.NewLogger("llm_gemini"),
	}
}

func (c *llmClient) Complete(ctx context.Context, systemContext, question string) (string, error) {
	log := c.logger.WithTrace(ctx)
	ctx, cancel := context.WithTimeout(ctx, config.ProviderCallTimeout)
	defer cancel()

	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: llm.SystemMessage(systemContext)}},
		},
		Temperature: genai.Ptr(c.temperature),
	}

	start := time.Now()
	result, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(question), contentConfig)
	metrics.CaptureExecutionMetrics("completion_gemini", time.Since(start))
	if err != nil {
		log.Error("Error generating content from Gemini", "error", err)
		return "", &errs.CompletionError{Provider: providerName, Err: err}
	}

	text := result.Text()
	if text == "" {
		return "", &errs.CompletionError{Provider: providerName, Err: errors.New("empty response")}
	}
	return text, nil
}
