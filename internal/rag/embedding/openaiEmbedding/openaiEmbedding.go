package openaiEmbedding

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/surajvast1/Doc-Manager/internal/domain/errs"
	"github.com/surajvast1/Doc-Manager/internal/rag/embedding"
	"github.com/surajvast1/Doc-Manager/pkg/logger_i"
)

const providerName = "openai"

type client struct {
	api       openai.Client
	model     string
	dims      int
	batchSize int
	logger    *logger_i.Logger
}

// New wraps an OpenAI client. dims is sent as the requested output size,
// which the text-embedding-3 family honours.
func New(api openai.Client, model string, dims, batchSize int) embedding.Embedder {
	return &client{
		api:       api,
		model:     model,
		dims:      dims,
		batchSize: batchSize,
		logger:    logger_i.NewLogger("openai_embedding"),
	}
}

func (c *client) Dimensions() int { return c.dims }

func (c *client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedding.EmbedInBatches(ctx, providerName, texts, c.batchSize, c.dims, c.call)
}

func (c *client) call(ctx context.Context, texts []string) ([][]float32, error) {
	log := c.logger.WithTrace(ctx)
	log.Debug("embedding batch", "size", len(texts), "model", c.model)

	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model:      openai.EmbeddingModel(c.model),
		Dimensions: openai.Int(int64(c.dims)),
	})
	if err != nil {
		log.Error("Error getting embeddings from OpenAI", "error", err)
		return nil, classify(err)
	}

	// the API documents index as the position in the input
	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(texts) {
			continue
		}
		v := make([]float32, len(d.Embedding))
		for i, f := range d.Embedding {
			v[i] = float32(f)
		}
		vectors[d.Index] = v
	}
	return vectors, nil
}

func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &errs.EmbeddingError{
			Provider:  providerName,
			Retryable: embedding.RetryableStatus(apiErr.StatusCode),
			Err:       err,
		}
	}
	return &errs.EmbeddingError{Provider: providerName, Retryable: true, Err: err}
}
