package googleEmbedding

import (
	"context"
	"errors"

	"github.com/surajvast1/Doc-Manager/internal/domain/errs"
	"github.com/surajvast1/Doc-Manager/internal/rag/embedding"
	"github.com/surajvast1/Doc-Manager/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	providerName = "gemini"
	taskDocument = "RETRIEVAL_DOCUMENT"
	taskQuery    = "RETRIEVAL_QUERY"
)

type client struct {
	genAi     *genai.Client
	model     string
	dims      int32
	batchSize int
	logger    *logger_i.Logger
}

func New(genAi *genai.Client, model string, dims, batchSize int) embedding.Embedder {
	return &client{
		genAi:     genAi,
		model:     model,
		dims:      int32(dims),
		batchSize: batchSize,
		logger:    logger_i.NewLogger("google_embedding"),
	}
}

func (c *client) Dimensions() int { return int(c.dims) }

// Embed is used for queries, so it asks for query-side embeddings.
func (c *client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := embedding.EmbedInBatches(ctx, providerName, []string{text}, 1, int(c.dims),
		func(ctx context.Context, texts []string) ([][]float32, error) {
			return c.doCall(ctx, texts, taskQuery)
		})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedding.EmbedInBatches(ctx, providerName, texts, c.batchSize, int(c.dims),
		func(ctx context.Context, texts []string) ([][]float32, error) {
			return c.doCall(ctx, texts, taskDocument)
		})
}

func (c *client) doCall(ctx context.Context, texts []string, task string) ([][]float32, error) {
	log := c.logger.WithTrace(ctx)
	log.Debug("embedding batch", "size", len(texts), "task", task)

	result, err := c.genAi.Models.EmbedContent(ctx, c.model, getContent(texts), &genai.EmbedContentConfig{
		OutputDimensionality: &c.dims,
		TaskType:             task,
	})
	if err != nil {
		log.Error("Error getting Embeddings from Google", "error", err)
		return nil, classify(err)
	}

	vectors := make([][]float32, 0, len(result.Embeddings))
	for _, e := range result.Embeddings {
		if e == nil {
			vectors = append(vectors, nil)
			continue
		}
		vectors = append(vectors, e.Values)
	}
	return vectors, nil
}

func getContent(chunks []string) []*genai.Content {
	contentsToSend := make([]*genai.Content, 0, len(chunks))
	for _, chunk := range chunks {
		contentsToSend = append(contentsToSend, &genai.Content{
			Parts: []*genai.Part{{Text: chunk}},
		})
	}
	return contentsToSend
}

func classify(err error) error {
	if code, ok := apiErrorCode(err); ok {
		return &errs.EmbeddingError{Provider: providerName, Retryable: embedding.RetryableStatus(code), Err: err}
	}
	if s, ok := status.FromError(err); ok && s.Code() == codes.ResourceExhausted {
		return &errs.EmbeddingError{Provider: providerName, Retryable: true, Err: err}
	}
	return &errs.EmbeddingError{Provider: providerName, Err: err}
}

// genai surfaces HTTP failures as APIError, by value or by pointer
// depending on the call path.
func apiErrorCode(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, true
	}
	return 0, false
}
