package retrieve

import (
	"context"
	"strings"
	"time"

	"github.com/surajvast1/Doc-Manager/internal/domain/commonModels"
	"github.com/surajvast1/Doc-Manager/internal/domain/errs"
	"github.com/surajvast1/Doc-Manager/internal/metrics"
	"github.com/surajvast1/Doc-Manager/internal/rag/embedding"
	"github.com/surajvast1/Doc-Manager/internal/rag/vectorDB"
	"github.com/surajvast1/Doc-Manager/pkg/logger_i"
)

const DefaultTopK = 10

type Retriever struct {
	backend  vectorDB.Backend
	schema   vectorDB.Schema
	embedder embedding.Embedder
	topK     int
	logger   *logger_i.Logger
}

// New builds a retriever over one index. embedder may be nil, in which
// case hits come back in the backend's keyword order.
func New(backend vectorDB.Backend, schema vectorDB.Schema, embedder embedding.Embedder, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{
		backend:  backend,
		schema:   schema,
		embedder: embedder,
		topK:     topK,
		logger:   logger_i.NewLogger("retriever"),
	}
}

// Retrieve finds passages whose text matches query and joins them with a
// single space in backend order. No match is not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string) (commonModels.RetrievalContext, error) {
	log := r.logger.WithTrace(ctx).With("index", r.schema.Index)
	query = strings.TrimSpace(query)
	if query == "" {
		return commonModels.RetrievalContext{}, errs.Validation("question", "must not be empty")
	}

	q := vectorDB.MatchQuery{Text: query, Limit: r.topK}
	if r.embedder != nil {
		vector, err := r.embedder.Embed(ctx, query)
		if err != nil {
			// keyword order still answers the question
			log.Warn("query embedding failed, falling back to keyword order", "error", err)
		} else {
			q.Vector = vector
		}
	}

	start := time.Now()
	hits, err := r.backend.Search(ctx, r.schema, q)
	metrics.CaptureExecutionMetrics("search_"+r.backend.Name(), time.Since(start))
	if err != nil {
		log.Error("search failed", "error", err)
		return commonModels.RetrievalContext{}, &errs.IndexError{Index: r.schema.Index, Op: "search", Err: err}
	}

	texts := make([]string, 0, len(hits))
	sources := []string{}
	seen := make(map[string]struct{}, len(hits))
	for _, h := range hits {
		if h.Text == "" {
			continue
		}
		texts = append(texts, h.Text)
		if _, ok := seen[h.Source]; !ok && h.Source != "" {
			seen[h.Source] = struct{}{}
			sources = append(sources, h.Source)
		}
	}

	log.Debug("retrieved", "hits", len(texts), "sources", len(sources))
	if len(texts) == 0 {
		return commonModels.RetrievalContext{Sources: sources, Empty: true}, nil
	}
	return commonModels.RetrievalContext{
		Text:    strings.Join(texts, " "),
		Sources: sources,
	}, nil
}
