package weaviateDB

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-openapi/strfmt"
	"github.com/surajvast1/Doc-Manager/internal/domain/commonModels"
	"github.com/surajvast1/Doc-Manager/internal/rag/vectorDB"
	"github.com/surajvast1/Doc-Manager/pkg/logger_i"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/fault"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const (
	propText       = "text"
	propSource     = "source"
	propChunkIndex = "chunkIndex"
	propMetadata   = "metadata"
)

type Store struct {
	client *weaviate.Client
	logger *logger_i.Logger
}

func NewClient(host, scheme, apiKey string, httpClient *http.Client) (*weaviate.Client, error) {
	cfg := weaviate.Config{Host: host, Scheme: scheme, ConnectionClient: httpClient}
	if apiKey != "" {
		cfg.Headers = map[string]string{"Authorization": "Bearer " + apiKey}
	}
	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("weaviate client error: %w", err)
	}
	return client, nil
}

func New(client *weaviate.Client) *Store {
	return &Store{client: client, logger: logger_i.NewLogger("Weaviate")}
}

func (s *Store) Name() string { return "weaviate" }

// ClassName maps an index name to a weaviate class: document_embeddings
// becomes DocumentEmbeddings.
func ClassName(index string) string {
	var b strings.Builder
	upper := true
	for _, r := range index {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) IndexExists(ctx context.Context, index string) (bool, error) {
	exists, err := s.client.Schema().ClassExistenceChecker().WithClassName(ClassName(index)).Do(ctx)
	return exists, classify(err)
}

// CreateIndex declares a class with its own vectors. Weaviate does not
// store the vector size, so it is kept in the class description.
func (s *Store) CreateIndex(ctx context.Context, schema vectorDB.Schema) error {
	class := &models.Class{
		Class:       ClassName(schema.Index),
		Description: describe(schema),
		Vectorizer:  "none",
		Properties: []*models.Property{
			{Name: propText, DataType: []string{"text"}, Tokenization: "word"},
			{Name: propSource, DataType: []string{"text"}, Tokenization: "field"},
			{Name: propChunkIndex, DataType: []string{"int"}},
			{Name: propMetadata, DataType: []string{"text"}, Tokenization: "field"},
		},
	}

	err := s.client.Schema().ClassCreator().WithClass(class).Do(ctx)
	if isAlreadyExists(err) {
		return vectorDB.ErrIndexAlreadyExists
	}
	return classify(err)
}

func describe(schema vectorDB.Schema) string {
	return fmt.Sprintf("vector=%s dims=%d", schema.VectorField, schema.Dimensions)
}

func (s *Store) IndexDimensions(ctx context.Context, schema vectorDB.Schema) (int, error) {
	class, err := s.client.Schema().ClassGetter().WithClassName(ClassName(schema.Index)).Do(ctx)
	if err != nil {
		return 0, classify(err)
	}
	var (
		field string
		dims  int
	)
	if _, err := fmt.Sscanf(class.Description, "vector=%s dims=%d", &field, &dims); err != nil {
		// created outside this service; nothing to compare against
		return 0, nil
	}
	return dims, nil
}

func (s *Store) Bulk(ctx context.Context, schema vectorDB.Schema, records []commonModels.IndexRecord) ([]error, error) {
	className := ClassName(schema.Index)
	objects := make([]*models.Object, len(records))
	for i, r := range records {
		objects[i] = &models.Object{
			Class: className,
			ID:    strfmt.UUID(r.ID),
			Properties: map[string]interface{}{
				propText:       r.Text,
				propSource:     r.Source(),
				propChunkIndex: r.Sequence,
				propMetadata:   encodeMetadata(r.Metadata),
			},
			Vector: models.C11yVector(r.Vector),
		}
	}

	resp, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return nil, classify(err)
	}

	byID := make(map[string]error, len(resp))
	for _, o := range resp {
		byID[o.ID.String()] = objectError(o)
	}
	results := make([]error, len(records))
	for i, r := range records {
		itemErr, ok := byID[r.ID]
		if !ok {
			itemErr = errors.New("no result returned for object")
		}
		results[i] = itemErr
	}
	return results, nil
}

func objectError(o models.ObjectsGetResponse) error {
	if o.Result == nil || o.Result.Errors == nil || len(o.Result.Errors.Error) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(o.Result.Errors.Error))
	for _, e := range o.Result.Errors.Error {
		if e != nil {
			msgs = append(msgs, e.Message)
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// Search runs a BM25 keyword query over the text property.
func (s *Store) Search(ctx context.Context, schema vectorDB.Schema, q vectorDB.MatchQuery) ([]vectorDB.Hit, error) {
	className := ClassName(schema.Index)
	bm25 := s.client.GraphQL().Bm25ArgBuilder().
		WithQuery(q.Text).
		WithProperties(propText)

	fields := []graphql.Field{
		{Name: propText},
		{Name: propSource},
		{Name: "_additional", Fields: []graphql.Field{{Name: "id"}, {Name: "score"}}},
	}

	res, err := s.client.GraphQL().Get().
		WithClassName(className).
		WithBM25(bm25).
		WithLimit(q.Limit).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		s.logger.WithTrace(ctx).Error("Error querying Weaviate", "error", err)
		return nil, classify(err)
	}
	if len(res.Errors) > 0 {
		msgs := make([]string, 0, len(res.Errors))
		for _, e := range res.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("graphql error: %s", strings.Join(msgs, "; "))
	}

	var hits []vectorDB.Hit
	data, _ := res.Data["Get"].(map[string]interface{})
	rows, _ := data[className].([]interface{})
	for _, row := range rows {
		props, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		hit := vectorDB.Hit{}
		hit.Text, _ = props[propText].(string)
		hit.Source, _ = props[propSource].(string)
		if additional, ok := props["_additional"].(map[string]interface{}); ok {
			hit.ID, _ = additional["id"].(string)
			hit.Score = parseScore(additional["score"])
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// weaviate reports BM25 scores as strings
func parseScore(v interface{}) float32 {
	switch s := v.(type) {
	case string:
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return 0
		}
		return float32(f)
	case float64:
		return float32(s)
	}
	return 0
}

// metadata is stored as a JSON string; map keys marshal in sorted order
func encodeMetadata(meta map[string]string) string {
	b, err := json.Marshal(meta)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func isAlreadyExists(err error) bool {
	var wErr *fault.WeaviateClientError
	if errors.As(err, &wErr) {
		return wErr.StatusCode == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(wErr.Msg), "already exists")
	}
	return false
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	var wErr *fault.WeaviateClientError
	if errors.As(err, &wErr) {
		if wErr.StatusCode == http.StatusTooManyRequests || wErr.StatusCode >= 500 {
			return vectorDB.Transient(err)
		}
		if !wErr.IsUnexpectedStatusCode && wErr.DerivedFromError != nil {
			// connection level failure, no status received
			return vectorDB.Transient(err)
		}
	}
	return err
}
