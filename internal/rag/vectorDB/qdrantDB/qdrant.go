package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/qdrant/go-client/qdrant"
	"github.com/surajvast1/Doc-Manager/internal/config"
	"github.com/surajvast1/Doc-Manager/internal/domain/commonModels"
	"github.com/surajvast1/Doc-Manager/internal/rag/vectorDB"
	"github.com/surajvast1/Doc-Manager/pkg/logger_i"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const sourceKey = vectorDB.MetadataField + "." + vectorDB.SourceField

type Store struct {
	client *qdrant.Client
	logger *logger_i.Logger
}

// NewClient dials qdrant over gRPC.
func NewClient(host string, port int, apiKey string, useTLS bool) (*qdrant.Client, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		APIKey:   apiKey,
		UseTLS:   useTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		return nil, fmt.Errorf("could not instantiate qdrant client: %w", err)
	}
	return client, nil
}

func New(client *qdrant.Client) *Store {
	return &Store{client: client, logger: logger_i.NewLogger("Qdrant")}
}

func (s *Store) Name() string { return "qdrant" }

func (s *Store) Close() error { return s.client.Close() }

func (s *Store) IndexExists(ctx context.Context, index string) (bool, error) {
	exists, err := s.client.CollectionExists(ctx, index)
	return exists, classify(err)
}

func (s *Store) CreateIndex(ctx context.Context, schema vectorDB.Schema) error {
	if schema.Index == "" {
		return errors.New("empty collection name")
	}

	err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: schema.Index,
		VectorsConfig: qdrant.NewVectorsConfigMap(map[string]*qdrant.VectorParams{
			schema.VectorField: {
				Size:     uint64(schema.Dimensions),
				Distance: qdrant.Distance_Cosine,
			},
		}),
	})
	if alreadyExists(err) {
		return vectorDB.ErrIndexAlreadyExists
	}
	if err != nil {
		return classify(err)
	}

	// full-text on the passage, exact match on the source key
	if _, err := s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: schema.Index,
		FieldName:      vectorDB.TextField,
		FieldType:      qdrant.FieldType_FieldTypeText.Enum(),
		Wait:           qdrant.PtrOf(true),
	}); err != nil {
		return fmt.Errorf("creating text index: %w", classify(err))
	}
	if _, err := s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: schema.Index,
		FieldName:      sourceKey,
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		Wait:           qdrant.PtrOf(true),
	}); err != nil {
		return fmt.Errorf("creating source index: %w", classify(err))
	}
	return nil
}

func (s *Store) IndexDimensions(ctx context.Context, schema vectorDB.Schema) (int, error) {
	info, err := s.client.GetCollectionInfo(ctx, schema.Index)
	if err != nil {
		return 0, classify(err)
	}
	return dimensionsOf(info, schema.VectorField)
}

func dimensionsOf(info *qdrant.CollectionInfo, field string) (int, error) {
	vc := info.GetConfig().GetParams().GetVectorsConfig()
	if named := vc.GetParamsMap(); named != nil {
		params, ok := named.GetMap()[field]
		if !ok {
			return 0, fmt.Errorf("collection has no vector named %q", field)
		}
		return int(params.GetSize()), nil
	}
	if single := vc.GetParams(); single != nil {
		return 0, fmt.Errorf("collection uses an unnamed vector of size %d, want named %q", single.GetSize(), field)
	}
	return 0, nil
}

// Bulk upserts the batch in one call. Qdrant rejects a batch as a whole, so
// a non-transient rejection is retried record by record to find the bad ones.
func (s *Store) Bulk(ctx context.Context, schema vectorDB.Schema, records []commonModels.IndexRecord) ([]error, error) {
	points := make([]*qdrant.PointStruct, len(records))
	for i, r := range records {
		points[i] = toPoint(r, schema.VectorField)
	}

	err := s.upsert(ctx, schema.Index, points)
	if err == nil {
		return make([]error, len(records)), nil
	}
	if !splitOnReject(err, len(points)) {
		return nil, err
	}

	s.logger.WithTrace(ctx).Warn("batch upsert rejected, retrying per record", "records", len(points), "error", err)
	results := make([]error, len(points))
	for i, p := range points {
		results[i] = s.upsert(ctx, schema.Index, []*qdrant.PointStruct{p})
	}
	return results, nil
}

// splitOnReject reports whether a failed batch upsert is worth retrying one
// record at a time. Transient failures go back to the bulk retry loop.
func splitOnReject(err error, batch int) bool {
	return err != nil && batch > 1 && !vectorDB.IsTransient(err)
}

func (s *Store) upsert(ctx context.Context, collection string, points []*qdrant.PointStruct) error {
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", classify(err))
	}
	return nil
}

func toPoint(r commonModels.IndexRecord, vectorField string) *qdrant.PointStruct {
	meta := make(map[string]any, len(r.Metadata))
	for k, v := range r.Metadata {
		meta[k] = v
	}
	return &qdrant.PointStruct{
		Id: qdrant.NewID(r.ID),
		Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{
			vectorField: qdrant.NewVector(r.Vector...),
		}),
		Payload: qdrant.NewValueMap(map[string]any{
			vectorDB.TextField:     r.Text,
			vectorDB.MetadataField: meta,
		}),
	}
}

// Search keeps points whose text matches the query. With a query vector
// the matches are ranked by similarity, otherwise by storage order.
func (s *Store) Search(ctx context.Context, schema vectorDB.Schema, q vectorDB.MatchQuery) ([]vectorDB.Hit, error) {
	log := s.logger.WithTrace(ctx)
	filter := textFilter(q.Text)

	if len(q.Vector) > 0 {
		result, err := s.client.Query(ctx, &qdrant.QueryPoints{
			CollectionName: schema.Index,
			Query:          qdrant.NewQuery(q.Vector...),
			Using:          qdrant.PtrOf(schema.VectorField),
			Filter:         filter,
			Limit:          qdrant.PtrOf(uint64(q.Limit)),
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			log.Error("Error querying Qdrant", "error", err)
			return nil, classify(err)
		}
		hits := make([]vectorDB.Hit, 0, len(result))
		for _, p := range result {
			hits = append(hits, toHit(p.GetId(), p.GetPayload(), p.GetScore()))
		}
		return hits, nil
	}

	result, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: schema.Index,
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint32(q.Limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		log.Error("Error scrolling Qdrant", "error", err)
		return nil, classify(err)
	}
	hits := make([]vectorDB.Hit, 0, len(result))
	for _, p := range result {
		hits = append(hits, toHit(p.GetId(), p.GetPayload(), 0))
	}
	return hits, nil
}

// textFilter keeps points whose passage contains any word of the query.
func textFilter(query string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{qdrant.NewMatchTextAny(vectorDB.TextField, query)},
	}
}

func toHit(id *qdrant.PointId, payload map[string]*qdrant.Value, score float32) vectorDB.Hit {
	meta := payload[vectorDB.MetadataField].GetStructValue().GetFields()
	return vectorDB.Hit{
		ID:     id.GetUuid(),
		Text:   payload[vectorDB.TextField].GetStringValue(),
		Source: meta[vectorDB.SourceField].GetStringValue(),
		Score:  score,
	}
}

// alreadyExists covers both the dedicated status code and older servers that
// report a duplicate collection as invalid input.
func alreadyExists(err error) bool {
	switch status.Code(err) {
	case codes.AlreadyExists:
		return true
	case codes.InvalidArgument:
		return strings.Contains(err.Error(), "already exists")
	}
	return false
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		return vectorDB.Transient(err)
	}
	return err
}
