// Package app wires the clients the service needs from a loaded Config.
// Every collaborator is built here once and handed to constructors, so no
// package keeps its own client singleton.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/surajvast1/Doc-Manager/internal/config"
	"github.com/surajvast1/Doc-Manager/internal/customHttpClient"
	"github.com/surajvast1/Doc-Manager/internal/data/objectStore"
	"github.com/surajvast1/Doc-Manager/internal/data/redisStore"
	"github.com/surajvast1/Doc-Manager/internal/data/store"
	"github.com/surajvast1/Doc-Manager/internal/domain/jobModel"
	"github.com/surajvast1/Doc-Manager/internal/rag"
	"github.com/surajvast1/Doc-Manager/internal/rag/embedding"
	"github.com/surajvast1/Doc-Manager/internal/rag/embedding/googleEmbedding"
	"github.com/surajvast1/Doc-Manager/internal/rag/embedding/openaiEmbedding"
	"github.com/surajvast1/Doc-Manager/internal/rag/ingest"
	"github.com/surajvast1/Doc-Manager/internal/rag/llm"
	"github.com/surajvast1/Doc-Manager/internal/rag/llm/gemini"
	"github.com/surajvast1/Doc-Manager/internal/rag/llm/openaiLLM"
	"github.com/surajvast1/Doc-Manager/internal/rag/retrieve"
	"github.com/surajvast1/Doc-Manager/internal/rag/vectorDB"
	"github.com/surajvast1/Doc-Manager/internal/rag/vectorDB/qdrantDB"
	"github.com/surajvast1/Doc-Manager/internal/rag/vectorDB/weaviateDB"
	"github.com/surajvast1/Doc-Manager/internal/secrets"
	"github.com/surajvast1/Doc-Manager/pkg/logger_i"
	"google.golang.org/genai"
)

// Parts are the external collaborators. Bootstrap builds them from config;
// tests and the CLI can supply their own.
type Parts struct {
	Objects  objectStore.Store
	Backend  vectorDB.Backend
	Embedder embedding.Embedder
	LLM      llm.Provider
	Runs     jobModel.JobStore
}

type Clients struct {
	Config *config.Config
	Parts
	Schema    vectorDB.Schema
	Indexes   *vectorDB.IndexManager
	Pipeline  *ingest.Pipeline
	Retriever *retrieve.Retriever
	RAG       rag.Service

	closers []func() error
	logger  *logger_i.Logger
}

// Bootstrap resolves secrets, dials every backend and assembles the core.
// An embedder whose size does not match the configured index is refused.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Clients, error) {
	logger := logger_i.NewLogger("bootstrap")
	httpClient := customHttpClient.New()
	var closers []func() error
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	var awsCfg aws.Config
	if cfg.StorageBackend == config.StorageBackendS3 || cfg.SecretBackend == config.SecretBackendAWS {
		loaded, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("loading aws config: %w", err)
		}
		awsCfg = loaded
	}

	var source secrets.Source = secrets.NewEnvSource()
	if cfg.SecretBackend == config.SecretBackendAWS {
		source = secrets.NewAWSSource(secretsmanager.NewFromConfig(awsCfg))
	}

	providers, err := newProviders(ctx, cfg, source, httpClient)
	if err != nil {
		return nil, err
	}

	var parts Parts
	parts.Embedder, parts.LLM = providers.embedder, providers.llm

	switch cfg.SearchBackend {
	case config.SearchBackendWeaviate:
		client, err := weaviateDB.NewClient(cfg.WeaviateHost, cfg.WeaviateScheme, cfg.WeaviateAPIKey, httpClient)
		if err != nil {
			return nil, err
		}
		parts.Backend = weaviateDB.New(client)
	default:
		client, err := qdrantDB.NewClient(cfg.QdrantHost, cfg.QdrantPort, cfg.QdrantAPIKey, cfg.QdrantUseTLS)
		if err != nil {
			return nil, err
		}
		qs := qdrantDB.New(client)
		closers = append(closers, qs.Close)
		parts.Backend = qs
	}

	switch cfg.StorageBackend {
	case config.StorageBackendMemory:
		logger.Warn("using in-memory object storage, uploads will not survive a restart")
		parts.Objects = objectStore.NewMemoryStore()
	default:
		parts.Objects = objectStore.NewS3Store(objectStore.NewS3Client(awsCfg, cfg.S3Endpoint))
	}

	redis, err := redisStore.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, config.RedisJobStore)
	if err != nil {
		logger.Error("Redis stores are offline, keeping runs in memory", "error", err)
		parts.Runs = store.NewInMemoryJobStore()
	} else {
		closers = append(closers, redis.Close)
		parts.Runs = store.NewRedisJobStore(redis, cfg.RunStoreTTL)
	}

	clients, err := Assemble(cfg, parts)
	if err != nil {
		closeAll()
		return nil, err
	}
	clients.closers = closers
	logger.Info("clients ready",
		"storage", cfg.StorageBackend,
		"search", parts.Backend.Name(),
		"embedding", cfg.EmbeddingProvider,
		"completion", cfg.CompletionProvider)
	return clients, nil
}

// Assemble builds the index manager, pipeline, retriever and service on
// top of already constructed parts.
func Assemble(cfg *config.Config, parts Parts) (*Clients, error) {
	if parts.Objects == nil || parts.Backend == nil || parts.Embedder == nil || parts.LLM == nil {
		return nil, errors.New("missing collaborator")
	}
	if parts.Runs == nil {
		parts.Runs = store.NewInMemoryJobStore()
	}

	schema := vectorDB.Schema{Index: cfg.IndexName, VectorField: cfg.VectorField, Dimensions: cfg.Dimensions}
	indexes := vectorDB.NewIndexManager(parts.Backend)
	writer := vectorDB.NewBulkIndexer(parts.Backend, schema, vectorDB.BulkConfig{
		BatchSize:      cfg.BulkBatchSize,
		MaxAttempts:    cfg.BulkMaxAttempts,
		InitialBackoff: time.Duration(cfg.BulkInitialBackoffMs) * time.Millisecond,
	})

	pipeline, err := ingest.NewPipeline(parts.Objects, parts.Embedder, indexes, writer, ingest.OptionsFromConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("building ingest pipeline: %w", err)
	}

	// keyword-only backends rank without a query vector
	var queryEmbedder embedding.Embedder
	if parts.Backend.Name() == config.SearchBackendQdrant {
		queryEmbedder = parts.Embedder
	}
	retriever := retrieve.New(parts.Backend, schema, queryEmbedder, cfg.RetrievalTopK)

	return &Clients{
		Config:    cfg,
		Parts:     parts,
		Schema:    schema,
		Indexes:   indexes,
		Pipeline:  pipeline,
		Retriever: retriever,
		RAG:       rag.NewService(pipeline, retriever, parts.LLM, uuid.NewString),
		logger:    logger_i.NewLogger("clients"),
	}, nil
}

func (c *Clients) Close() {
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil {
			c.logger.Error("Error closing client", "error", err)
		}
	}
}

type providerSet struct {
	embedder embedding.Embedder
	llm      llm.Provider
}

func newProviders(ctx context.Context, cfg *config.Config, source secrets.Source, httpClient *http.Client) (providerSet, error) {
	var (
		set          providerSet
		openaiClient *openai.Client
		geminiClient *genai.Client
	)

	needs := func(p string) bool { return cfg.EmbeddingProvider == p || cfg.CompletionProvider == p }

	if needs(config.ProviderOpenAI) {
		key, err := source.Resolve(ctx, cfg.OpenAIKeySecret)
		if err != nil {
			return set, fmt.Errorf("resolving %s: %w", cfg.OpenAIKeySecret, err)
		}
		c := openai.NewClient(option.WithAPIKey(key), option.WithHTTPClient(httpClient))
		openaiClient = &c
	}
	if needs(config.ProviderGemini) {
		key, err := source.Resolve(ctx, cfg.GeminiKeySecret)
		if err != nil {
			return set, fmt.Errorf("resolving %s: %w", cfg.GeminiKeySecret, err)
		}
		c, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:     key,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: httpClient,
		})
		if err != nil {
			return set, fmt.Errorf("creating gemini client: %w", err)
		}
		geminiClient = c
	}

	if cfg.EmbeddingProvider == config.ProviderGemini {
		set.embedder = googleEmbedding.New(geminiClient, cfg.EmbeddingModel, cfg.Dimensions, cfg.EmbeddingBatchSize)
	} else {
		set.embedder = openaiEmbedding.New(*openaiClient, cfg.EmbeddingModel, cfg.Dimensions, cfg.EmbeddingBatchSize)
	}

	if cfg.CompletionProvider == config.ProviderGemini {
		set.llm = gemini.New(geminiClient, cfg.CompletionModel, cfg.Temperature)
	} else {
		set.llm = openaiLLM.New(*openaiClient, cfg.CompletionModel, cfg.Temperature)
	}
	return set, nil
}
