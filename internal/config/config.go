package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")
var ErrInvalidValue = errors.New("invalid configuration value")

const (
	SearchBackendQdrant   = "qdrant"
	SearchBackendWeaviate = "weaviate"

	StorageBackendS3     = "s3"
	StorageBackendMemory = "memory"

	SecretBackendEnv = "env"
	SecretBackendAWS = "aws"

	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	FailurePolicySkipFile = "skip-file"
	FailurePolicyAbortRun = "abort-run"
)

// Config holds everything that can change between deployments.
// Compile-time tuning stays in environmentVariables.go.
type Config struct {
	ListenAddr   string `envconfig:"LISTEN_ADDR" default:":3000"`
	IsProd       bool   `envconfig:"IS_PROD" default:"false"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"debug"`
	AuthToken    string `envconfig:"AUTH_TOKEN"`
	NoAuthBypass bool   `envconfig:"NO_AUTH_BYPASS" default:"false"`
	RateLimit    bool   `envconfig:"RATE_LIMIT_ENABLED" default:"true"`

	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"s3"`
	AWSRegion      string `envconfig:"AWS_REGION" default:"us-east-1"`
	S3Endpoint     string `envconfig:"S3_ENDPOINT"`

	SecretBackend   string `envconfig:"SECRET_BACKEND" default:"env"`
	OpenAIKeySecret string `envconfig:"OPENAI_KEY_SECRET" default:"openai_api_key"`
	GeminiKeySecret string `envconfig:"GEMINI_KEY_SECRET" default:"gemini_api_key"`

	SearchBackend  string `envconfig:"SEARCH_BACKEND" default:"qdrant"`
	QdrantHost     string `envconfig:"QDRANT_HOST" default:"localhost"`
	QdrantPort     int    `envconfig:"QDRANT_PORT" default:"6334"`
	QdrantAPIKey   string `envconfig:"QDRANT_API_KEY"`
	QdrantUseTLS   bool   `envconfig:"QDRANT_USE_TLS" default:"false"`
	WeaviateHost   string `envconfig:"WEAVIATE_HOST" default:"localhost:8080"`
	WeaviateScheme string `envconfig:"WEAVIATE_SCHEME" default:"http"`
	WeaviateAPIKey string `envconfig:"WEAVIATE_API_KEY"`

	IndexName   string `envconfig:"INDEX_NAME" default:"document_embeddings"`
	VectorField string `envconfig:"VECTOR_FIELD" default:"docmanagerembeddings"`
	Dimensions  int    `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`

	EmbeddingProvider  string `envconfig:"EMBEDDING_PROVIDER" default:"openai"`
	EmbeddingModel     string `envconfig:"EMBEDDING_MODEL"`
	EmbeddingBatchSize int    `envconfig:"EMBEDDING_BATCH_SIZE" default:"100"`
	FailurePolicy      string `envconfig:"EMBEDDING_FAILURE_POLICY" default:"skip-file"`

	CompletionProvider string  `envconfig:"COMPLETION_PROVIDER" default:"openai"`
	CompletionModel    string  `envconfig:"COMPLETION_MODEL"`
	Temperature        float64 `envconfig:"COMPLETION_TEMPERATURE" default:"0.7"`

	ChunkSize         int `envconfig:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap      int `envconfig:"CHUNK_OVERLAP" default:"100"`
	IngestConcurrency int `envconfig:"INGEST_CONCURRENCY" default:"4"`
	MaxFileSizeMB     int `envconfig:"MAX_FILE_SIZE_MB" default:"25"`
	MaxUploadSizeMB   int `envconfig:"MAX_UPLOAD_SIZE_MB" default:"15"`

	BulkBatchSize        int `envconfig:"BULK_BATCH_SIZE" default:"500"`
	BulkMaxAttempts      int `envconfig:"BULK_MAX_ATTEMPTS" default:"3"`
	BulkInitialBackoffMs int `envconfig:"BULK_INITIAL_BACKOFF_MS" default:"200"`

	RetrievalTopK int `envconfig:"RETRIEVAL_TOP_K" default:"10"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RunStoreTTL   time.Duration `envconfig:"RUN_STORE_TTL" default:"24h"`
	MCPEnabled    bool          `envconfig:"MCP_ENABLED" default:"true"`
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	cfg.defaultModels()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if !c.NoAuthBypass && c.AuthToken == "" {
		return fmt.Errorf("%w: AUTH_TOKEN", ErrMissingRequired)
	}
	if c.IndexName == "" {
		return fmt.Errorf("%w: INDEX_NAME", ErrMissingRequired)
	}
	if c.VectorField == "" {
		return fmt.Errorf("%w: VECTOR_FIELD", ErrMissingRequired)
	}
	if c.Dimensions <= 0 {
		return fmt.Errorf("%w: EMBEDDING_DIMENSIONS must be positive", ErrInvalidValue)
	}
	if c.ChunkSize <= 0 || c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: CHUNK_OVERLAP must be in [0, CHUNK_SIZE)", ErrInvalidValue)
	}
	if c.IngestConcurrency <= 0 {
		return fmt.Errorf("%w: INGEST_CONCURRENCY must be positive", ErrInvalidValue)
	}
	if c.BulkBatchSize <= 0 || c.BulkMaxAttempts <= 0 {
		return fmt.Errorf("%w: BULK_BATCH_SIZE and BULK_MAX_ATTEMPTS must be positive", ErrInvalidValue)
	}
	if c.EmbeddingBatchSize <= 0 {
		return fmt.Errorf("%w: EMBEDDING_BATCH_SIZE must be positive", ErrInvalidValue)
	}
	if err := oneOf("SEARCH_BACKEND", c.SearchBackend, SearchBackendQdrant, SearchBackendWeaviate); err != nil {
		return err
	}
	if err := oneOf("STORAGE_BACKEND", c.StorageBackend, StorageBackendS3, StorageBackendMemory); err != nil {
		return err
	}
	if err := oneOf("SECRET_BACKEND", c.SecretBackend, SecretBackendEnv, SecretBackendAWS); err != nil {
		return err
	}
	if err := oneOf("EMBEDDING_PROVIDER", c.EmbeddingProvider, ProviderOpenAI, ProviderGemini); err != nil {
		return err
	}
	if err := oneOf("COMPLETION_PROVIDER", c.CompletionProvider, ProviderOpenAI, ProviderGemini); err != nil {
		return err
	}
	return oneOf("EMBEDDING_FAILURE_POLICY", c.FailurePolicy, FailurePolicySkipFile, FailurePolicyAbortRun)
}

// defaultModels fills unset model names with the chosen provider's default,
// so switching provider alone never sends one vendor's model to another.
func (c *Config) defaultModels() {
	if c.EmbeddingModel == "" {
		switch c.EmbeddingProvider {
		case ProviderGemini:
			c.EmbeddingModel = GeminiEmbeddingModel
		case ProviderOpenAI:
			c.EmbeddingModel = OpenAIEmbeddingModel
		}
	}
	if c.CompletionModel == "" {
		switch c.CompletionProvider {
		case ProviderGemini:
			c.CompletionModel = GeminiCompletionModel
		case ProviderOpenAI:
			c.CompletionModel = OpenAICompletionModel
		}
	}
}

func (c *Config) MaxFileBytes() int64 {
	return int64(c.MaxFileSizeMB) << 20
}

func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadSizeMB) << 20
}

func oneOf(name, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%w: %s=%q, want one of %s", ErrInvalidValue, name, value, strings.Join(allowed, ", "))
}
