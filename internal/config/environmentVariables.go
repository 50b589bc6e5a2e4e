package config

import (
	"log/slog"
	"time"
)

const (
	LOG_LEVEL_PROD              = slog.LevelInfo
	TRACE_ID_KEY                = "traceId"
	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5
	RateLimiterIdleEviction     = 10 * time.Minute

	MaxWorkerCount    int64 = 10
	MinWorkerCount    int64 = 1
	IdleWorkerTimeout       = 1 * time.Minute

	//serverTimeouts
	ReadTimeout            = 15 * time.Second
	WriteTimeout           = 5 * time.Minute //process-files runs inline when not async
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//async ingestion jobs get a longer budget than a request
	JobExecutionTimeout = 30 * time.Minute

	//vectorDB
	QdrantPoolSize         = 1
	QdrantKeepAliveTimeout = 30 * time.Second

	//pdf pages that hang the parser are dropped after this
	PDFPageExtractTimeout = 10 * time.Second

	//provider calls
	ProviderCallTimeout = 60 * time.Second
	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//s3 DeleteObjects accepts at most 1000 keys per call
	S3DeleteBatchLimit = 1000

	//redis has 16 DB we can use
	RedisJobStore = 0

	//model used when EMBEDDING_MODEL or COMPLETION_MODEL is unset
	OpenAIEmbeddingModel  = "text-embedding-3-small"
	OpenAICompletionModel = "gpt-4"
	GeminiEmbeddingModel  = "gemini-embedding-001"
	GeminiCompletionModel = "gemini-2.5-flash"

	NoContextMessage = "No relevant context found for the question."
	SystemPrompt     = "You are a helpful assistant. Context: "
)
