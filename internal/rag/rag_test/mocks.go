package rag_test

import (
	"context"

	"github.com/surajvast1/Doc-Manager/internal/domain/commonModels"
)

// MockIngester implements rag.Ingester
type MockIngester struct {
	OnRunAs func(ctx context.Context, runID, bucket, folder string) (commonModels.IngestReport, error)
}

func (m *MockIngester) RunAs(ctx context.Context, runID, bucket, folder string) (commonModels.IngestReport, error) {
	if m.OnRunAs != nil {
		return m.OnRunAs(ctx, runID, bucket, folder)
	}
	return commonModels.IngestReport{
		RunID:     runID,
		Bucket:    bucket,
		Folder:    folder,
		FilesSeen: 1,
		Stage:     commonModels.StageDone,
	}, nil
}

// MockRetriever implements rag.ContextRetriever
type MockRetriever struct {
	OnRetrieve func(ctx context.Context, query string) (commonModels.RetrievalContext, error)
}

func (m *MockRetriever) Retrieve(ctx context.Context, query string) (commonModels.RetrievalContext, error) {
	if m.OnRetrieve != nil {
		return m.OnRetrieve(ctx, query)
	}
	return commonModels.RetrievalContext{Text: "default context", Sources: []string{"default.txt"}}, nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnComplete func(ctx context.Context, systemContext, question string) (string, error)
	Calls      int
}

func (m *MockLLM) Complete(ctx context.Context, systemContext, question string) (string, error) {
	m.Calls++
	if m.OnComplete != nil {
		return m.OnComplete(ctx, systemContext, question)
	}
	return "mocked llm response", nil
}

func FixedRunID() string { return "run-1" }
