package llm

import (
	"context"

	"github.com/surajvast1/Doc-Manager/internal/config"
)

// Provider answers a question given retrieved context. Failures come back
// as *errs.CompletionError.
type Provider interface {
	Complete(ctx context.Context, systemContext, question string) (string, error)
}

// SystemMessage is the system prompt sent with every question.
func SystemMessage(systemContext string) string {
	return config.SystemPrompt + systemContext
}
