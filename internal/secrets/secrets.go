// Package secrets resolves provider credentials once at startup.
package secrets

import (
	"context"
	"errors"
	"os"
	"strings"
)

var ErrSecretNotFound = errors.New("secret not found")

type Source interface {
	Resolve(ctx context.Context, name string) (string, error)
}

// EnvSource reads secrets from the environment: openai_api_key is looked
// up as OPENAI_API_KEY.
type EnvSource struct{}

func NewEnvSource() EnvSource { return EnvSource{} }

func (EnvSource) Resolve(ctx context.Context, name string) (string, error) {
	value := strings.TrimSpace(os.Getenv(strings.ToUpper(name)))
	if value == "" {
		return "", ErrSecretNotFound
	}
	return value, nil
}
