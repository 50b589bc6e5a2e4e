package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/surajvast1/Doc-Manager/internal/metrics"
	"github.com/surajvast1/Doc-Manager/pkg/logger_i"
)

type AWSSource struct {
	client *secretsmanager.Client
	logger *logger_i.Logger
}

func NewAWSSource(client *secretsmanager.Client) *AWSSource {
	return &AWSSource{client: client, logger: logger_i.NewLogger("Secrets Manager")}
}

// Resolve returns the secret string stored under name. A JSON object
// secret is accepted too, in which case the value under the same name is
// used.
func (s *AWSSource) Resolve(ctx context.Context, name string) (string, error) {
	start := time.Now()
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	metrics.CaptureExecutionMetrics("secrets_manager", time.Since(start))
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
		}
		s.logger.Error("Error reading secret", "name", name, "error", err)
		return "", fmt.Errorf("reading secret %s: %w", name, err)
	}

	raw := strings.TrimSpace(aws.ToString(out.SecretString))
	if raw == "" {
		return "", fmt.Errorf("%w: %s has no string value", ErrSecretNotFound, name)
	}
	if strings.HasPrefix(raw, "{") {
		var fields map[string]string
		if err := json.Unmarshal([]byte(raw), &fields); err == nil {
			if v, ok := fields[name]; ok && v != "" {
				return v, nil
			}
		}
	}
	return raw, nil
}
