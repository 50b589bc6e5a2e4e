package secrets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvSource(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", " sk-test ")

	got, err := NewEnvSource().Resolve(context.Background(), "openai_api_key")
	require.NoError(t, err)
	assert.Equal(t, "sk-test", got)

	_, err = NewEnvSource().Resolve(context.Background(), "missing_key_for_test")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func mockSecretsManager(t *testing.T, secrets map[string]string) (*AWSSource, *httptest.Server) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secretsmanager.GetSecretValue", r.Header.Get("X-Amz-Target"))
		var in struct {
			SecretId string
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))

		w.Header().Set("Content-Type", "application/x-amz-json-1.1")
		value, ok := secrets[in.SecretId]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"__type":"ResourceNotFoundException","message":"Secrets Manager can't find the specified secret."}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"Name": in.SecretId, "SecretString": value})
	}))

	client := secretsmanager.New(secretsmanager.Options{
		Region:       "us-east-1",
		Credentials:  aws.AnonymousCredentials{},
		BaseEndpoint: aws.String(ts.URL),
	})
	return NewAWSSource(client), ts
}

func TestAWSSource(t *testing.T) {
	source, ts := mockSecretsManager(t, map[string]string{
		"openai_api_key": "sk-raw",
		"gemini_api_key": `{"gemini_api_key":"g-json","other":"x"}`,
	})
	defer ts.Close()
	ctx := context.Background()

	raw, err := source.Resolve(ctx, "openai_api_key")
	require.NoError(t, err)
	assert.Equal(t, "sk-raw", raw)

	fromJSON, err := source.Resolve(ctx, "gemini_api_key")
	require.NoError(t, err)
	assert.Equal(t, "g-json", fromJSON)

	_, err = source.Resolve(ctx, "nope")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}
