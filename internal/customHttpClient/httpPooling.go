package customHttpClient

import (
	"net/http"

	"github.com/surajvast1/Doc-Manager/internal/config"
)

// New returns a client with a pooled transport. One client is shared by
// the providers and the weaviate backend so connections are reused
// between calls.
func New() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = config.MaxIdleConns
	transport.MaxIdleConnsPerHost = config.MaxIdleConnsPerHost
	transport.IdleConnTimeout = config.IdleConnTimeout

	return &http.Client{
		Transport: transport,
		Timeout:   config.ProviderCallTimeout,
	}
}
