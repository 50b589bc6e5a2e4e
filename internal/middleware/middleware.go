package middleware

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/surajvast1/Doc-Manager/internal/config"
	"github.com/surajvast1/Doc-Manager/internal/metrics"
	"github.com/surajvast1/Doc-Manager/pkg/logger_i"
	"golang.org/x/time/rate"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

// Middleware carries the auth and rate limit settings that used to be
// package globals.
type Middleware struct {
	authToken    string
	noAuthBypass bool
	rateLimit    bool
	limiter      *IPRateLimiter
	logger       *logger_i.Logger
}

func New(cfg *config.Config) *Middleware {
	return &Middleware{
		authToken:    cfg.AuthToken,
		noAuthBypass: cfg.NoAuthBypass,
		rateLimit:    cfg.RateLimit,
		limiter:      NewIPRateLimiter(rate.Limit(config.RATE_LIMIT_PER_SECOND), config.BURST_RATE_LIMIT_PER_SECOND, config.RateLimiterIdleEviction),
		logger:       logger_i.NewLogger("middleware"),
	}
}

// Wrap injects the trace id, authenticates and rate limits before next
// runs, and counts every response by route pattern and status.
func (m *Middleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK} //metrics
		re := m.processRequest(requestResponseStruct{req: r, writer: rec})
		if !re.badRequest.isBadRequest {
			next(rec, re.req)
		}
		metrics.HttpRequestsTotal.WithLabelValues(routePattern(re.req), strconv.Itoa(rec.Status)).Inc() //metrics
	}
}

// Handler is Wrap for plain http.Handlers such as the MCP endpoint.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return m.Wrap(next.ServeHTTP)
}

// TraceOnly injects the trace id without authentication, for probes.
func (m *Middleware) TraceOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		re := injectTrace(requestResponseStruct{req: r, writer: w, logger: m.logger})
		next(w, re.req)
	}
}

func (m *Middleware) processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = m.logger
	re = injectTrace(re)
	re.logger.Debug("New request received", "method", re.req.Method, "path", re.req.URL.Path)

	re = m.authenticate(re)
	if !handleBadRequest(re) {
		return re //stop if auth fails
	}
	if m.rateLimit {
		re = m.applyRateLimit(re)
		if !handleBadRequest(re) {
			return re //stop here if rate limit fails
		}
	}
	return re
}

// label by pattern so /runs/{id} stays one series
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
