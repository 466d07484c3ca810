package bodyparse

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
)

type contextKey struct{}

type middlewareConfig struct {
	registry *Registry
	opts     Options
	logger   logrus.FieldLogger
	metrics  *Metrics
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

// WithRegistry replaces the default json, form, text registry.
func WithRegistry(r *Registry) MiddlewareOption {
	return func(c *middlewareConfig) { c.registry = r }
}

// WithOptions sets the parse options used for every request.
func WithOptions(opts Options) MiddlewareOption {
	return func(c *middlewareConfig) { c.opts = opts }
}

// WithLogger sets the logger used to report failed parses. Defaults to the
// logrus standard logger.
func WithLogger(l logrus.FieldLogger) MiddlewareOption {
	return func(c *middlewareConfig) { c.logger = l }
}

// WithMetrics records every parse in m.
func WithMetrics(m *Metrics) MiddlewareOption {
	return func(c *middlewareConfig) { c.metrics = m }
}

// Middleware parses the body of every request that has one and makes the
// result available to next through FromContext. Requests without a body
// are passed on untouched.
// If parsing fails the request is answered with the error's status hint
// and a text/plain message, and next is not called.
func Middleware(next http.Handler, options ...MiddlewareOption) http.Handler {
	cfg := middlewareConfig{
		registry: defaultRegistry,
		logger:   logrus.StandardLogger(),
	}
	for _, o := range options {
		o(&cfg)
	}

	fn := func(w http.ResponseWriter, r *http.Request) {
		if !hasBody(r) {
			next.ServeHTTP(w, r)
			return
		}

		var (
			kind  Kind
			value any
			raw   *RawBody
		)

		sess, err := cfg.registry.Dispatch(r.Header.Get("Content-Type"), cfg.opts)
		if err == nil {
			kind = sess.Strategy().Kind()
			value, raw, err = sess.parse(r)
		}

		if cfg.metrics != nil {
			size := 0
			if raw != nil {
				size = raw.Len()
			}

			cfg.metrics.Observe(kind, size, err)
		}

		if err != nil {
			status := StatusCode(err)
			entry := cfg.logger.WithFields(logrus.Fields{
				"kind":             kind,
				"content_type":     r.Header.Get("Content-Type"),
				"content_encoding": r.Header.Get("Content-Encoding"),
				"status":           status,
			}).WithError(err)

			if status >= http.StatusInternalServerError {
				entry.Warn("Failed to parse request body")
			} else {
				entry.Debug("Rejected request body")
			}

			http.Error(w, err.Error(), status)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, parsedBody{value})))
	}

	return http.HandlerFunc(fn)
}

// parsedBody lets a decoded JSON null be told apart from no body.
type parsedBody struct{ v any }

// FromContext returns the value stored by Middleware. ok reports whether
// a body was parsed; the value itself may be nil.
func FromContext(ctx context.Context) (any, bool) {
	pb, ok := ctx.Value(contextKey{}).(parsedBody)
	return pb.v, ok
}

func hasBody(r *http.Request) bool {
	if r.Body == nil || r.Body == http.NoBody {
		return false
	}

	return r.ContentLength != 0 || len(r.TransferEncoding) > 0
}
