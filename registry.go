package bodyparse

import (
	"net/http"
	"strings"
)

// Registry is an ordered, immutable list of strategies. Dispatch picks the
// first strategy, in registration order, that accepts the content type.
type Registry struct {
	strategies []Strategy
}

// NewRegistry returns a registry trying strategies in the given order.
func NewRegistry(strategies ...Strategy) *Registry {
	return &Registry{strategies: append([]Strategy(nil), strategies...)}
}

var defaultRegistry = NewRegistry(JSONStrategy{}, FormStrategy{}, TextStrategy{})

// DefaultRegistry returns the json, form, text registry used by Parse.
func DefaultRegistry() *Registry { return defaultRegistry }

// Strategies returns a copy of the registered strategies.
func (r *Registry) Strategies() []Strategy {
	return append([]Strategy(nil), r.strategies...)
}

// Lookup returns the strategy registered for kind.
func (r *Registry) Lookup(kind Kind) (Strategy, bool) {
	for _, s := range r.strategies {
		if s.Kind() == kind {
			return s, true
		}
	}

	return nil, false
}

// Dispatch starts a session for the first strategy accepting contentType.
// Types in opts replace a strategy's own patterns. Nothing is read here.
func (r *Registry) Dispatch(contentType string, opts Options) (*Session, error) {
	for _, s := range r.strategies {
		types := s.Types()
		if override, ok := opts.Types[s.Kind()]; ok {
			types = override
		}

		if Matches(contentType, types) {
			return NewSession(s, opts), nil
		}
	}

	return nil, &UnsupportedMediaTypeError{ContentType: displayType(contentType)}
}

// Parse dispatches on the request's Content-Type and parses its body.
func (r *Registry) Parse(req *http.Request, opts Options) (any, error) {
	sess, err := r.Dispatch(req.Header.Get("Content-Type"), opts)
	if err != nil {
		return nil, err
	}

	return sess.Parse(req)
}

// displayType strips parameters for error messages.
func displayType(contentType string) string {
	if mt, ok := mediaType(contentType); ok {
		return mt
	}

	mt, _, _ := strings.Cut(contentType, ";")

	return strings.TrimSpace(mt)
}

// Parse parses req with the default registry.
func Parse(req *http.Request, opts Options) (any, error) {
	return defaultRegistry.Parse(req, opts)
}

// JSON parses req as JSON regardless of its Content-Type.
func JSON(req *http.Request, opts Options) (any, error) {
	return NewSession(JSONStrategy{}, opts).Parse(req)
}

// Form parses req as a url-encoded form regardless of its Content-Type.
func Form(req *http.Request, opts Options) (any, error) {
	return NewSession(FormStrategy{}, opts).Parse(req)
}

// Text returns req's body as text regardless of its Content-Type.
func Text(req *http.Request, opts Options) (any, error) {
	return NewSession(TextStrategy{}, opts).Parse(req)
}
