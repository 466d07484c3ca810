package bodyparse

import (
	"net/http"
)

// Session is the state of one parse: a strategy and the options merged for
// it. Sessions are cheap and must not be shared between requests.
type Session struct {
	strategy Strategy
	opts     Options
}

// NewSession merges opts over the strategy defaults, which are in turn
// merged over the package defaults.
func NewSession(strategy Strategy, opts Options) *Session {
	base := Options{Encoding: DefaultEncoding, Limit: DefaultLimit}

	return &Session{
		strategy: strategy,
		opts:     base.Merge(strategy.Defaults()).Merge(opts),
	}
}

// Strategy returns the strategy chosen for this session.
func (s *Session) Strategy() Strategy { return s.strategy }

// Options returns the merged options.
func (s *Session) Options() Options { return s.opts }

// Limit returns the effective byte limit.
func (s *Session) Limit() (int64, error) {
	return ParseLimit(s.opts.limitFor(s.strategy.Kind()))
}

// Parse reads, decompresses and decodes req's body. The body is closed
// before Parse returns.
func (s *Session) Parse(req *http.Request) (any, error) {
	v, _, err := s.parse(req)
	return v, err
}

func (s *Session) parse(req *http.Request) (any, *RawBody, error) {
	limit, err := s.Limit()
	if err != nil {
		return nil, nil, err
	}

	body := req.Body
	if body == nil {
		body = http.NoBody
	}

	encoding := req.Header.Get("Content-Encoding")
	stream, err := Decompress(body, encoding)
	if err != nil {
		body.Close()
		return nil, nil, err
	}
	defer stream.Close()

	declared := int64(-1)
	if normalizeEncoding(encoding) == EncodingIdentity && req.ContentLength > 0 {
		declared = req.ContentLength
	}

	raw, err := ReadBody(req.Context(), stream, ReadOptions{
		Limit:          limit,
		DeclaredLength: declared,
		Encoding:       s.opts.Encoding,
	})
	if err != nil {
		return nil, nil, err
	}

	v, err := s.Decode(raw)
	if err != nil {
		return nil, raw, err
	}

	return v, raw, nil
}

// Decode runs the strategy over an already read body and wraps the value
// in a Result when ReturnRawBody is set.
func (s *Session) Decode(raw *RawBody) (any, error) {
	v, err := s.strategy.Decode(raw, s.opts)
	if err != nil {
		return nil, &MalformedBodyError{Kind: s.strategy.Kind(), Body: raw.String(), Err: err}
	}

	return envelope(v, raw, s.opts.ReturnRawBody), nil
}
