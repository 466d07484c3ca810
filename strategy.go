package bodyparse

import (
	"bytes"

	json "github.com/goccy/go-json"

	"github.com/njern/bodyparse/qs"
)

// Kind names a body strategy.
type Kind string

// Built-in kinds, in dispatch order.
const (
	KindJSON Kind = "json"
	KindForm Kind = "form"
	KindText Kind = "text"
)

// Strategy decodes one kind of body. Strategies are stateless; per-request
// state lives in a Session.
type Strategy interface {
	Kind() Kind
	// Types are the content type patterns matched when Options.Types has no
	// entry for Kind.
	Types() []string
	// Defaults are merged under the caller's options.
	Defaults() Options
	// Decode turns the raw body into a value. It must not retain body.
	Decode(body *RawBody, opts Options) (any, error)
}

// QueryDecoder decodes url-encoded form bodies.
type QueryDecoder interface {
	Decode(raw string, opts qs.Options) (map[string]any, error)
}

// QueryDecoderFunc adapts a function to QueryDecoder.
type QueryDecoderFunc func(raw string, opts qs.Options) (map[string]any, error)

func (f QueryDecoderFunc) Decode(raw string, opts qs.Options) (map[string]any, error) {
	return f(raw, opts)
}

var defaultQueryDecoder = QueryDecoderFunc(qs.Parse)

// JSONStrategy parses JSON bodies.
//
// In strict mode (the default) an empty body yields an empty object and any
// other body must be an object or an array. Otherwise an empty body is
// returned unchanged and any JSON value is accepted.
type JSONStrategy struct{}

func (JSONStrategy) Kind() Kind { return KindJSON }

func (JSONStrategy) Types() []string {
	return []string{"json", "application/*+json", "application/csp-report"}
}

func (JSONStrategy) Defaults() Options {
	return Options{Strict: Bool(true)}
}

func (JSONStrategy) Decode(body *RawBody, opts Options) (any, error) {
	data := body.Bytes()
	if !opts.strict() {
		if len(data) == 0 {
			return body.Value(), nil
		}

		return unmarshalJSON(data)
	}

	if len(data) == 0 {
		return map[string]any{}, nil
	}

	trimmed := bytes.TrimLeft(data, " \t\n\r")
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		return nil, ErrStrictJSON
	}

	return unmarshalJSON(data)
}

func unmarshalJSON(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}

	return v, nil
}

// FormStrategy parses application/x-www-form-urlencoded bodies. Dotted keys
// nest by default.
type FormStrategy struct{}

func (FormStrategy) Kind() Kind { return KindForm }

func (FormStrategy) Types() []string { return []string{"urlencoded"} }

func (FormStrategy) Defaults() Options {
	return Options{
		Limit:       "56kb",
		QueryString: QueryStringOptions{AllowDots: Bool(true)},
	}
}

func (FormStrategy) Decode(body *RawBody, opts Options) (any, error) {
	dec := opts.QueryDecoder
	if dec == nil {
		dec = defaultQueryDecoder
	}

	return dec.Decode(body.String(), opts.QueryString.Resolve())
}

// TextStrategy returns the body itself.
type TextStrategy struct{}

func (TextStrategy) Kind() Kind { return KindText }

func (TextStrategy) Types() []string { return []string{"text/*"} }

func (TextStrategy) Defaults() Options { return Options{} }

func (TextStrategy) Decode(body *RawBody, _ Options) (any, error) {
	return body.Value(), nil
}
