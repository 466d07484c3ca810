package bodyparse

import (
	"github.com/njern/bodyparse/qs"
)

// Base defaults shared by every strategy.
const (
	DefaultEncoding = "utf-8"
	DefaultLimit    = "1mb"
)

// Options configure a parse call. Unset fields fall back to the strategy's
// defaults; see Merge for the precedence rules.
type Options struct {
	// Encoding is the charset used to decode the body into text, or
	// EncodingNone to keep raw bytes.
	Encoding string `mapstructure:"encoding"`
	// Limit is the largest accepted body size, e.g. "1mb" or "4096".
	Limit string `mapstructure:"limit"`
	// ReturnRawBody wraps the decoded value in a Result together with the raw body.
	ReturnRawBody bool `mapstructure:"return_raw_body"`

	// Strict makes the json strategy accept only objects and arrays.
	Strict *bool `mapstructure:"strict"`
	// QueryString configures the form strategy's decoder.
	QueryString QueryStringOptions `mapstructure:"query_string"`
	// QueryDecoder replaces the form strategy's decoder.
	QueryDecoder QueryDecoder `mapstructure:"-"`

	// Types replaces the content type patterns of a strategy, by kind.
	Types map[Kind][]string `mapstructure:"types"`
	// Limits overrides Limit for a single kind.
	Limits map[Kind]string `mapstructure:"limits"`
}

// QueryStringOptions mirror qs.Options with every field optional.
type QueryStringOptions struct {
	AllowDots            *bool          `mapstructure:"allow_dots"`
	Depth                *int           `mapstructure:"depth"`
	ArrayLimit           *int           `mapstructure:"array_limit"`
	ParameterLimit       *int           `mapstructure:"parameter_limit"`
	ParseArrays          *bool          `mapstructure:"parse_arrays"`
	StrictDepth          *bool          `mapstructure:"strict_depth"`
	ThrowOnLimitExceeded *bool          `mapstructure:"throw_on_limit_exceeded"`
	IgnoreQueryPrefix    *bool          `mapstructure:"ignore_query_prefix"`
	Delimiter            string         `mapstructure:"delimiter"`
	Duplicates           qs.Duplicates `mapstructure:"duplicates"`
}

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Merge returns o with every field set in over taking precedence. Scalars
// and QueryDecoder are replaced, QueryString is merged field by field, and
// the Types and Limits maps are merged key by key. Neither input is modified.
func (o Options) Merge(over Options) Options {
	out := o

	if over.Encoding != "" {
		out.Encoding = over.Encoding
	}

	if over.Limit != "" {
		out.Limit = over.Limit
	}

	out.ReturnRawBody = o.ReturnRawBody || over.ReturnRawBody

	if over.Strict != nil {
		out.Strict = over.Strict
	}

	out.QueryString = o.QueryString.merge(over.QueryString)

	if over.QueryDecoder != nil {
		out.QueryDecoder = over.QueryDecoder
	}

	out.Types = mergeMap(o.Types, over.Types)
	out.Limits = mergeMap(o.Limits, over.Limits)

	return out
}

func (q QueryStringOptions) merge(over QueryStringOptions) QueryStringOptions {
	out := q
	pick(&out.AllowDots, over.AllowDots)
	pick(&out.Depth, over.Depth)
	pick(&out.ArrayLimit, over.ArrayLimit)
	pick(&out.ParameterLimit, over.ParameterLimit)
	pick(&out.ParseArrays, over.ParseArrays)
	pick(&out.StrictDepth, over.StrictDepth)
	pick(&out.ThrowOnLimitExceeded, over.ThrowOnLimitExceeded)
	pick(&out.IgnoreQueryPrefix, over.IgnoreQueryPrefix)

	if over.Delimiter != "" {
		out.Delimiter = over.Delimiter
	}

	if over.Duplicates != "" {
		out.Duplicates = over.Duplicates
	}

	return out
}

// Resolve fills unset fields from qs.DefaultOptions.
func (q QueryStringOptions) Resolve() qs.Options {
	out := qs.DefaultOptions()
	set(&out.AllowDots, q.AllowDots)
	set(&out.Depth, q.Depth)
	set(&out.ArrayLimit, q.ArrayLimit)
	set(&out.ParameterLimit, q.ParameterLimit)
	set(&out.ParseArrays, q.ParseArrays)
	set(&out.StrictDepth, q.StrictDepth)
	set(&out.ThrowOnLimitExceeded, q.ThrowOnLimitExceeded)
	set(&out.IgnoreQueryPrefix, q.IgnoreQueryPrefix)

	if q.Delimiter != "" {
		out.Delimiter = q.Delimiter
	}

	if q.Duplicates != "" {
		out.Duplicates = q.Duplicates
	}

	return out
}

// limitFor returns the effective limit string for kind.
func (o Options) limitFor(kind Kind) string {
	if l := o.Limits[kind]; l != "" {
		return l
	}

	if o.Limit != "" {
		return o.Limit
	}

	return DefaultLimit
}

func (o Options) strict() bool {
	return o.Strict == nil || *o.Strict
}

func pick[T any](dst **T, over *T) {
	if over != nil {
		*dst = over
	}
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func mergeMap[K comparable, V any](base, over map[K]V) map[K]V {
	if len(base) == 0 && len(over) == 0 {
		return nil
	}

	out := make(map[K]V, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}

	for k, v := range over {
		out[k] = v
	}

	return out
}
