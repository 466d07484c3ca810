// Package qs decodes url-encoded query strings into nested values.
//
// Keys may describe structure with brackets ("a[b][c]=1", "a[]=1",
// "a[0]=1") and, when AllowDots is set, with dots ("a.b.c=1"). Decoded
// values are strings, []any, map[string]any, or true for a bare key merged
// into an object.
package qs

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Duplicates selects what happens when a key repeats.
type Duplicates string

const (
	// DuplicatesCombine collects repeated values into an array.
	DuplicatesCombine Duplicates = "combine"
	// DuplicatesFirst keeps the first value.
	DuplicatesFirst Duplicates = "first"
	// DuplicatesLast keeps the last value.
	DuplicatesLast Duplicates = "last"
)

// Options control Parse. Start from DefaultOptions; the zero value disables
// nesting entirely.
type Options struct {
	Delimiter            string
	AllowDots            bool
	Depth                int
	ArrayLimit           int
	ParameterLimit       int
	ParseArrays          bool
	StrictDepth          bool
	ThrowOnLimitExceeded bool
	IgnoreQueryPrefix    bool
	Duplicates           Duplicates
}

// DefaultOptions returns depth 5, array limit 20 and parameter limit 1000.
func DefaultOptions() Options {
	return Options{
		Delimiter:      "&",
		Depth:          5,
		ArrayLimit:     20,
		ParameterLimit: 1000,
		ParseArrays:    true,
		Duplicates:     DuplicatesCombine,
	}
}

// LimitError is returned when ThrowOnLimitExceeded or StrictDepth is set and
// the input goes past a limit.
type LimitError struct {
	Message string
}

func (e *LimitError) Error() string { return e.Message }

var (
	dotSegment   = regexp.MustCompile(`\.([^.\[]+)`)
	childSegment = regexp.MustCompile(`\[[^\[\]]*\]`)
)

// Parse decodes s.
func Parse(s string, opts Options) (map[string]any, error) {
	keys, values, err := parseValues(s, opts)
	if err != nil {
		return nil, err
	}

	out := map[string]any{}
	for _, key := range keys {
		parsed, err := parseKeys(key, values[key], opts)
		if err != nil {
			return nil, err
		}

		if parsed == nil {
			continue
		}

		out = merge(out, parsed).(map[string]any)
	}

	return compact(out).(map[string]any), nil
}

// parseValues splits s into decoded key/value pairs, keeping first-seen key
// order.
func parseValues(s string, opts Options) ([]string, map[string]any, error) {
	if opts.IgnoreQueryPrefix {
		s = strings.TrimPrefix(s, "?")
	}

	s = strings.NewReplacer("%5B", "[", "%5b", "[", "%5D", "]", "%5d", "]").Replace(s)

	delim := opts.Delimiter
	if delim == "" {
		delim = "&"
	}

	parts := strings.Split(s, delim)
	if limit := opts.ParameterLimit; limit > 0 && len(parts) > limit {
		if opts.ThrowOnLimitExceeded {
			return nil, nil, &LimitError{Message: "Parameter limit exceeded. Only " + strconv.Itoa(limit) + " parameter" + plural(limit) + " allowed."}
		}

		parts = parts[:limit]
	}

	var keys []string
	values := make(map[string]any, len(parts))
	for _, part := range parts {
		pos := strings.Index(part, "]=")
		if pos >= 0 {
			pos++
		} else {
			pos = strings.Index(part, "=")
		}

		var key string
		var val any
		if pos == -1 {
			key, val = decode(part), ""
		} else {
			key, val = decode(part[:pos]), decode(part[pos+1:])
		}

		existing, seen := values[key]
		if opts.ThrowOnLimitExceeded {
			if arr, ok := existing.(*array); ok && arr.length >= opts.ArrayLimit {
				return nil, nil, &LimitError{Message: "Array limit exceeded. Only " + strconv.Itoa(opts.ArrayLimit) + " element" + plural(opts.ArrayLimit) + " allowed in an array."}
			}
		}

		switch {
		case !seen:
			keys = append(keys, key)
			values[key] = val
		case opts.Duplicates == DuplicatesLast:
			values[key] = val
		case opts.Duplicates == DuplicatesFirst:
		default:
			values[key] = combine(existing, val)
		}
	}

	return keys, values, nil
}

func decode(s string) string {
	out, err := url.QueryUnescape(s)
	if err != nil {
		return strings.ReplaceAll(s, "+", " ")
	}

	return out
}

// parseKeys expands one flat key into its nested value.
func parseKeys(givenKey string, val any, opts Options) (any, error) {
	if givenKey == "" {
		return nil, nil
	}

	key := givenKey
	if opts.AllowDots {
		key = dotSegment.ReplaceAllString(key, "[${1}]")
	}

	var matches [][]int
	if opts.Depth > 0 {
		matches = childSegment.FindAllStringIndex(key, -1)
	}

	parent := key
	if len(matches) > 0 {
		parent = key[:matches[0][0]]
	}

	var chain []string
	if parent != "" {
		chain = append(chain, parent)
	}

	for i := 0; i < len(matches) && i < opts.Depth; i++ {
		chain = append(chain, key[matches[i][0]:matches[i][1]])
	}

	if len(matches) > opts.Depth && opts.Depth > 0 {
		if opts.StrictDepth {
			return nil, &LimitError{Message: "Input depth exceeded depth option of " + strconv.Itoa(opts.Depth) + " and strictDepth is true"}
		}

		chain = append(chain, "["+key[matches[opts.Depth][0]:]+"]")
	}

	return parseObject(chain, val, opts), nil
}

func parseObject(chain []string, val any, opts Options) any {
	leaf := val
	for i := len(chain) - 1; i >= 0; i-- {
		root := chain[i]
		if root == "[]" && opts.ParseArrays {
			leaf = combine(newArray(), leaf)
			continue
		}

		cleanRoot := root
		if len(root) >= 2 && root[0] == '[' && root[len(root)-1] == ']' {
			cleanRoot = root[1 : len(root)-1]
		}

		index, err := strconv.Atoi(cleanRoot)
		switch {
		case !opts.ParseArrays && cleanRoot == "":
			leaf = map[string]any{"0": leaf}
		case err == nil && root != cleanRoot && strconv.Itoa(index) == cleanRoot &&
			index >= 0 && opts.ParseArrays && index <= opts.ArrayLimit:
			arr := newArray()
			arr.set(index, leaf)
			leaf = arr
		default:
			leaf = map[string]any{cleanRoot: leaf}
		}
	}

	return leaf
}

func plural(n int) string {
	if n == 1 {
		return ""
	}

	return "s"
}
