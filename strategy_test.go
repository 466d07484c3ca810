package bodyparse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njern/bodyparse/qs"
)

func decodeWith(t *testing.T, s Strategy, body *RawBody, opts Options) (any, error) {
	t.Helper()
	return NewSession(s, opts).Decode(body)
}

func TestJSONStrategy(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		strict  *bool
		want    any
		wantErr error
	}{
		{name: "object", body: `{"foo":"bar"}`, want: map[string]any{"foo": "bar"}},
		{name: "array", body: ` [1, "a"]`, want: []any{float64(1), "a"}},
		{name: "strict empty", body: "", want: map[string]any{}},
		{name: "strict whitespace", body: "  \n", wantErr: ErrStrictJSON},
		{name: "strict string", body: `"foo"`, wantErr: ErrStrictJSON},
		{name: "strict number", body: `42`, wantErr: ErrStrictJSON},
		{name: "lenient empty", body: "", strict: Bool(false), want: ""},
		{name: "lenient string", body: `"foo"`, strict: Bool(false), want: "foo"},
		{name: "lenient null", body: `null`, strict: Bool(false), want: nil},
		{name: "lenient object", body: `{"a":{"b":true}}`, strict: Bool(false), want: map[string]any{"a": map[string]any{"b": true}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeWith(t, JSONStrategy{}, NewTextBody(tt.body), Options{Strict: tt.strict})
			if tt.wantErr != nil {
				var malformed *MalformedBodyError
				require.ErrorAs(t, err, &malformed)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.body, malformed.Body)
				assert.Equal(t, KindJSON, malformed.Kind)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONStrategySyntaxError(t *testing.T) {
	_, err := decodeWith(t, JSONStrategy{}, NewTextBody(`{"foo": "bar`), Options{})

	var malformed *MalformedBodyError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, `{"foo": "bar`, malformed.Body)
	assert.Equal(t, 400, StatusCode(err))
	assert.Equal(t, malformed.Err.Error(), err.Error())
}

func TestJSONStrategyLenientEmptyBytes(t *testing.T) {
	got, err := decodeWith(t, JSONStrategy{}, NewBytesBody([]byte{}), Options{Strict: Bool(false)})
	require.NoError(t, err)
	assert.Equal(t, []byte{}, got)
}

func TestFormStrategy(t *testing.T) {
	got, err := decodeWith(t, FormStrategy{}, NewTextBody("a.b=1&a.c=2"), Options{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": map[string]any{"b": "1", "c": "2"}}, got)

	got, err = decodeWith(t, FormStrategy{}, NewTextBody("a.b=1&a.c=2"), Options{
		QueryString: QueryStringOptions{AllowDots: Bool(false)},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a.b": "1", "a.c": "2"}, got)
}

func TestFormStrategyCustomDecoder(t *testing.T) {
	var seen qs.Options
	overstep := QueryDecoderFunc(func(raw string, opts qs.Options) (map[string]any, error) {
		seen = opts
		return nil, errors.New("Index of array [21] is overstep limit: 20")
	})

	_, err := decodeWith(t, FormStrategy{}, NewTextBody("a[21]=a"), Options{
		QueryDecoder: overstep,
		QueryString:  QueryStringOptions{Depth: Int(10)},
	})

	require.Error(t, err)
	assert.Equal(t, "Index of array [21] is overstep limit: 20", err.Error())
	assert.Equal(t, 400, StatusCode(err))
	assert.True(t, seen.AllowDots, "form defaults still apply")
	assert.Equal(t, 10, seen.Depth)
}

func TestFormStrategyLimitErrorVerbatim(t *testing.T) {
	_, err := decodeWith(t, FormStrategy{}, NewTextBody("a[b][c]=1"), Options{
		QueryString: QueryStringOptions{Depth: Int(1), StrictDepth: Bool(true)},
	})

	var limitErr *qs.LimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, "Input depth exceeded depth option of 1 and strictDepth is true", err.Error())
}

func TestTextStrategy(t *testing.T) {
	got, err := decodeWith(t, TextStrategy{}, NewTextBody("<h1>html text</ht>"), Options{})
	require.NoError(t, err)
	assert.Equal(t, "<h1>html text</ht>", got)

	got, err = decodeWith(t, TextStrategy{}, NewBytesBody([]byte("raw")), Options{})
	require.NoError(t, err)
	assert.Equal(t, []byte("raw"), got)
}

func TestReturnRawBodySameShape(t *testing.T) {
	tests := []struct {
		strategy Strategy
		body     string
		parsed   any
	}{
		{JSONStrategy{}, `{"foo":"bar"}`, map[string]any{"foo": "bar"}},
		{FormStrategy{}, "a[b]=1&a[c]=2", map[string]any{"a": map[string]any{"b": "1", "c": "2"}}},
		{TextStrategy{}, "plain text", "plain text"},
	}

	for _, tt := range tests {
		t.Run(string(tt.strategy.Kind()), func(t *testing.T) {
			got, err := decodeWith(t, tt.strategy, NewTextBody(tt.body), Options{ReturnRawBody: true})
			require.NoError(t, err)
			assert.Equal(t, Result{Parsed: tt.parsed, Raw: tt.body}, got)
		})
	}
}

func TestDecodeIdempotent(t *testing.T) {
	sess := NewSession(FormStrategy{}, Options{})
	body := NewTextBody("a[0][b]=1&a[1]=x&c=3")

	first, err := sess.Decode(body)
	require.NoError(t, err)
	second, err := sess.Decode(body)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
