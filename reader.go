package bodyparse

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// EncodingNone as a text encoding disables charset decoding: the body is
// handed to the decoder as raw bytes.
const EncodingNone = "none"

const (
	readChunkSize = 32 << 10
	maxPrealloc   = 1 << 20
)

// ReadOptions bound a single ReadBody call.
type ReadOptions struct {
	// Limit is the maximum number of decompressed bytes accepted.
	Limit int64
	// DeclaredLength is the expected body size, or -1 when unknown. It should
	// only be set for identity-encoded bodies.
	DeclaredLength int64
	// Encoding names the charset of the body, or EncodingNone.
	Encoding string
}

// RawBody is a fully read, decompressed and limit-checked request body.
type RawBody struct {
	data []byte
	text string
	isText bool
}

// NewTextBody returns a RawBody holding already decoded text.
func NewTextBody(text string) *RawBody {
	return &RawBody{data: []byte(text), text: text, isText: true}
}

// NewBytesBody returns a RawBody holding undecoded bytes.
func NewBytesBody(data []byte) *RawBody {
	return &RawBody{data: data}
}

// IsText reports whether the body was decoded with a charset.
func (b *RawBody) IsText() bool { return b.isText }

// Bytes returns the body bytes. For text bodies these are UTF-8.
func (b *RawBody) Bytes() []byte { return b.data }

// String returns the body as text.
func (b *RawBody) String() string {
	if b.isText {
		return b.text
	}

	return string(b.data)
}

// Len returns the body size in bytes.
func (b *RawBody) Len() int { return len(b.data) }

// Value returns the body as the decoders' identity value: a string for text
// bodies, a []byte otherwise.
func (b *RawBody) Value() any {
	if b.isText {
		return b.text
	}

	return b.data
}

// ReadBody accumulates r into memory. It checks the limit after every chunk
// and never buffers more than Limit bytes. A declared length above the limit
// fails before anything is read.
//
// Limit and length violations are returned as *EntityTooLargeError and
// *LengthMismatchError, stream failures as *TransportError.
func ReadBody(ctx context.Context, r io.Reader, opts ReadOptions) (*RawBody, error) {
	if opts.Limit < 0 {
		return nil, fmt.Errorf("invalid body limit %d: negative size", opts.Limit)
	}

	charset, err := lookupCharset(opts.Encoding)
	if err != nil {
		return nil, err
	}

	declared := opts.DeclaredLength
	if declared >= 0 && declared > opts.Limit {
		return nil, &EntityTooLargeError{Limit: opts.Limit, Length: declared}
	}

	var buf bytes.Buffer
	if declared > 0 {
		buf.Grow(int(min(declared, maxPrealloc)))
	}

	chunk := make([]byte, readChunkSize)
	var received int64
	for {
		if err := ctx.Err(); err != nil {
			return nil, &TransportError{Err: err}
		}

		// One byte past the limit is enough to know it was exceeded.
		want := int64(readChunkSize)
		if remaining := opts.Limit - received; remaining < want {
			want = remaining + 1
		}

		n, err := r.Read(chunk[:want])
		if n > 0 {
			if received+int64(n) > opts.Limit {
				return nil, &EntityTooLargeError{Limit: opts.Limit, Length: received + int64(n)}
			}

			received += int64(n)
			if declared >= 0 && received > declared {
				return nil, &LengthMismatchError{Expected: declared, Received: received}
			}

			buf.Write(chunk[:n])
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, &TransportError{Err: err}
		}
	}

	if declared >= 0 && received != declared {
		return nil, &LengthMismatchError{Expected: declared, Received: received}
	}

	if charset == nil {
		return NewBytesBody(buf.Bytes()), nil
	}

	text, err := decodeText(charset, buf.Bytes())
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	return NewTextBody(text), nil
}

// lookupCharset returns nil for EncodingNone.
func lookupCharset(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case EncodingNone:
		return nil, nil
	case "", "utf8", "utf-8":
		return encoding.Nop, nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, &UnsupportedCharsetError{Charset: name}
	}

	return enc, nil
}

func decodeText(charset encoding.Encoding, data []byte) (string, error) {
	if charset == encoding.Nop {
		if utf8.Valid(data) {
			return string(data), nil
		}

		return strings.ToValidUTF8(string(data), string(utf8.RuneError)), nil
	}

	out, err := charset.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}

	return string(out), nil
}
