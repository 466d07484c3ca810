package bodyparse

import (
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// Content codings understood by Decompress.
const (
	EncodingIdentity = "identity"
	EncodingGzip     = "gzip"
	EncodingDeflate  = "deflate"
	EncodingZstd     = "zstd"
)

type openFunc func(io.Reader) (io.ReadCloser, error)

var decoders = map[string]openFunc{
	EncodingGzip: func(r io.Reader) (io.ReadCloser, error) {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}

		return zr, nil
	},
	EncodingDeflate: func(r io.Reader) (io.ReadCloser, error) {
		return zlib.NewReader(r)
	},
	EncodingZstd: func(r io.Reader) (io.ReadCloser, error) {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}

		return dec.IOReadCloser(), nil
	},
}

// Decompress wraps body so that reads return the bytes with the given
// Content-Encoding reversed. An empty token or "identity" returns body as is.
// An unknown token fails before anything is read from body.
//
// Codec headers are only consumed on the first Read, so corrupt payloads
// surface as a *DecompressionError from Read, never from Decompress itself.
// Closing the returned reader closes body.
func Decompress(body io.ReadCloser, contentEncoding string) (io.ReadCloser, error) {
	encoding := normalizeEncoding(contentEncoding)
	if encoding == EncodingIdentity {
		return body, nil
	}

	open, ok := decoders[encoding]
	if !ok {
		return nil, &UnsupportedEncodingError{Encoding: contentEncoding}
	}

	return &errorWrappingReadCloser{
		rc:       &lazyReadCloser{src: body, open: open},
		encoding: encoding,
	}, nil
}

func normalizeEncoding(token string) string {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return EncodingIdentity
	}

	return token
}

// lazyReadCloser defers opening the codec until the first Read.
type lazyReadCloser struct {
	src  io.ReadCloser
	open openFunc
	rc   io.ReadCloser
	err  error
}

func (l *lazyReadCloser) Read(p []byte) (int, error) {
	if l.rc == nil && l.err == nil {
		rc, err := l.open(l.src)
		if err != nil {
			l.err = err
			return 0, err
		}

		l.rc = rc
	}

	if l.err != nil {
		return 0, l.err
	}

	return l.rc.Read(p)
}

func (l *lazyReadCloser) Close() error {
	if l.rc != nil {
		l.rc.Close() // Make sure we close the codec.
	}

	return l.src.Close()
}
