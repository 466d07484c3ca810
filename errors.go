package bodyparse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrStrictJSON is the cause attached to a MalformedBodyError when strict JSON
// mode rejects a body that is not an object or an array.
var ErrStrictJSON = errors.New("invalid JSON, only supports object and array")

// StatusCoder is implemented by every error this package returns.
type StatusCoder interface {
	StatusCode() int
}

// StatusCode returns the HTTP status hint carried by err. Errors that carry
// no hint map to 500.
func StatusCode(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}

	return http.StatusInternalServerError
}

// UnsupportedMediaTypeError is returned when the request content type is
// missing or no registered strategy accepts it.
type UnsupportedMediaTypeError struct {
	ContentType string
}

func (e *UnsupportedMediaTypeError) Error() string {
	if e.ContentType == "" {
		return "Missing content-type"
	}

	return "Unsupported content-type: " + e.ContentType
}

// Missing reports whether the request carried no content type at all.
func (e *UnsupportedMediaTypeError) Missing() bool { return e.ContentType == "" }

func (e *UnsupportedMediaTypeError) StatusCode() int { return http.StatusUnsupportedMediaType }

// UnsupportedEncodingError is returned for a Content-Encoding token the
// decompression adapter does not know.
type UnsupportedEncodingError struct {
	Encoding string
}

func (e *UnsupportedEncodingError) Error() string {
	return fmt.Sprintf("unsupported content encoding %q", e.Encoding)
}

func (e *UnsupportedEncodingError) StatusCode() int { return http.StatusUnsupportedMediaType }

// UnsupportedCharsetError is returned when the requested text encoding has no
// decoder.
type UnsupportedCharsetError struct {
	Charset string
}

func (e *UnsupportedCharsetError) Error() string {
	return fmt.Sprintf("unsupported charset %q", e.Charset)
}

func (e *UnsupportedCharsetError) StatusCode() int { return http.StatusUnsupportedMediaType }

// EntityTooLargeError is returned once the body is known to exceed the limit,
// either from the declared length or from the bytes received so far.
type EntityTooLargeError struct {
	Limit int64
	// Length is the declared length, or the byte count at which reading stopped.
	Length int64
}

func (e *EntityTooLargeError) Error() string { return "request entity too large" }

func (e *EntityTooLargeError) StatusCode() int { return http.StatusRequestEntityTooLarge }

// LengthMismatchError is returned when an identity-encoded body does not match
// its declared Content-Length.
type LengthMismatchError struct {
	Expected int64
	Received int64
}

func (e *LengthMismatchError) Error() string { return "request size did not match content length" }

func (e *LengthMismatchError) StatusCode() int { return http.StatusBadRequest }

// MalformedBodyError is returned when a strategy fails to decode the body.
// Its message is the decoder's own message, unchanged.
type MalformedBodyError struct {
	Kind Kind
	Body string
	Err  error
}

func (e *MalformedBodyError) Error() string {
	if e.Err == nil {
		return "malformed " + string(e.Kind) + " body"
	}

	return e.Err.Error()
}

func (e *MalformedBodyError) Unwrap() error { return e.Err }

func (e *MalformedBodyError) StatusCode() int { return http.StatusBadRequest }

// TransportError is returned when reading the underlying stream fails.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("read request body: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusCode is 400 for aborted requests and corrupt payloads, 500 otherwise.
func (e *TransportError) StatusCode() int {
	var decErr *DecompressionError
	switch {
	case errors.As(e.Err, &decErr),
		errors.Is(e.Err, io.ErrUnexpectedEOF),
		errors.Is(e.Err, context.Canceled):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// DecompressionError is returned when a supported Content-Encoding fails to decode.
type DecompressionError struct {
	Encoding string
	Err      error
}

func (e *DecompressionError) Error() string {
	if e == nil {
		return "Content-Encoding decode error"
	}

	if e.Err == nil {
		return decompressionErrorMessage(e.Encoding)
	}

	return fmt.Sprintf("%s: %v", decompressionErrorMessage(e.Encoding), e.Err)
}

func (e *DecompressionError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

func decompressionErrorMessage(encoding string) string {
	return fmt.Sprintf("Content-Encoding: %s set but unable to decompress body", encoding)
}

type errorWrappingReadCloser struct {
	rc       io.ReadCloser
	encoding string
}

// io.ReadCloser passthrough should preserve upstream errors.
//
//nolint:wrapcheck
func (r *errorWrappingReadCloser) Read(p []byte) (int, error) {
	n, err := r.rc.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		var decErr *DecompressionError
		if errors.As(err, &decErr) {
			return n, err
		}

		return n, &DecompressionError{Encoding: r.encoding, Err: err}
	}

	return n, err
}

// io.Closer passthrough should preserve upstream errors.
//
//nolint:wrapcheck
func (r *errorWrappingReadCloser) Close() error {
	return r.rc.Close()
}
