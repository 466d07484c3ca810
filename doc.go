// Package bodyparse reads and decodes HTTP request bodies.
//
// A Registry picks a strategy (json, form or text) from the request's
// Content-Type before anything is read. The body is then decompressed
// (gzip, deflate, zstd or identity), accumulated up to a byte limit,
// optionally decoded from its charset, and handed to the strategy. Every
// error carries an HTTP status hint, see StatusCode.
//
// Middleware wires this into a net/http handler chain.
package bodyparse
