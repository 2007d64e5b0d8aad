// Package location parses the opaque URIs used to address blobs.
//
// A Location is a closed tagged variant over the supported backends:
//
//   - Local: a file on the local filesystem, written either as a bare path
//     ("photos/a.jpg", "/srv/photos/a.jpg") or as "file://path".
//   - Object: an entry in an object store, written as "s3://bucket/key".
//
// HTTP(S) URIs are reserved and rejected. Parsing never performs I/O; the
// storage package turns a Location into reads and writes.
//
// # URI Syntax
//
// The accepted forms are bit-exact with the service's public contract:
//
//   - "s3://" followed by a non-empty bucket, "/" and the key. The URI must
//     contain at least three "/" characters in total.
//   - "file://" followed by a path. The URI must contain at least three "/"
//     characters in total.
//   - Any non-empty string that does not contain "://".
//
// Everything else fails with an *InvalidURIError, which matches ErrInvalidURI
// under errors.Is and carries an example of valid syntax.
//
// Locations are immutable values and safe to share between goroutines.
package location
