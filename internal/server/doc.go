// Package server exposes the thumbnail service over HTTP.
//
// # Routes
//
//	GET /thumbnail/:uri/long-edge/:long_edge_pixels
//	GET /fit/:uri/:width_pixels/:height_pixels
//	GET /info/:uri
//	GET /healthz
//	GET /metrics
//
// The :uri segment is a URL-encoded location ("s3%3A%2F%2Fphotos%2Fa.jpg");
// "+" decodes to a space. A Uri-Prefix request header, when present, is
// prepended to the decoded value, so clients can send keys relative to a
// fixed bucket.
//
// # Responses
//
// Images are returned with
//
//	Content-Type:        image/jpg
//	ETag:                hex MD5 of the body
//	Cache-Control:       max-age=<CONTENT_AGE_IN_SECONDS>
//	X-Thumbnailer-Cache: Hit | Missed
//
// A request whose If-None-Match equals the ETag gets 304 Not Modified.
//
// # Errors
//
// Errors are JSON objects {"code": ..., "message": ...}. Invalid URIs,
// dimensions and sources are 400, missing sources 404, denied sources 403.
// Anything else is a terse 500, or a 400 carrying the error text when debug
// mode is on.
//
// The handlers hold no state of their own; everything shared lives in the
// thumbcache.Service passed to New.
package server
