// Package cachekey derives where transformed images are cached.
//
// For a (source, transform) pair a Scheme produces two locations under the
// cache root:
//
//   - the lookup prefix, shared by every cached variant of the pair and used
//     to discover earlier results with a prefix listing;
//   - a unique write target, the lookup prefix plus a fresh UUIDv4 and the
//     source extension, so concurrent writers never overwrite each other.
//
// # Key Layout
//
//	<root>/<kind>_<container>/<params>/<dir...>/<stem>/~<ext>/<uuid><ext>
//
// For s3://photos/2019/trip/IMG_1.JPG resized to a 800px long edge:
//
//	s3_photos/long800px/2019/trip/IMG_1/~.JPG/0b4c...e1.JPG
//
// Directory and stem segments are escaped (see escapeSegment) so that the
// mapping is injective and every segment is a safe file name. Only the
// extension segment starts with "~", which keeps one source's prefix from
// being a prefix of another source's entries.
//
// All Scheme methods are pure apart from the random token and are safe for
// concurrent use.
package cachekey
