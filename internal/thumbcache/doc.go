// Package thumbcache serves transformed images through a blob cache.
//
// Service.Thumbnail runs one request through
//
//	LOOKUP -> HIT -> return cached bytes
//	       -> MISS -> read source -> transform -> STORE -> return new bytes
//
// Lookup lists the cache under the lookup prefix for (source, params) and
// reads the first entry the backend returns. Store writes to a fresh unique
// target, so concurrent misses for the same pair each write their own entry
// and never clobber one another. There is no single-flight and no retry.
//
// Cache writes are best effort. A failed write is logged, counted, and
// reported in Result.CacheErr; the caller still gets the transformed bytes.
//
// Without a cache root every request is a miss and nothing is listed or
// written.
package thumbcache
