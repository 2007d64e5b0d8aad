// Package storage reads and writes blobs addressed by location.Location.
//
// Storage dispatches each call to the backend matching the location's kind:
//
//   - LocalBackend serves location.KindLocal through an afero.Fs (the OS
//     filesystem in production, an in-memory filesystem in tests).
//   - ObjectBackend serves location.KindObject through the S3 API.
//
// # Client Lifetime
//
// ObjectBackend owns exactly one S3 client. It is built the first time an
// object location is touched and reused for the life of the process. The
// build runs under a mutex, so concurrent first calls construct one client;
// a failed build is not remembered and the next call tries again.
//
// # Error Conventions
//
// Read fails with ErrNotFound or ErrForbidden when the backend says so, and
// with a wrapped I/O error otherwise. Exists reports a missing object as
// (false, nil). Write and Remove return ErrForbidden on access denial and
// (false, nil) on any other failure; callers must check the boolean.
package storage
