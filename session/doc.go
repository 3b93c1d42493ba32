// Package session provides durable persistence for the access/refresh token pair
// owned by a goBlog client.
//
// # Storage backends
//
//   - [MemoryStore]: process lifetime only, used by tests and short-lived tools.
//   - [FileStore]: a single file under the user's profile, written atomically.
//   - [RedisStore]: a namespaced Redis key, for several processes sharing one login.
//
// All backends persist the same compact binary encoding (see [Encode]). The encoder
// is append-only: new schema versions add fields but never reinterpret old ones, and
// [Decode] migrates older blobs forward on read.
//
// # Architecture boundaries
//
// This package owns the [TokenStore] contract and the [TokenPair] model. It does NOT
// interpret token contents, talk to the blog API, or hold identity state; those
// responsibilities belong to the Client.
//
// # What this package must NOT do
//
//   - Import goBlog, api, or middleware (no upward imports).
//   - Log or otherwise expose token material.
package session
