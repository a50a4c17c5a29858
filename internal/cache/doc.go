// Package cache stores compile results in SQLite so the CLI can skip
// documents whose inputs have not changed.
//
// Keys are domain-separated SHA-256 hashes of canonical JSON covering the
// schema fingerprint, the document text and key, the feature flags, the
// pipeline stage names and the compiler version. Payloads are msgpack-encoded Entry values.
//
// Ordering rules:
//   - Rows carry seq, a logical clock continued across runs, never a timestamp
//   - Listings use ORDER BY seq ASC, key ASC COLLATE BINARY
//   - Each Open stamps its writes with a fresh UUIDv7 run id
//
// The cache sits outside the compiler core. Nothing under internal/compiler
// or internal/transforms imports it.
package cache
