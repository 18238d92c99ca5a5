// Package store persists layout documents in a key-value backend.
//
// A [Store] maps string keys to opaque bytes with an optional TTL. Four
// backends are available:
//
//   - [FileStore]: one JSON file per key under a directory, for the CLI
//   - [RedisStore]: a Redis server, for the HTTP service in multi-instance
//     deployments
//   - [MongoStore]: a MongoDB collection; JSON documents are stored as BSON
//     sub-documents so they can be queried
//   - [NullStore]: stores nothing
//
// Keys are built by a [Keyer]. [DefaultKeyer] hashes the document name so
// user-supplied names never reach a file path or a Redis key verbatim;
// [ScopedKeyer] adds a tenant prefix.
//
// [Save] and [Load] encode a [Document] (container config plus state
// mirror) through any backend:
//
//	s, err := store.Open(ctx, store.Config{Backend: store.BackendFile})
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	doc := store.Document{Config: l.Config(), State: l.State()}
//	if err := store.Save(ctx, s, store.DefaultKeyer{}, "home", doc, 0); err != nil {
//	    return err
//	}
//
// Transport failures are reported as STORE_UNAVAILABLE errors. A missing
// key is not an error: Get returns ok=false.
package store

import (
	"context"
	"time"
)

// Store is a key-value backend for encoded documents.
type Store interface {
	// Get returns the value for key. ok is false when the key does not
	// exist or has expired.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A ttl of zero keeps it until deleted.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases connections held by the backend.
	Close() error
}
