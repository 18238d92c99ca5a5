package store

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Keyer builds store keys for named documents.
type Keyer interface {
	StateKey(name string) string
}

// DefaultKeyer produces "state:<sha256(name)>".
type DefaultKeyer struct{}

// StateKey implements [Keyer].
func (DefaultKeyer) StateKey(name string) string {
	return "state:" + Hash([]byte(name))
}

// ScopedKeyer prefixes every key of an inner keyer, giving each tenant
// its own namespace in a shared backend:
//
//	k := store.NewScopedKeyer(nil, "user:42:")
//	k.StateKey("home") // "user:42:state:…"
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or [DefaultKeyer] when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) *ScopedKeyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// StateKey implements [Keyer].
func (k *ScopedKeyer) StateKey(name string) string {
	return k.prefix + k.inner.StateKey(name)
}
