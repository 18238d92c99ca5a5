package store

import (
	"context"
	"time"
)

// NullStore never stores anything. Every Get is a miss.
type NullStore struct{}

// NewNullStore returns a [NullStore].
func NewNullStore() *NullStore { return &NullStore{} }

func (*NullStore) Get(context.Context, string) ([]byte, bool, error)         { return nil, false, nil }
func (*NullStore) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*NullStore) Delete(context.Context, string) error                     { return nil }
func (*NullStore) Close() error                                             { return nil }

var _ Store = (*NullStore)(nil)
