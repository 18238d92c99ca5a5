package store

import (
	"context"
	"time"

	"github.com/matzehuels/livetiles/pkg/errors"
	"github.com/matzehuels/livetiles/pkg/observability"
)

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Config selects and configures a backend. It is the [store] table of the
// configuration file.
type Config struct {
	Backend         string        `toml:"backend" json:"backend"`
	Dir             string        `toml:"dir" json:"dir,omitempty"`
	RedisAddr       string        `toml:"redis_addr" json:"redis_addr,omitempty"`
	RedisPassword   string        `toml:"redis_password" json:"-"`
	RedisDB         int           `toml:"redis_db" json:"redis_db,omitempty"`
	MongoURI        string        `toml:"mongo_uri" json:"mongo_uri,omitempty"`
	MongoDatabase   string        `toml:"mongo_database" json:"mongo_database,omitempty"`
	MongoCollection string        `toml:"mongo_collection" json:"mongo_collection,omitempty"`
	TTL             time.Duration `toml:"ttl" json:"ttl,omitempty"`
	Namespace       string        `toml:"namespace" json:"namespace,omitempty"`
}

// Validate checks the backend name.
func (c Config) Validate() error {
	switch c.Backend {
	case "", BackendFile, BackendRedis, BackendMongo, BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", c.Backend)
	}
	if c.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "store ttl must not be negative")
	}
	return nil
}

// Keyer returns the keyer for the configured namespace.
func (c Config) Keyer() Keyer {
	if c.Namespace == "" {
		return DefaultKeyer{}
	}
	return NewScopedKeyer(nil, c.Namespace+":")
}

// Open creates the configured backend, defaulting to the file store. The
// returned store reports traffic to the observability store hooks.
func Open(ctx context.Context, cfg Config) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var (
		s   Store
		err error
	)
	backend := cfg.Backend
	switch backend {
	case "", BackendFile:
		backend = BackendFile
		s, err = NewFileStore(cfg.Dir)
	case BackendRedis:
		s, err = NewRedisStore(ctx, RedisOptions{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	case BackendMongo:
		s, err = NewMongoStore(ctx, MongoOptions{URI: cfg.MongoURI, Database: cfg.MongoDatabase, Collection: cfg.MongoCollection})
	case BackendNone:
		s = NewNullStore()
	}
	if err != nil {
		return nil, err
	}
	return Observe(s, backend), nil
}

// Observe wraps s so every call is reported to [observability.Store].
func Observe(s Store, backend string) Store {
	if o, ok := s.(*observed); ok {
		s = o.Store
	}
	return &observed{Store: s, backend: backend}
}

type observed struct {
	Store
	backend string
}

func (o *observed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := o.Store.Get(ctx, key)
	h := observability.Store()
	switch {
	case err != nil:
		h.OnStoreError(ctx, o.backend, "get", err)
	case ok:
		h.OnStoreHit(ctx, o.backend)
	default:
		h.OnStoreMiss(ctx, o.backend)
	}
	return data, ok, err
}

func (o *observed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := o.Store.Set(ctx, key, data, ttl)
	if err != nil {
		observability.Store().OnStoreError(ctx, o.backend, "set", err)
	} else {
		observability.Store().OnStoreSet(ctx, o.backend, len(data))
	}
	return err
}

func (o *observed) Delete(ctx context.Context, key string) error {
	err := o.Store.Delete(ctx, key)
	if err != nil {
		observability.Store().OnStoreError(ctx, o.backend, "delete", err)
	}
	return err
}

// Unwrap returns the backend behind the hooks.
func (o *observed) Unwrap() Store { return o.Store }

// Underlying strips the observability wrapper added by [Open].
func Underlying(s Store) Store {
	if u, ok := s.(interface{ Unwrap() Store }); ok {
		return u.Unwrap()
	}
	return s
}
