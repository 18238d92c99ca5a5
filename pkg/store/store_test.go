package store

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/livetiles/pkg/errors"
	"github.com/matzehuels/livetiles/pkg/grid"
	"github.com/matzehuels/livetiles/pkg/layout"
	"github.com/matzehuels/livetiles/pkg/observability"
	"github.com/matzehuels/livetiles/pkg/state"
)

// exercise runs the behaviour every backend shares.
func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	key := "test:" + t.Name()

	if _, ok, err := s.Get(ctx, key); err != nil || ok {
		t.Fatalf("Get(missing) = %v, %v", ok, err)
	}
	if err := s.Set(ctx, key, []byte(`{"a":1}`), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if got := strings.ReplaceAll(string(data), " ", ""); got != `{"a":1}` {
		t.Errorf("Get = %s, want {\"a\":1}", data)
	}

	if err := s.Set(ctx, key, []byte("plain bytes"), 0); err != nil {
		t.Fatalf("Set(bytes): %v", err)
	}
	if data, _, _ := s.Get(ctx, key); string(data) != "plain bytes" {
		t.Errorf("Get = %q, want overwritten value", data)
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, key); ok {
		t.Error("Get after Delete hit")
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Errorf("Delete(missing): %v", err)
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	exercise(t, s)
}

func TestFileStoreExpiry(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())
	ctx := context.Background()
	if err := s.Set(ctx, "k", []byte("v"), time.Millisecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, ok, err := s.Get(ctx, "k"); ok || err != nil {
		t.Errorf("Get(expired) = %v, %v; want miss", ok, err)
	}
	if _, err := os.Stat(s.Path("k")); !os.IsNotExist(err) {
		t.Errorf("expired entry still on disk: %v", err)
	}
}

func TestFileStoreCorruptEntryIsMiss(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())
	ctx := context.Background()
	_ = s.Set(ctx, "k", []byte("v"), 0)
	if err := os.WriteFile(s.Path("k"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := s.Get(ctx, "k"); ok || err != nil {
		t.Errorf("Get(corrupt) = %v, %v; want miss", ok, err)
	}
}

func TestFileStoreConcurrent(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := string(rune('a' + i))
			for range 20 {
				if err := s.Set(ctx, key, []byte(key), 0); err != nil {
					t.Error(err)
					return
				}
				if _, _, err := s.Get(ctx, key); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestNullStore(t *testing.T) {
	s := NewNullStore()
	ctx := context.Background()
	if err := s.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("NullStore stored a value")
	}
}

func TestKeyers(t *testing.T) {
	k := DefaultKeyer{}
	a, b := k.StateKey("home"), k.StateKey("work")
	if a == b {
		t.Error("different names share a key")
	}
	if !strings.HasPrefix(a, "state:") || len(a) != len("state:")+64 {
		t.Errorf("StateKey = %q", a)
	}
	if a != k.StateKey("home") {
		t.Error("StateKey is not deterministic")
	}

	scoped := NewScopedKeyer(nil, "user:42:")
	if got := scoped.StateKey("home"); got != "user:42:"+a {
		t.Errorf("scoped = %q", got)
	}
	if got := (Config{Namespace: "team"}).Keyer().StateKey("home"); got != "team:"+a {
		t.Errorf("namespaced = %q", got)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		cfg  Config
		want bool
	}{
		{Config{}, true},
		{Config{Backend: BackendFile}, true},
		{Config{Backend: BackendNone}, true},
		{Config{Backend: "etcd"}, false},
		{Config{TTL: -time.Second}, false},
	}
	for _, tt := range tests {
		err := tt.cfg.Validate()
		if (err == nil) != tt.want {
			t.Errorf("Validate(%+v) = %v", tt.cfg, err)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidConfig) {
			t.Errorf("Validate(%+v) code = %s", tt.cfg, errors.GetCode(err))
		}
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, Config{Dir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := Underlying(s).(*FileStore); !ok {
		t.Errorf("default backend = %T, want *FileStore", Underlying(s))
	}
	s, err = Open(ctx, Config{Backend: BackendNone})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := Underlying(s).(*NullStore); !ok {
		t.Errorf("none backend = %T", Underlying(s))
	}
}

type recordingHooks struct {
	observability.NoopStoreHooks
	events []string
}

func (h *recordingHooks) OnStoreHit(_ context.Context, b string)  { h.events = append(h.events, "hit:"+b) }
func (h *recordingHooks) OnStoreMiss(_ context.Context, b string) { h.events = append(h.events, "miss:"+b) }
func (h *recordingHooks) OnStoreSet(_ context.Context, b string, _ int) {
	h.events = append(h.events, "set:"+b)
}

func TestObserve(t *testing.T) {
	h := &recordingHooks{}
	observability.SetStoreHooks(h)
	defer observability.Reset()

	fs, _ := NewFileStore(t.TempDir())
	s := Observe(fs, BackendFile)
	ctx := context.Background()
	_, _, _ = s.Get(ctx, "k")
	_ = s.Set(ctx, "k", []byte("v"), 0)
	_, _, _ = s.Get(ctx, "k")

	want := []string{"miss:file", "set:file", "hit:file"}
	if strings.Join(h.events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", h.events, want)
	}
	if Underlying(Observe(s, "x")) != fs {
		t.Error("Observe stacked wrappers")
	}
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	s, _ := NewFileStore(t.TempDir())
	k := DefaultKeyer{}

	l, _ := layout.New(layout.DefaultConfig())
	_ = l.AddGroup("work", "Work")
	_, _ = l.AddTile(layout.TileSpec{ID: "mail", Group: "work", At: grid.At(0, 0)})
	_, _ = l.AddTile(layout.TileSpec{ID: "news", Group: "work", Size: state.Wide})

	if err := Save(ctx, s, k, "home", NewDocument(l), 0); err != nil {
		t.Fatalf("Save: %v", err)
	}
	doc, err := Load(ctx, s, k, "home")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Config != l.Config() {
		t.Errorf("config = %+v, want %+v", doc.Config, l.Config())
	}
	got, err := doc.Layout()
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	a, _ := got.State().ToJSON()
	b, _ := l.State().ToJSON()
	if string(a) != string(b) {
		t.Errorf("state = %s, want %s", a, b)
	}

	if _, err := Load(ctx, s, k, "missing"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Load(missing) = %v, want NOT_FOUND", err)
	}
	if err := Save(ctx, s, k, "../etc", NewDocument(l), 0); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("Save(../etc) = %v, want INVALID_PATH", err)
	}
	if err := Remove(ctx, s, k, "home"); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(ctx, s, k, "home"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Load after Remove = %v", err)
	}
}

func TestDecodeDocument(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code errors.Code
	}{
		{"empty object", `{}`, ""},
		{"partial config", `{"config":{"height":8}}`, ""},
		{"coerced state", `{"state":{"groups":{"g":{"index":"0","label":null}},"tiles":{"t":{"size":"small","x":"1","y":0,"group":"g"}}}}`, ""},
		{"not json", `{`, errors.ErrCodeInvalidFormat},
		{"bad config", `{"config":{"direction":"diagonal"}}`, errors.ErrCodeInvalidConfig},
		{"bad state", `{"state":{"groups":{},"tiles":{"t":{"size":"small","x":0,"y":0,"group":"nope"}}}}`, errors.ErrCodeInvalidState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := DecodeDocument([]byte(tt.in))
			if tt.code != "" {
				if !errors.Is(err, tt.code) {
					t.Errorf("err = %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("err = %v", err)
			}
			if doc.State == nil {
				t.Fatal("nil state")
			}
			if doc.Config.TileGap != layout.DefaultTileGap {
				t.Errorf("tile gap = %v, want default", doc.Config.TileGap)
			}
		})
	}
}

func TestDocumentPartialConfigKeepsDefaults(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{"config":{"height":8}}`))
	if err != nil {
		t.Fatal(err)
	}
	want := layout.DefaultConfig()
	want.Height = 8
	if doc.Config != want {
		t.Errorf("config = %+v, want %+v", doc.Config, want)
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("LIVETILES_TEST_REDIS")
	if addr == "" {
		t.Skip("LIVETILES_TEST_REDIS not set")
	}
	s, err := NewRedisStore(context.Background(), RedisOptions{Addr: addr})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	exercise(t, s)
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("LIVETILES_TEST_MONGO")
	if uri == "" {
		t.Skip("LIVETILES_TEST_MONGO not set")
	}
	s, err := NewMongoStore(context.Background(), MongoOptions{URI: uri, Database: "livetiles_test"})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	exercise(t, s)
}

func TestUnreachableRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("dials the network")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_, err := NewRedisStore(ctx, RedisOptions{Addr: "127.0.0.1:1"})
	if !errors.Is(err, errors.ErrCodeStoreUnavailable) {
		t.Errorf("err = %v, want STORE_UNAVAILABLE", err)
	}
}
