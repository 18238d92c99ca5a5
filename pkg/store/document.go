package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/livetiles/pkg/errors"
	"github.com/matzehuels/livetiles/pkg/layout"
	"github.com/matzehuels/livetiles/pkg/state"
)

// Document is a persisted layout: the container configuration and the
// state mirror. It is also the on-disk format of *.tiles.json files.
type Document struct {
	Config layout.Config `json:"config"`
	State  *state.State  `json:"state"`
}

// NewDocument captures a layout.
func NewDocument(l *layout.Layout) Document {
	return Document{Config: l.Config(), State: l.State()}
}

// Layout builds a layout from the document.
func (d Document) Layout(opts ...layout.Option) (*layout.Layout, error) {
	l, err := layout.New(d.Config, opts...)
	if err != nil {
		return nil, err
	}
	if d.State != nil {
		if err := l.Restore(d.State); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Encode returns the indented JSON form of d.
func (d Document) Encode() ([]byte, error) {
	if d.State == nil {
		d.State = state.New()
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode document")
	}
	return data, nil
}

// DecodeDocument parses a document. Missing config fields take their
// defaults; the state is coerced the way [state.FromJSON] does.
func DecodeDocument(data []byte) (Document, error) {
	var raw struct {
		Config json.RawMessage `json:"config"`
		State  json.RawMessage `json:"state"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse document")
	}

	d := Document{Config: layout.DefaultConfig(), State: state.New()}
	if present(raw.Config) {
		if err := json.Unmarshal(raw.Config, &d.Config); err != nil {
			return Document{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config")
		}
		d.Config.SetDefaults()
	}
	if err := d.Config.Validate(); err != nil {
		return Document{}, err
	}
	if present(raw.State) {
		s, err := state.FromJSON(raw.State)
		if err != nil {
			return Document{}, err
		}
		d.State = s
	}
	if err := d.State.Validate(); err != nil {
		return Document{}, err
	}
	return d, nil
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// Save encodes doc and stores it under the keyer's key for name.
func Save(ctx context.Context, s Store, k Keyer, name string, doc Document, ttl time.Duration) error {
	if err := errors.ValidateDocumentName(name); err != nil {
		return err
	}
	data, err := doc.Encode()
	if err != nil {
		return err
	}
	return s.Set(ctx, k.StateKey(name), data, ttl)
}

// Load fetches and decodes the document stored for name. A missing
// document is a NOT_FOUND error.
func Load(ctx context.Context, s Store, k Keyer, name string) (Document, error) {
	if err := errors.ValidateDocumentName(name); err != nil {
		return Document{}, err
	}
	data, ok, err := s.Get(ctx, k.StateKey(name))
	if err != nil {
		return Document{}, err
	}
	if !ok {
		return Document{}, errors.New(errors.ErrCodeNotFound, "no saved layout named %q", name)
	}
	return DecodeDocument(data)
}

// Remove deletes the document stored for name.
func Remove(ctx context.Context, s Store, k Keyer, name string) error {
	if err := errors.ValidateDocumentName(name); err != nil {
		return err
	}
	return s.Delete(ctx, k.StateKey(name))
}
