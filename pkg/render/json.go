package render

import (
	"encoding/json"

	"github.com/matzehuels/livetiles/pkg/layout"
)

// JSONOption configures [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	indent bool
	config *layout.Config
}

// WithJSONIndent pretty-prints the output.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

// WithJSONConfig embeds the container configuration, so a consumer can
// convert em to its own units.
func WithJSONConfig(cfg layout.Config) JSONOption {
	return func(r *jsonRenderer) { r.config = &cfg }
}

type jsonOutput struct {
	Config *layout.Config `json:"config,omitempty"`
	Scene
}

// RenderJSON encodes a scene.
func RenderJSON(s Scene, opts ...JSONOption) ([]byte, error) {
	r := &jsonRenderer{}
	for _, opt := range opts {
		opt(r)
	}
	if s.Groups == nil {
		s.Groups = []SceneGroup{}
	}
	out := jsonOutput{Config: r.config, Scene: s}
	if r.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}
