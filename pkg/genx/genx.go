package genx

import (
	"context"
	"iter"

	"github.com/goccy/go-yaml"
)

type Stream interface {
	Next() (*MessageChunk, error)
	Close() error
	CloseWithError(error) error
}

// ModelParams are the sampling settings sent with every request.
type ModelParams struct {
	MaxTokens   int     `json:"max_tokens,omitzero" yaml:"max_tokens,omitempty"`
	Temperature float32 `json:"temperature,omitzero" yaml:"temperature,omitempty"`
}

type ModelContext interface {
	Messages() iter.Seq[*Message]
}

// Generator opens a generation stream for the given model context. The model
// argument selects the remote model; an empty string uses the generator's
// default.
type Generator interface {
	GenerateStream(ctx context.Context, model string, mctx ModelContext) (Stream, error)
}

type Usage struct {
	// Number of tokens in the prompt, cached content included.
	PromptTokenCount int64

	// Number of tokens in the cached part of the prompt.
	CachedContentTokenCount int64

	// Number of tokens generated.
	GeneratedTokenCount int64
}

func (u Usage) String() string {
	b, _ := yaml.Marshal(map[string]map[string]any{
		"Usage": {
			"Prompt":    u.PromptTokenCount,
			"Cached":    u.CachedContentTokenCount,
			"Generated": u.GeneratedTokenCount,
		},
	})
	return string(b)
}
