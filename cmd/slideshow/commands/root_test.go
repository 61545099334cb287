package commands

import (
	"context"
	"testing"

	"github.com/haivivi/slideshow/pkg/cli"
)

func TestNewGeneratorParams(t *testing.T) {
	gen, err := newGenerator(context.Background(), &cli.Context{
		APIKey:      "test-key",
		Temperature: 0.3,
		MaxTokens:   1024,
	})
	if err != nil {
		t.Fatalf("newGenerator: %v", err)
	}
	p := gen.GenerateParams
	if p == nil || p.Temperature != 0.3 || p.MaxTokens != 1024 {
		t.Fatalf("GenerateParams = %+v", p)
	}

	gen, err = newGenerator(context.Background(), &cli.Context{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("newGenerator: %v", err)
	}
	if gen.GenerateParams != nil {
		t.Fatalf("GenerateParams = %+v, want nil", gen.GenerateParams)
	}
}

func TestNewGeneratorNoKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	if _, err := newGenerator(context.Background(), &cli.Context{}); err == nil {
		t.Fatal("expected error without an API key")
	}
}
