package rag

import (
	"context"
	"testing"

	"github.com/ordalabs/orda-backend/internal/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

type fakeEmbedder struct {
	embedFn func(ctx context.Context, inputs []string) ([][]float32, error)
	calls   int
}

func (f *fakeEmbedder) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	f.calls++
	if f.embedFn != nil {
		return f.embedFn(ctx, inputs)
	}
	out := make([][]float32, len(inputs))
	for i := range out {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

type fakeSearcher struct {
	searchFn func(ctx context.Context, partition string, vector []float32, topK int) ([]VectorMatch, error)
	calls    int
}

func (f *fakeSearcher) Search(ctx context.Context, partition string, vector []float32, topK int) ([]VectorMatch, error) {
	f.calls++
	if f.searchFn != nil {
		return f.searchFn(ctx, partition, vector, topK)
	}
	return nil, nil
}

type fakeGenerator struct {
	generateFn func(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error)
	calls      int
}

func (f *fakeGenerator) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	f.calls++
	if f.generateFn != nil {
		return f.generateFn(ctx, system, user, schemaName, schema)
	}
	return map[string]any{}, nil
}

func industryMatch(name, description string, score float64) VectorMatch {
	return VectorMatch{
		ID:    "vec-" + name,
		Score: score,
		Metadata: map[string]any{
			"name":        name,
			"description": description,
		},
	}
}
