package vector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
)

const (
	// EmbeddingModel is the OpenAI model used for embeddings.
	EmbeddingModel = "text-embedding-3-small"

	// EmbeddingDimension is the vector size produced by EmbeddingModel.
	EmbeddingDimension = 1536

	// DefaultEmbedBatchSize bounds texts per API request to balance
	// request-per-minute against token-per-minute rate limits.
	DefaultEmbedBatchSize = 500
)

// Embedder turns texts into vectors. Implementations must return one
// vector per input text, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// OpenAIEmbedder generates embeddings through the OpenAI API, batching
// requests and retrying rate-limited calls with exponential backoff.
type OpenAIEmbedder struct {
	client    openai.Client
	batchSize int
}

// NewOpenAIEmbedder creates an embedder from the OPENAI_API_KEY
// environment variable. batchSize <= 0 selects the default.
func NewOpenAIEmbedder(batchSize int) (*OpenAIEmbedder, error) {
	if os.Getenv("OPENAI_API_KEY") == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	if batchSize <= 0 {
		batchSize = DefaultEmbedBatchSize
	}
	return &OpenAIEmbedder{
		client:    openai.NewClient(),
		batchSize: batchSize,
	}, nil
}

// Embed generates embeddings for texts, one batch at a time.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var all [][]float32
	for i := 0; i < len(texts); i += e.batchSize {
		end := min(i+e.batchSize, len(texts))
		vectors, err := e.embedBatch(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch %d-%d: %w", i, end, err)
		}
		all = append(all, vectors...)
	}
	return all, nil
}

// embedBatch embeds one batch, retrying HTTP 429 with backoff. Other
// API errors are permanent.
func (e *OpenAIEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32

	operation := func() error {
		resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{
				OfArrayOfStrings: texts,
			},
			Model: EmbeddingModel,
		})
		if err != nil {
			if isRateLimited(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		vectors = make([][]float32, len(resp.Data))
		for i, data := range resp.Data {
			vectors[i] = toFloat32(data.Embedding)
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, err
	}
	return vectors, nil
}

func isRateLimited(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}

// toFloat32 narrows the API's float64 vectors for storage.
func toFloat32(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
