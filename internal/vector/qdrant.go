package vector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/SteedMonteiro/mcp-local-context/internal/classifier"
)

// DefaultCollection is the Qdrant collection holding the docs index.
const DefaultCollection = "local_docs"

// Point payload "kind" values. A document yields one parent point
// (full content, no vector) plus one vector point per section; queries
// hit section points and resolve back to parents.
const (
	kindParent  = "parent"
	kindSection = "section"
)

// QdrantConfig configures the Qdrant backend.
type QdrantConfig struct {
	Host       string
	Port       int
	Collection string
}

// Qdrant implements Backend on a Qdrant collection with OpenAI
// embeddings.
type Qdrant struct {
	client     *qdrant.Client
	embedder   Embedder
	collection string
	logger     *slog.Logger
}

// NewQdrant connects to Qdrant, verifies health with retry, and
// ensures the collection exists. A nil or unreachable server yields an
// error; callers typically fall back to the Disabled backend.
func NewQdrant(cfg QdrantConfig, embedder Embedder, logger *slog.Logger) (*Qdrant, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: cfg.Host,
		Port: cfg.Port,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	q := &Qdrant{
		client:     client,
		embedder:   embedder,
		collection: cfg.Collection,
		logger:     logger,
	}

	if err := q.healthCheckWithRetry(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("qdrant unreachable: %w", err)
	}
	if err := q.ensureCollection(context.Background()); err != nil {
		client.Close()
		return nil, err
	}
	return q, nil
}

func (q *Qdrant) healthCheckWithRetry(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		return q.Health(ctx)
	}, backoff.WithContext(b, ctx))
}

// Health performs a single health check against Qdrant.
func (q *Qdrant) Health(ctx context.Context) error {
	result, err := q.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if result == nil || result.Title == "" {
		return fmt.Errorf("health check returned invalid response")
	}
	return nil
}

// ensureCollection creates the collection and payload indexes if they
// do not exist yet. Idempotent.
func (q *Qdrant) ensureCollection(ctx context.Context) error {
	collections, err := q.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	for _, name := range collections {
		if name == q.collection {
			return nil
		}
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: qdrant.NewVectorsConfigMap(map[string]*qdrant.VectorParams{
			"content": {
				Size:     EmbeddingDimension,
				Distance: qdrant.Distance_Cosine,
			},
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	// Without keyword indexes, filtered scroll and search degrade badly.
	for _, field := range []string{"kind", "identifier", "doc_type", "parent_id"} {
		_, err := q.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: q.collection,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		})
		if err != nil {
			return fmt.Errorf("create index for field %s: %w", field, err)
		}
	}
	return nil
}

// Available reports true: a constructed Qdrant backend passed its
// startup health check.
func (q *Qdrant) Available() bool { return true }

// Close closes the underlying client connection.
func (q *Qdrant) Close() error {
	if q.client != nil {
		return q.client.Close()
	}
	return nil
}

func (q *Qdrant) upsertWithRetry(ctx context.Context, points []*qdrant.PointStruct) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: q.collection,
			Points:         points,
		})
		return err
	}, backoff.WithContext(b, ctx))
}

// Insert adds one document: a parent point carrying the full content
// and metadata, plus one embedded point per section.
func (q *Qdrant) Insert(ctx context.Context, content string, meta Metadata) error {
	sections := splitSections([]byte(content))
	texts := make([]string, len(sections))
	for i, s := range sections {
		texts[i] = s.EmbedText()
	}

	vectors, err := q.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed document %s: %w", meta.Identifier, err)
	}
	if len(vectors) != len(sections) {
		return fmt.Errorf("embedder returned %d vectors for %d sections", len(vectors), len(sections))
	}

	parentID := uuid.New().String()
	points := make([]*qdrant.PointStruct, 0, len(sections)+1)
	points = append(points, &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(parentID),
		Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{}),
		Payload: qdrant.NewValueMap(map[string]any{
			"kind":       kindParent,
			"identifier": meta.Identifier,
			"doc_type":   string(meta.DocType),
			"content":    content,
			"indexed_at": time.Now().UTC().Format(time.RFC3339),
		}),
	})

	for i, s := range sections {
		points = append(points, &qdrant.PointStruct{
			Id: qdrant.NewIDUUID(uuid.New().String()),
			Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{
				"content": qdrant.NewVector(vectors[i]...),
			}),
			Payload: qdrant.NewValueMap(map[string]any{
				"kind":        kindSection,
				"parent_id":   parentID,
				"identifier":  meta.Identifier,
				"doc_type":    string(meta.DocType),
				"section":     s.Index,
				"header_path": s.HeaderPath,
				"text":        s.Text,
			}),
		})
	}

	if err := q.upsertWithRetry(ctx, points); err != nil {
		return fmt.Errorf("upsert document %s: %w", meta.Identifier, err)
	}
	q.logger.Debug("indexed document", "identifier", meta.Identifier, "sections", len(sections))
	return nil
}

// Query embeds the query text, searches section points, and collapses
// hits to their parent documents keeping the best score per document.
// The returned candidates carry full parent content as Text.
func (q *Qdrant) Query(ctx context.Context, text string, topK int) ([]Candidate, error) {
	vectors, err := q.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	vectorName := "content"
	results, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(vectors[0]...),
		Using:          &vectorName,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("kind", kindSection)},
		},
		// Over-search sections so enough distinct parents survive the
		// collapse below.
		Limit:       qdrant.PtrOf(uint64(topK * 3)),
		WithPayload: qdrant.NewWithPayload(true),
		WithVectors: qdrant.NewWithVectors(false),
	})
	if err != nil {
		return nil, fmt.Errorf("search sections: %w", err)
	}

	seen := make(map[string]bool)
	candidates := make([]Candidate, 0, topK)
	for _, result := range results {
		if len(candidates) >= topK {
			break
		}
		payload := result.Payload
		parentID := payload["parent_id"].GetStringValue()
		if parentID == "" || seen[parentID] {
			continue
		}
		seen[parentID] = true

		docType := classifier.DocType(payload["doc_type"].GetStringValue())
		if !docType.Valid() {
			docType = classifier.TypeDocumentation
		}

		// Results arrive score-descending, so the first section per
		// parent is that document's best match.
		body := payload["text"].GetStringValue()
		if content, err := q.parentContent(ctx, parentID); err == nil {
			body = content
		}

		candidates = append(candidates, Candidate{
			Identifier: payload["identifier"].GetStringValue(),
			Text:       body,
			DocType:    docType,
			Score:      float64(result.Score),
		})
	}
	return candidates, nil
}

// parentContent fetches the full content stored on a parent point.
func (q *Qdrant) parentContent(ctx context.Context, parentID string) (string, error) {
	result, err := q.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: q.collection,
		Ids:            []*qdrant.PointId{qdrant.NewIDUUID(parentID)},
		WithPayload:    qdrant.NewWithPayloadInclude("content"),
	})
	if err != nil {
		return "", fmt.Errorf("get parent point: %w", err)
	}
	if len(result) == 0 {
		return "", fmt.Errorf("parent point %s not found", parentID)
	}
	return result[0].Payload["content"].GetStringValue(), nil
}

// Clear drops and recreates the collection. Idempotent: clearing an
// empty index succeeds.
func (q *Qdrant) Clear(ctx context.Context) error {
	if err := q.client.DeleteCollection(ctx, q.collection); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return q.ensureCollection(ctx)
}

// Count returns the number of indexed documents (parent points, not
// sections).
func (q *Qdrant) Count(ctx context.Context) (int, error) {
	count, err := q.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: q.collection,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("kind", kindParent)},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return int(count), nil
}
