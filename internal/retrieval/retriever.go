package retrieval

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

// Retriever hands the workflow a single ranked-context block for a query.
// An empty string means "nothing relevant found" and is a valid, non-error
// outcome: retrieval failures never propagate past this boundary.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) string
}

// maxTopK bounds how many snippets a single retrieval may pull.
const maxTopK = 10

const searchQuery = `
SELECT content, disease, topic
FROM health_chunks
ORDER BY embedding <=> $1
LIMIT $2`

// Querier is the slice of the pgx pool the store needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store performs vector similarity search over the health knowledge table.
// The table is written by the offline ingestion pipeline; this side only reads.
type Store struct {
	db       Querier
	embedder embedding.Embedder
	timeout  time.Duration
}

// NewStore wires the search backend. A zero timeout defaults to 10 seconds so
// a slow vector scan cannot hold a request forever.
func NewStore(db Querier, embedder embedding.Embedder, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Store{db: db, embedder: embedder, timeout: timeout}
}

// Retrieve embeds the query, searches for the k nearest snippets and returns
// them concatenated with their source annotations. Every failure path logs and
// returns "" so the caller degrades to the no-context prompt.
func (s *Store) Retrieve(ctx context.Context, query string, k int) string {
	if k <= 0 || strings.TrimSpace(query) == "" {
		return ""
	}
	if k > maxTopK {
		k = maxTopK
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	vectors, err := s.embedder.EmbedStrings(queryCtx, []string{query})
	if err != nil {
		log.Printf("[retrieval] query embedding failed: %v", err)
		return ""
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		log.Printf("[retrieval] embedder returned no vector for query")
		return ""
	}

	rows, err := s.db.Query(queryCtx, searchQuery, pgvector.NewVector(toFloat32(vectors[0])), k)
	if err != nil {
		log.Printf("[retrieval] vector search failed: %v", err)
		return ""
	}
	defer rows.Close()

	snippets := make([]Snippet, 0, k)
	for rows.Next() {
		var snippet Snippet
		if err := rows.Scan(&snippet.Content, &snippet.Disease, &snippet.Topic); err != nil {
			log.Printf("[retrieval] failed to scan snippet row: %v", err)
			return ""
		}
		snippets = append(snippets, snippet)
	}
	if err := rows.Err(); err != nil {
		log.Printf("[retrieval] vector search failed: %v", err)
		return ""
	}

	return formatSnippets(snippets)
}

// Snippet is one ranked knowledge chunk with its source tags.
type Snippet struct {
	Content string
	Disease string
	Topic   string
}

// formatSnippets joins ranked snippets into the context block handed to the
// generation prompt, each annotated with its source disease and topic.
func formatSnippets(snippets []Snippet) string {
	if len(snippets) == 0 {
		return ""
	}

	var b strings.Builder
	for i, snippet := range snippets {
		source := snippet.Disease
		if source == "" {
			source = "Unknown Source"
		}
		content := strings.ReplaceAll(snippet.Content, "\n", " ")
		fmt.Fprintf(&b, "[ข้อมูลที่ %d จาก: %s - %s]:\n%s\n\n", i+1, source, snippet.Topic, content)
	}
	return b.String()
}

func toFloat32(vector []float64) []float32 {
	out := make([]float32, len(vector))
	for i, v := range vector {
		out[i] = float32(v)
	}
	return out
}
