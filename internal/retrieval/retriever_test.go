package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/jackc/pgx/v5"
)

type fakeEmbedder struct {
	err error
}

func (f fakeEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{0.1, 0.2, 0.3}
	}
	return out, nil
}

type fakeQuerier struct {
	rows pgx.Rows
	err  error
}

func (f fakeQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

// fakeRows serves scripted snippet rows; unimplemented pgx.Rows methods are
// never reached by the store.
type fakeRows struct {
	pgx.Rows
	snippets []Snippet
	pos      int
}

func (r *fakeRows) Close()     {}
func (r *fakeRows) Err() error { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.snippets) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	snippet := r.snippets[r.pos-1]
	*(dest[0].(*string)) = snippet.Content
	*(dest[1].(*string)) = snippet.Disease
	*(dest[2].(*string)) = snippet.Topic
	return nil
}

func TestRetrieveReturnsEmptyWhenKIsZero(t *testing.T) {
	store := NewStore(fakeQuerier{}, fakeEmbedder{}, 0)
	if got := store.Retrieve(context.Background(), "eGFR 40", 0); got != "" {
		t.Fatalf("Retrieve with k=0 = %q, want empty", got)
	}
}

func TestRetrieveSwallowsEmbeddingFailure(t *testing.T) {
	store := NewStore(fakeQuerier{}, fakeEmbedder{err: errors.New("embedding down")}, 0)
	if got := store.Retrieve(context.Background(), "eGFR 40", 3); got != "" {
		t.Fatalf("Retrieve after embedding failure = %q, want empty", got)
	}
}

func TestRetrieveSwallowsSearchFailure(t *testing.T) {
	store := NewStore(fakeQuerier{err: errors.New("db down")}, fakeEmbedder{}, 0)
	if got := store.Retrieve(context.Background(), "eGFR 40", 3); got != "" {
		t.Fatalf("Retrieve after search failure = %q, want empty", got)
	}
}

func TestRetrieveReturnsEmptyOnZeroHits(t *testing.T) {
	store := NewStore(fakeQuerier{rows: &fakeRows{}}, fakeEmbedder{}, 0)
	if got := store.Retrieve(context.Background(), "สวัสดี", 3); got != "" {
		t.Fatalf("Retrieve with zero hits = %q, want empty", got)
	}
}

func TestRetrieveAnnotatesSnippets(t *testing.T) {
	rows := &fakeRows{snippets: []Snippet{
		{Content: "eGFR ต่ำกว่า 60\nติดต่อกัน 3 เดือน", Disease: "โรคไตเรื้อรัง", Topic: "eGFR"},
		{Content: "ระยะที่ 3b", Disease: "โรคไตเรื้อรัง", Topic: "ระยะโรค"},
	}}
	store := NewStore(fakeQuerier{rows: rows}, fakeEmbedder{}, 0)

	got := store.Retrieve(context.Background(), "eGFR 40", 3)
	if !strings.Contains(got, "[ข้อมูลที่ 1 จาก: โรคไตเรื้อรัง - eGFR]:") {
		t.Fatalf("first snippet annotation missing:\n%s", got)
	}
	if !strings.Contains(got, "[ข้อมูลที่ 2 จาก: โรคไตเรื้อรัง - ระยะโรค]:") {
		t.Fatalf("second snippet annotation missing:\n%s", got)
	}
	if strings.Contains(got, "ต่ำกว่า 60\nติดต่อ") {
		t.Fatal("snippet newlines must be flattened")
	}
}

func TestFormatSnippetsUnknownSource(t *testing.T) {
	got := formatSnippets([]Snippet{{Content: "x", Topic: "y"}})
	if !strings.Contains(got, "Unknown Source") {
		t.Fatalf("missing source fallback:\n%s", got)
	}
}

func TestNoopRetrieverAlwaysEmpty(t *testing.T) {
	if got := (Noop{}).Retrieve(context.Background(), "อะไรก็ได้", 5); got != "" {
		t.Fatalf("Noop.Retrieve = %q, want empty", got)
	}
}
