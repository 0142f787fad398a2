package memory

import (
	"context"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(context.Background(), t.TempDir(), NewNoOpEmbedder(8))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRememberAndCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Remember(ctx, "the config file lives at ~/.config/cogent", []string{"config"}); err != nil {
		t.Fatalf("Remember failed: %v", err)
	}
	if err := store.Remember(ctx, "tests run with go test ./...", []string{"testing", "go"}); err != nil {
		t.Fatalf("Remember failed: %v", err)
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
}

func TestRememberRejectsEmptyContent(t *testing.T) {
	store := newTestStore(t)

	if err := store.Remember(context.Background(), "   \n", nil); err == nil {
		t.Error("blank content should be rejected")
	}
}

func TestRecallKeywordLeg(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	notes := []string{
		"the database schema uses a notes table with a created_at index",
		"approval policies are permissive, edit-auto, standard and strict",
		"retry backoff doubles the delay on every transient failure",
	}
	for _, n := range notes {
		if err := store.Remember(ctx, n, nil); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.Recall(ctx, "database schema", 2)
	if err != nil {
		t.Fatalf("Recall failed: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected at least one hit")
	}
	if got[0] != notes[0] {
		t.Errorf("top hit = %q, want the schema note", got[0])
	}
}

func TestRecallNoMatches(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Remember(ctx, "completely unrelated fact", nil); err != nil {
		t.Fatal(err)
	}

	got, err := store.Recall(ctx, "xylophone quasar", 3)
	if err != nil {
		t.Fatalf("Recall failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want no hits", got)
	}
}

func TestForget(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Remember(ctx, "temporary note about widgets", nil); err != nil {
		t.Fatal(err)
	}

	hits, err := store.Recall(ctx, "widgets", 3)
	if err != nil || len(hits) != 1 {
		t.Fatalf("expected one hit before forgetting, got %v (%v)", hits, err)
	}

	// Find the ID through the keyword index.
	kw, err := store.keyword.Search("widgets", 1)
	if err != nil || len(kw) != 1 {
		t.Fatalf("keyword search failed: %v", err)
	}
	if err := store.Forget(ctx, kw[0].NoteID); err != nil {
		t.Fatalf("Forget failed: %v", err)
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("Count after Forget = %d, want 0", n)
	}
	hits, err = store.Recall(ctx, "widgets", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("forgotten note still recalled: %v", hits)
	}
}

func TestDecodeVectorRoundTrip(t *testing.T) {
	in := []float32{0.5, -1.25, 3}
	out, err := DecodeVector(encodeVector(in))
	if err != nil {
		t.Fatalf("DecodeVector failed: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("length %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], in[i])
		}
	}
}

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{1, 0, 0}
	c := []float32{0, 1, 0}

	if got := cosineSimilarity(a, b); got < 0.999 {
		t.Errorf("identical vectors: %v, want ~1", got)
	}
	if got := cosineSimilarity(a, c); got != 0 {
		t.Errorf("orthogonal vectors: %v, want 0", got)
	}
	if got := cosineSimilarity(a, []float32{1, 0}); got != 0 {
		t.Errorf("mismatched lengths: %v, want 0", got)
	}
}
