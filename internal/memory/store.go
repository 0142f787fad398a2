package memory

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Note is one remembered fact.
type Note struct {
	ID        string
	Content   string
	Tags      []string
	CreatedAt int64
}

// Store persists notes in SQLite and recalls them by combining keyword and
// vector similarity. It implements engine.Recaller.
type Store struct {
	db       *sql.DB
	keyword  *KeywordIndex
	embedder Embedder
}

// NewStore opens (or creates) the note store under dir.
func NewStore(ctx context.Context, dir string, embedder Embedder) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create memory dir: %w", err)
	}
	dbPath := filepath.Join(dir, "memory.db")

	// WAL allows a reader alongside the single writer.
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS notes (
		note_id    TEXT PRIMARY KEY,
		content    TEXT NOT NULL,
		tags       TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		embedding  BLOB,
		dim        INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_notes_created ON notes(created_at);
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	kw, err := NewKeywordIndex(dbPath)
	if err != nil {
		db.Close()
		return nil, err
	}

	if embedder == nil {
		embedder = NewEmbedderFromEnv()
	}

	return &Store{db: db, keyword: kw, embedder: embedder}, nil
}

// Close releases the database and index.
func (s *Store) Close() error {
	kerr := s.keyword.Close()
	derr := s.db.Close()
	if kerr != nil {
		return kerr
	}
	return derr
}

// Remember stores a note, embedding it for later similarity recall. An
// embedding failure degrades to keyword-only recall for that note.
func (s *Store) Remember(ctx context.Context, content string, tags []string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("cannot remember empty content")
	}

	id := uuid.NewString()

	var embedding []byte
	dim := 0
	if vec, d, err := s.embedder.Embed(ctx, content); err == nil {
		embedding = vec
		dim = d
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notes (note_id, content, tags, created_at, embedding, dim) VALUES (?, ?, ?, ?, ?, ?)`,
		id, content, strings.Join(tags, ","), time.Now().Unix(), embedding, dim,
	)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}

	if err := s.keyword.IndexNote(id, content, tags); err != nil {
		return fmt.Errorf("index note: %w", err)
	}
	return nil
}

// Forget removes a note.
func (s *Store) Forget(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE note_id = ?`, id); err != nil {
		return err
	}
	return s.keyword.DeleteNote(id)
}

// scored pairs a note ID with its combined relevance.
type scored struct {
	id    string
	score float64
}

// Recall returns up to limit note contents relevant to query, ranked by a
// blend of keyword and vector similarity.
func (s *Store) Recall(ctx context.Context, query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 3
	}

	scores := make(map[string]float64)

	// Keyword leg. Bleve scores are unbounded, so normalize by the top hit.
	if hits, err := s.keyword.Search(query, limit*4); err == nil && len(hits) > 0 {
		top := hits[0].Score
		for _, h := range hits {
			if top > 0 {
				scores[h.NoteID] += h.Score / top
			}
		}
	}

	// Vector leg: brute-force cosine over stored embeddings. Note counts stay
	// small enough that a scan beats maintaining an ANN structure.
	if qvec, _, err := s.embedder.Embed(ctx, query); err == nil {
		queryVec, derr := DecodeVector(qvec)
		if derr == nil && !isZeroVector(queryVec) {
			rows, qerr := s.db.QueryContext(ctx, `SELECT note_id, embedding FROM notes WHERE dim > 0`)
			if qerr == nil {
				defer rows.Close()
				for rows.Next() {
					var id string
					var blob []byte
					if rows.Scan(&id, &blob) != nil {
						continue
					}
					vec, verr := DecodeVector(blob)
					if verr != nil {
						continue
					}
					if sim := cosineSimilarity(queryVec, vec); sim > 0 {
						scores[id] += sim
					}
				}
			}
		}
	}

	ranked := make([]scored, 0, len(scores))
	for id, sc := range scores {
		ranked = append(ranked, scored{id: id, score: sc})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]string, 0, len(ranked))
	for _, r := range ranked {
		var content string
		if err := s.db.QueryRowContext(ctx, `SELECT content FROM notes WHERE note_id = ?`, r.id).Scan(&content); err == nil {
			out = append(out, content)
		}
	}
	return out, nil
}

// Count returns the number of stored notes.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes`).Scan(&n)
	return n, err
}

func isZeroVector(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
