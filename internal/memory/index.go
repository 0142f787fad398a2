package memory

import (
	"fmt"
	"log"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// KeywordResult is one keyword-search hit.
type KeywordResult struct {
	NoteID string
	Score  float64
}

// KeywordIndex provides BM25 keyword search over stored notes.
type KeywordIndex struct {
	index bleve.Index
	path  string
}

// NewKeywordIndex creates or opens the keyword index next to the note
// database. A corrupted index is deleted and recreated.
func NewKeywordIndex(dbPath string) (*KeywordIndex, error) {
	indexPath := dbPath + ".bleve"

	index, err := bleve.Open(indexPath)
	if err == bleve.ErrorIndexPathDoesNotExist {
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to create keyword index: %w", err)
		}
	} else if err != nil {
		log.Printf("keyword index appears corrupted (%v), recreating", err)
		if index != nil {
			index.Close()
		}
		if rmErr := os.RemoveAll(indexPath); rmErr != nil {
			return nil, fmt.Errorf("failed to remove corrupted keyword index: %w", rmErr)
		}
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to recreate keyword index: %w", err)
		}
	}

	return &KeywordIndex{index: index, path: indexPath}, nil
}

// buildIndexMapping creates the index mapping for notes.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	noteMapping := bleve.NewDocumentMapping()

	noteIDField := bleve.NewTextFieldMapping()
	noteIDField.Analyzer = keyword.Name
	noteIDField.Store = true
	noteIDField.Index = true
	noteMapping.AddFieldMappingsAt("note_id", noteIDField)

	contentField := bleve.NewTextFieldMapping()
	contentField.Analyzer = standard.Name
	contentField.Store = false
	contentField.Index = true
	noteMapping.AddFieldMappingsAt("content", contentField)

	tagsField := bleve.NewTextFieldMapping()
	tagsField.Analyzer = keyword.Name
	tagsField.Store = false
	tagsField.Index = true
	noteMapping.AddFieldMappingsAt("tags", tagsField)

	indexMapping.DefaultMapping = noteMapping
	return indexMapping
}

// IndexNote adds or replaces a note in the keyword index.
func (k *KeywordIndex) IndexNote(id, content string, tags []string) error {
	doc := map[string]any{
		"note_id": id,
		"content": content,
		"tags":    tags,
	}
	return k.index.Index(id, doc)
}

// DeleteNote removes a note from the keyword index.
func (k *KeywordIndex) DeleteNote(id string) error {
	return k.index.Delete(id)
}

// Search returns the top k keyword matches for query.
func (k *KeywordIndex) Search(query string, limit int) ([]KeywordResult, error) {
	q := bleve.NewMatchQuery(query)
	q.SetField("content")

	searchRequest := bleve.NewSearchRequest(q)
	searchRequest.Size = limit

	searchResult, err := k.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}

	results := make([]KeywordResult, 0, len(searchResult.Hits))
	for _, hit := range searchResult.Hits {
		results = append(results, KeywordResult{NoteID: hit.ID, Score: hit.Score})
	}
	return results, nil
}

// Close closes the keyword index.
func (k *KeywordIndex) Close() error {
	return k.index.Close()
}
