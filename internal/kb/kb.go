// Package kb holds the static knowledge base used for information
// retrieval.  Entries are loaded once at process start, either from a JSON
// file or from the embedded defaults, and are immutable afterwards.
package kb

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"carechat/internal/models"
)

//go:embed entries.json
var defaultEntriesJSON []byte

// MinScore is the minimum weighted overlap score an entry must reach to be
// returned as a match.
const MinScore = 0.2

// KnowledgeBase is a read-only collection of topic entries.
type KnowledgeBase struct {
	entries []models.KnowledgeBaseEntry
}

// Load reads the knowledge base from the given JSON file.  An empty path
// loads the embedded default entries.
func Load(path string) (*KnowledgeBase, error) {
	data := defaultEntriesJSON
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read knowledge base file: %w", err)
		}
		data = fileData
	}

	var entries []models.KnowledgeBaseEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge base JSON: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("knowledge base contains no entries")
	}
	return &KnowledgeBase{entries: entries}, nil
}

// Entries returns the loaded entries in load order.
func (k *KnowledgeBase) Entries() []models.KnowledgeBaseEntry {
	return k.entries
}

// SearchResult is the best entry for a query together with its score.
type SearchResult struct {
	Entry models.KnowledgeBaseEntry
	Score float64
}

// Search scores every entry by keyword overlap with the message and returns
// the best one.  The raw score is
//
//	matched keywords / total keywords for the entry
//
// weighted by the entry's static confidence.  It returns ok=false when the
// best weighted score is below MinScore, which callers must treat as "no
// information available" rather than a low-quality match.
func (k *KnowledgeBase) Search(text string) (SearchResult, bool) {
	lowered := strings.ToLower(text)

	var best SearchResult
	for _, entry := range k.entries {
		matched := 0
		for _, kw := range entry.Keywords {
			if strings.Contains(lowered, strings.ToLower(kw)) {
				matched++
			}
		}
		if matched == 0 || len(entry.Keywords) == 0 {
			continue
		}
		score := float64(matched) / float64(len(entry.Keywords)) * entry.Confidence
		if score > best.Score {
			best = SearchResult{Entry: entry, Score: score}
		}
	}
	if best.Score < MinScore {
		return SearchResult{}, false
	}
	return best, true
}
