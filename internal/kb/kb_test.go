package kb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedDefaults(t *testing.T) {
	knowledgeBase, err := Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, knowledgeBase.Entries())

	topics := make(map[string]bool)
	for _, entry := range knowledgeBase.Entries() {
		topics[entry.Topic] = true
		assert.NotEmpty(t, entry.Keywords, "topic %s", entry.Topic)
		assert.NotEmpty(t, entry.Answer, "topic %s", entry.Topic)
		assert.Greater(t, entry.Confidence, 0.0, "topic %s", entry.Topic)
	}
	assert.True(t, topics["hours"])
	assert.True(t, topics["location"])
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.json")
	data := `[{"topic":"t","keywords":["alpha"],"answer":"a","confidence":1}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	knowledgeBase, err := Load(path)
	require.NoError(t, err)
	require.Len(t, knowledgeBase.Entries(), 1)
	assert.Equal(t, "t", knowledgeBase.Entries()[0].Topic)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("/nonexistent/kb.json")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestSearchReturnsBestEntry(t *testing.T) {
	knowledgeBase, err := Load("")
	require.NoError(t, err)

	result, ok := knowledgeBase.Search("What are your office hours?")
	require.True(t, ok)
	assert.Equal(t, "hours", result.Entry.Topic)
	assert.Greater(t, result.Score, 0.0)
}

func TestSearchBelowThresholdIsMiss(t *testing.T) {
	knowledgeBase, err := Load("")
	require.NoError(t, err)

	_, ok := knowledgeBase.Search("tell me about quantum chromodynamics")
	assert.False(t, ok)
}
