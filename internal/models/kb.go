package models

// KnowledgeBaseEntry is a static, read-only topic record used by the
// information handler.  Entries are loaded once at process start and never
// mutated at runtime.
type KnowledgeBaseEntry struct {
	Topic      string   `json:"topic"`
	Keywords   []string `json:"keywords"`
	Answer     string   `json:"answer"`
	Confidence float64  `json:"confidence"`
}
