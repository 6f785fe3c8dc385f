package types

import "time"

const (
	ExtractionStatusSuccess = "success"
	ExtractionStatusFailed  = "failed"
)

// ExtractedDocument is the text of one document found in an uploaded archive.
type ExtractedDocument struct {
	Filename string // Base name of the file
	Path     string // Slash-separated path relative to the archive root
	Text     string // Markdown-like text produced by the converter
}

// ExtractionResult is the outcome of converting a single document.
// Exactly one of Text (on success) or Error (on failure) is meaningful.
type ExtractionResult struct {
	Filename   string `json:"filename"`
	Path       string `json:"path"`
	Status     string `json:"status"`
	Preview    string `json:"preview,omitempty"`
	Characters int    `json:"characters"`
	Cached     bool   `json:"cached"`
	Error      string `json:"error,omitempty"`

	Text string `json:"-"`
	Err  error  `json:"-"`
}

// Succeeded reports whether the document produced text.
func (r ExtractionResult) Succeeded() bool {
	return r.Status == ExtractionStatusSuccess
}

// Document returns the extracted document for a successful result.
func (r ExtractionResult) Document() ExtractedDocument {
	return ExtractedDocument{
		Filename: r.Filename,
		Path:     r.Path,
		Text:     r.Text,
	}
}

// IngestionResult is built once per uploaded archive and threaded through
// extraction, aggregation and question answering.
type IngestionResult struct {
	Documents       []ExtractionResult `json:"documents"`
	DocumentCount   int                `json:"document_count"`
	SucceededCount  int                `json:"succeeded_count"`
	FailedCount     int                `json:"failed_count"`
	SkippedFiles    int                `json:"skipped_files"`
	TotalCharacters int                `json:"total_characters"`
	EmptyCorpus     bool               `json:"empty_corpus"`
	Warning         string             `json:"warning,omitempty"`

	Corpus string `json:"-"`
}

// Answer is the reply of the hosted model to one question.
type Answer struct {
	Question          string        `json:"question"`
	Answer            string        `json:"answer"`
	AnswerHTML        string        `json:"answer_html,omitempty"`
	Provider          string        `json:"provider,omitempty"`
	Model             string        `json:"model,omitempty"`
	ContextCharacters int           `json:"context_characters"`
	Truncated         bool          `json:"truncated"`
	Elapsed           time.Duration `json:"-"`
	ElapsedSeconds    float64       `json:"elapsed_seconds"`
	Warning           string        `json:"warning,omitempty"`
}

// DocumentServiceConfig contains configuration options for document processing
type DocumentServiceConfig struct {
	Extensions      []string // Recognized document extensions, e.g. ".pdf"
	PreviewChars    int      // Length of the per-document preview
	MaxContextChars int      // Character budget of the context sent to the model
	Instruction     string   // Preamble placed before the context in the prompt
}
