package service

import (
	"strings"

	"github.com/tieubaoca/docqa/types"
)

const EmptyCorpusWarning = "No text was extracted. The documents may contain scanned images only."

// BuildCorpus concatenates the documents in order, each under a heading
// carrying its filename.
func BuildCorpus(docs []types.ExtractedDocument) string {
	var sb strings.Builder
	for _, doc := range docs {
		sb.WriteString("\n\n# ")
		sb.WriteString(doc.Filename)
		sb.WriteString("\n")
		sb.WriteString(doc.Text)
	}
	return sb.String()
}

// IsEmptyCorpus reports whether none of the documents carries usable text.
// Filename headings alone do not count as text.
func IsEmptyCorpus(docs []types.ExtractedDocument) bool {
	for _, doc := range docs {
		if strings.TrimSpace(doc.Text) != "" {
			return false
		}
	}
	return true
}
