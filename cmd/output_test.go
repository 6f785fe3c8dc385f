package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/docqa/types"
)

func TestPrintIngestion(t *testing.T) {
	color.NoColor = true
	ingestion := &types.IngestionResult{
		Documents: []types.ExtractionResult{
			{Path: "a.pdf", Status: types.ExtractionStatusSuccess, Characters: 12, Preview: "slab\nthickness"},
			{Path: "dir/b.pdf", Status: types.ExtractionStatusFailed, Error: "failed to process dir/b.pdf: bad xref"},
		},
		DocumentCount:   2,
		SucceededCount:  1,
		FailedCount:     1,
		SkippedFiles:    3,
		TotalCharacters: 20,
	}

	var buf bytes.Buffer
	require.NoError(t, printIngestion(&buf, ingestion))
	out := buf.String()
	assert.Contains(t, out, "a.pdf")
	assert.Contains(t, out, "slab thickness")
	assert.Contains(t, out, "bad xref")
	assert.Contains(t, out, "1 of 2 documents processed, 1 failed, 3 other files skipped, 20 characters")
}

func TestPrintAnswer(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	printAnswer(&buf, &types.Answer{
		Question:          "How thick?",
		Answer:            "200mm",
		Provider:          "openai",
		Model:             "gpt-4o-mini",
		ContextCharacters: 5000,
		Truncated:         true,
		ElapsedSeconds:    1.5,
	})
	assert.Contains(t, buf.String(), "Q: How thick?")
	assert.Contains(t, buf.String(), "200mm")
	assert.Contains(t, buf.String(), "context truncated")

	buf.Reset()
	printAnswer(&buf, &types.Answer{Question: "How thick?", Warning: "nothing to analyze"})
	assert.Contains(t, buf.String(), "nothing to analyze")
	assert.NotContains(t, buf.String(), "Q:")
}

func TestOneLine(t *testing.T) {
	assert.Equal(t, "a b c", oneLine(" a\n b\tc "))
	long := oneLine(strings.Repeat("x", 100))
	assert.Equal(t, previewWidth+1, len([]rune(long)))
	assert.True(t, strings.HasSuffix(long, "…"))
}
