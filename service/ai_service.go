package service

import (
	"context"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"
)

// AIService answers a fully rendered prompt with one call to a hosted model.
type AIService interface {
	Answer(ctx context.Context, prompt string) (string, error)
	Provider() string
	Model() string
}

var promptTemplate = template.Must(template.New("prompt").Parse(
	"{{.Instruction}}\n\n{{.Context}}\n\nQuestion: {{.Question}}"))

type promptData struct {
	Instruction string
	Context     string
	Question    string
}

// BuildPrompt places the instruction, the document context and the question
// into the single prompt sent to the model.
func BuildPrompt(instruction, docContext, question string) (string, error) {
	var sb strings.Builder
	err := promptTemplate.Execute(&sb, promptData{
		Instruction: instruction,
		Context:     docContext,
		Question:    question,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return sb.String(), nil
}

// TruncateContext returns the longest prefix of corpus holding at most limit
// characters. limit <= 0 disables truncation.
func TruncateContext(corpus string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(corpus) <= limit {
		return corpus
	}
	count := 0
	for i := range corpus {
		if count == limit {
			return corpus[:i]
		}
		count++
	}
	return corpus
}
