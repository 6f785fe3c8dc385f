package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"code.sajari.com/docconv/v2"
)

// DocxService extracts the body text of Word (.docx) documents.
type DocxService struct {
	logger *slog.Logger
}

func NewDocxService(logger *slog.Logger) *DocxService {
	return &DocxService{logger: logger}
}

func (s *DocxService) Convert(ctx context.Context, filePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	body, _, err := docconv.ConvertDocx(f)
	if err != nil {
		return "", fmt.Errorf("failed to convert Word document: %w", err)
	}
	s.logger.Debug("Extracted text from Word document",
		slog.String("file", filePath),
		slog.Int("text_length", len(body)))
	return cleanText(body), nil
}
