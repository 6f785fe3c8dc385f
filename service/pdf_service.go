package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DocumentConverter turns a single document file into markdown-like text.
type DocumentConverter interface {
	Convert(ctx context.Context, path string) (string, error)
}

// PDFService extracts the embedded text layer of PDF files.
type PDFService struct {
	logger *slog.Logger
}

func NewPDFService(logger *slog.Logger) *PDFService {
	return &PDFService{
		logger: logger,
	}
}

// Convert reads every page of the PDF at filePath and joins the cleaned page
// texts with blank lines. Pages that cannot be decoded are skipped; a file
// that cannot be opened as a PDF is an error.
func (s *PDFService) Convert(ctx context.Context, filePath string) (text string, err error) {
	// The parser panics on some malformed object graphs.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	f, reader, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create PDF reader: %w", err)
	}
	defer f.Close()

	totalPages := reader.NumPage()
	s.logger.Debug("Starting PDF text extraction",
		slog.String("file", filePath),
		slog.Int("total_pages", totalPages))

	pages := make([]string, 0, totalPages)
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			s.logger.Warn("Null page encountered",
				slog.String("file", filePath),
				slog.Int("page_number", pageNum))
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			s.logger.Warn("Failed to extract text from page",
				slog.String("file", filePath),
				slog.Int("page_number", pageNum),
				slog.String("error", err.Error()))
			continue
		}
		pageText = cleanText(pageText)
		if pageText == "" {
			continue
		}
		pages = append(pages, pageText)
	}

	if totalPages == 0 {
		return "", errors.New("PDF has no pages")
	}
	return strings.Join(pages, "\n\n"), nil
}

var textReplacer = strings.NewReplacer(
	"\u0000", "", // Null character
	"\ufffd", "", // Unicode replacement character
	"\u001b", "", // Escape character
	"\r", "", // Carriage return
	"\f", "\n", // Form feed to newline
	"\uf8ff", "", // Apple logo
	"\u2021", "", // Double dagger
	"\u2020", "", // Dagger
)

func cleanText(text string) string {
	cleaned := textReplacer.Replace(text)
	// Collapse runs of spaces left by column layout.
	for strings.Contains(cleaned, "  ") {
		cleaned = strings.ReplaceAll(cleaned, "  ", " ")
	}
	return strings.TrimSpace(cleaned)
}
