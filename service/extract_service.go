package service

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/tieubaoca/docqa/types"
)

// ExtractService converts every recognized document under a directory tree.
type ExtractService struct {
	converters   map[string]DocumentConverter
	cache        *ExtractionCache
	previewChars int
	logger       *slog.Logger
}

// NewExtractService registers one converter per lower-case extension (".pdf").
func NewExtractService(converters map[string]DocumentConverter, cache *ExtractionCache, previewChars int, logger *slog.Logger) *ExtractService {
	normalized := make(map[string]DocumentConverter, len(converters))
	for ext, conv := range converters {
		normalized[strings.ToLower(ext)] = conv
	}
	return &ExtractService{
		converters:   normalized,
		cache:        cache,
		previewChars: previewChars,
		logger:       logger,
	}
}

// Extensions lists the recognized extensions in sorted order.
func (s *ExtractService) Extensions() []string {
	exts := make([]string, 0, len(s.converters))
	for ext := range s.converters {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ExtractTree walks root, converts each recognized file in lexicographic order
// of its relative path and reports one result per file. onResult, when set, is
// called as soon as each result is known. Per-file failures are recorded in the
// result; only a failure to walk the tree or a cancelled ctx is returned as err.
func (s *ExtractService) ExtractTree(ctx context.Context, root string, onResult func(types.ExtractionResult)) ([]types.ExtractionResult, int, error) {
	paths, skipped, err := s.collect(root)
	if err != nil {
		return nil, 0, err
	}

	results := make([]types.ExtractionResult, 0, len(paths))
	for _, rel := range paths {
		if err := ctx.Err(); err != nil {
			return results, skipped, err
		}
		result := s.extractFile(ctx, root, rel)
		results = append(results, result)
		if onResult != nil {
			onResult(result)
		}
	}
	return results, skipped, nil
}

func (s *ExtractService) collect(root string) ([]string, int, error) {
	var paths []string
	skipped := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if _, ok := s.converters[strings.ToLower(filepath.Ext(d.Name()))]; !ok {
			skipped++
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	sort.Strings(paths)
	return paths, skipped, nil
}

func (s *ExtractService) extractFile(ctx context.Context, root, rel string) types.ExtractionResult {
	result := types.ExtractionResult{
		Filename: filepath.Base(filepath.FromSlash(rel)),
		Path:     rel,
	}
	fullPath := filepath.Join(root, filepath.FromSlash(rel))

	text, cached, err := s.convert(ctx, fullPath)
	if err != nil {
		extractErr := &DocumentExtractionError{Path: rel, Err: err}
		s.logger.Warn("Failed to process document",
			slog.String("path", rel),
			slog.String("error", err.Error()))
		result.Status = types.ExtractionStatusFailed
		result.Err = extractErr
		result.Error = extractErr.Error()
		return result
	}

	result.Status = types.ExtractionStatusSuccess
	result.Text = text
	result.Cached = cached
	result.Characters = utf8.RuneCountInString(text)
	result.Preview = Preview(text, s.previewChars)
	s.logger.Info("Processed document",
		slog.String("path", rel),
		slog.Int("characters", result.Characters),
		slog.Bool("cached", cached))
	return result
}

func (s *ExtractService) convert(ctx context.Context, path string) (string, bool, error) {
	converter, ok := s.converters[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", false, ErrUnsupportedInput
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, err
	}
	hash := ContentHash(data)
	if text, ok := s.cache.Get(hash); ok {
		return text, true, nil
	}
	text, err := converter.Convert(ctx, path)
	if err != nil {
		return "", false, err
	}
	s.cache.Add(hash, text)
	return text, false, nil
}

// Preview returns at most n runes of text; n <= 0 returns text unchanged.
func Preview(text string, n int) string {
	if n <= 0 {
		return text
	}
	return TruncateContext(text, n)
}
