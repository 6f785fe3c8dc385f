package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tieubaoca/docqa/config"
	"github.com/tieubaoca/docqa/service"
	"github.com/tieubaoca/docqa/types"
)

// newDocumentService builds the pipeline from cfg. The returned cleanup
// releases the model client.
func newDocumentService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*service.DocumentService, func(), error) {
	converters := make(map[string]service.DocumentConverter, len(cfg.Extract.Extensions))
	for _, ext := range cfg.Extract.Extensions {
		switch ext {
		case ".pdf":
			converters[ext] = service.NewPDFService(logger)
		case ".docx":
			converters[ext] = service.NewDocxService(logger)
		default:
			return nil, nil, fmt.Errorf("no converter for extension %q", ext)
		}
	}

	aiService, cleanup, err := newAIService(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	archiveService := service.NewArchiveService(service.ArchiveServiceConfig{
		ScratchDir:           cfg.ScratchDir,
		MaxEntries:           cfg.Archive.MaxEntries,
		MaxUncompressedBytes: cfg.Archive.MaxUncompressedBytes,
	}, logger)
	cache := service.NewExtractionCache(cfg.Cache.Size, cfg.Cache.TTL)
	extractService := service.NewExtractService(converters, cache, cfg.Extract.PreviewChars, logger)

	documentService := service.NewDocumentService(
		archiveService,
		extractService,
		aiService,
		types.DocumentServiceConfig{
			Extensions:      extractService.Extensions(),
			PreviewChars:    cfg.Extract.PreviewChars,
			MaxContextChars: cfg.QA.MaxContextChars,
			Instruction:     cfg.QA.Instruction,
		},
		cfg.QA.Timeout,
		logger,
	)
	return documentService, cleanup, nil
}

func newAIService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.AIService, func(), error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		gemini, err := service.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.Model, cfg.QA.Temperature, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return gemini, func() {
			if err := gemini.Close(); err != nil {
				logger.Warn("Failed to close Gemini client", slog.String("error", err.Error()))
			}
		}, nil
	default:
		openAI := service.NewOpenAIService(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.Model, cfg.QA.Temperature, logger)
		return openAI, func() {}, nil
	}
}
