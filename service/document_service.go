package service

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tieubaoca/docqa/types"
)

const NoContextWarning = "You are asking a question, but no document text is available to analyze."

// DocumentService runs the upload pipeline: unpack, extract, aggregate, and
// answers questions against the resulting corpus.
type DocumentService struct {
	archive   *ArchiveService
	extractor *ExtractService
	ai        AIService
	config    types.DocumentServiceConfig
	timeout   time.Duration
	logger    *slog.Logger
}

func NewDocumentService(
	archive *ArchiveService,
	extractor *ExtractService,
	ai AIService,
	config types.DocumentServiceConfig,
	timeout time.Duration,
	logger *slog.Logger,
) *DocumentService {
	return &DocumentService{
		archive:   archive,
		extractor: extractor,
		ai:        ai,
		config:    config,
		timeout:   timeout,
		logger:    logger,
	}
}

// AI exposes the configured model client.
func (s *DocumentService) AI() AIService {
	return s.ai
}

// Process expands the archive, extracts every recognized document and builds
// the corpus. The scratch directory is removed before Process returns.
// onResult, when set, receives each per-file result as it is produced.
func (s *DocumentService) Process(ctx context.Context, archive []byte, onResult func(types.ExtractionResult)) (*types.IngestionResult, error) {
	scratch, err := s.archive.Unpack(archive)
	if err != nil {
		s.logger.Error("Failed to unpack archive", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := scratch.Close(); err != nil {
			s.logger.Warn("Failed to remove scratch directory",
				slog.String("dir", scratch.Dir()),
				slog.String("error", err.Error()))
		}
	}()

	results, skipped, err := s.extractor.ExtractTree(ctx, scratch.Root, onResult)
	if err != nil {
		return nil, err
	}

	ingestion := summarize(results, skipped)
	s.logger.Info("Archive processed",
		slog.Int("documents", ingestion.DocumentCount),
		slog.Int("succeeded", ingestion.SucceededCount),
		slog.Int("failed", ingestion.FailedCount),
		slog.Int("skipped_files", ingestion.SkippedFiles),
		slog.Int("total_characters", ingestion.TotalCharacters))
	if ingestion.EmptyCorpus {
		s.logger.Warn(EmptyCorpusWarning)
	}
	return ingestion, nil
}

func summarize(results []types.ExtractionResult, skipped int) *types.IngestionResult {
	ingestion := &types.IngestionResult{
		Documents:     results,
		DocumentCount: len(results),
		SkippedFiles:  skipped,
	}
	docs := make([]types.ExtractedDocument, 0, len(results))
	for _, result := range results {
		if !result.Succeeded() {
			ingestion.FailedCount++
			continue
		}
		ingestion.SucceededCount++
		docs = append(docs, result.Document())
	}
	if ingestion.Documents == nil {
		ingestion.Documents = []types.ExtractionResult{}
	}

	ingestion.Corpus = BuildCorpus(docs)
	ingestion.TotalCharacters = utf8.RuneCountInString(ingestion.Corpus)
	if IsEmptyCorpus(docs) {
		ingestion.EmptyCorpus = true
		ingestion.Warning = EmptyCorpusWarning
	}
	return ingestion
}

// Ask answers question from the corpus of ingestion with one model call.
// With no document text available it returns a warning instead of calling the
// model. Model failures are returned as *RemoteServiceError.
func (s *DocumentService) Ask(ctx context.Context, ingestion *types.IngestionResult, question string) (*types.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	answer := &types.Answer{
		Question: question,
		Provider: s.ai.Provider(),
		Model:    s.ai.Model(),
	}
	if ingestion == nil || ingestion.EmptyCorpus || strings.TrimSpace(ingestion.Corpus) == "" {
		answer.Warning = NoContextWarning
		return answer, nil
	}

	docContext := TruncateContext(ingestion.Corpus, s.config.MaxContextChars)
	answer.ContextCharacters = utf8.RuneCountInString(docContext)
	answer.Truncated = len(docContext) < len(ingestion.Corpus)

	prompt, err := BuildPrompt(s.config.Instruction, docContext, question)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.ai.Answer(callCtx, prompt)
	answer.Elapsed = time.Since(start)
	answer.ElapsedSeconds = answer.Elapsed.Seconds()
	if err != nil {
		remoteErr := asRemoteError(callCtx, s.ai, err)
		s.logger.Error("Model call failed",
			slog.String("provider", remoteErr.Provider),
			slog.String("model", remoteErr.Model),
			slog.Bool("timeout", remoteErr.Timeout),
			slog.Duration("elapsed", answer.Elapsed),
			slog.String("error", err.Error()))
		return nil, remoteErr
	}

	answer.Answer = text
	s.logger.Info("Question answered",
		slog.String("provider", answer.Provider),
		slog.Int("context_characters", answer.ContextCharacters),
		slog.Bool("truncated", answer.Truncated),
		slog.Duration("elapsed", answer.Elapsed))
	return answer, nil
}

// asRemoteError guarantees every model failure surfaces as *RemoteServiceError.
func asRemoteError(ctx context.Context, ai AIService, err error) *RemoteServiceError {
	if remoteErr, ok := err.(*RemoteServiceError); ok {
		return remoteErr
	}
	return &RemoteServiceError{
		Provider: ai.Provider(),
		Model:    ai.Model(),
		Timeout:  ctx.Err() == context.DeadlineExceeded,
		Err:      err,
	}
}
