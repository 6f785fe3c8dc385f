package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/tieubaoca/docqa/config"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

type GeminiService struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
	logger    *slog.Logger
}

func NewGeminiService(ctx context.Context, apiKey, modelName string, temperature float32, logger *slog.Logger) (*GeminiService, error) {
	if apiKey == "" {
		return nil, config.ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	return &GeminiService{
		client:    client,
		model:     model,
		modelName: modelName,
		logger:    logger,
	}, nil
}

func (s *GeminiService) Provider() string { return config.ProviderGemini }

func (s *GeminiService) Model() string { return s.modelName }

func (s *GeminiService) Close() error {
	return s.client.Close()
}

func (s *GeminiService) Answer(ctx context.Context, prompt string) (string, error) {
	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", s.remoteError(ctx, err)
	}
	content := responseText(resp)
	if content == "" {
		return "", s.remoteError(ctx, errors.New("no response generated"))
	}
	s.logger.Debug("Gemini completion received",
		slog.String("model", s.modelName),
		slog.Int("candidates", len(resp.Candidates)))
	return content, nil
}

// responseText concatenates the text parts of every candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	return sb.String()
}

func (s *GeminiService) remoteError(ctx context.Context, err error) *RemoteServiceError {
	remoteErr := &RemoteServiceError{
		Provider: s.Provider(),
		Model:    s.modelName,
		Timeout:  errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded),
		Err:      err,
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		remoteErr.StatusCode = apiErr.Code
		if len(apiErr.Errors) > 0 {
			remoteErr.ErrorType = apiErr.Errors[0].Reason
		}
	}
	return remoteErr
}
