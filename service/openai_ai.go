package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/tieubaoca/docqa/config"
)

type OpenAIService struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *slog.Logger
}

func NewOpenAIService(baseURL string, apiKey, model string, temperature float32, logger *slog.Logger) *OpenAIService {
	return NewOpenAIServiceWithClient(baseURL, apiKey, model, temperature, nil, logger)
}

// NewOpenAIServiceWithClient lets callers supply the HTTP client used for the API calls.
func NewOpenAIServiceWithClient(baseURL string, apiKey, model string, temperature float32, httpClient *http.Client, logger *slog.Logger) *OpenAIService {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &OpenAIService{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: temperature,
		logger:      logger,
	}
}

func (s *OpenAIService) Provider() string { return config.ProviderOpenAI }

func (s *OpenAIService) Model() string { return s.model }

// Answer sends the prompt as a single user message and returns the reply text.
func (s *OpenAIService) Answer(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       s.model,
			Temperature: s.temperature,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
		},
	)
	if err != nil {
		return "", s.remoteError(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return "", s.remoteError(ctx, errors.New("no response generated"))
	}

	s.logger.Debug("OpenAI completion received",
		slog.String("model", s.model),
		slog.Int("prompt_tokens", resp.Usage.PromptTokens),
		slog.Int("completion_tokens", resp.Usage.CompletionTokens),
		slog.String("finish_reason", string(resp.Choices[0].FinishReason)))
	return resp.Choices[0].Message.Content, nil
}

func (s *OpenAIService) remoteError(ctx context.Context, err error) *RemoteServiceError {
	remoteErr := &RemoteServiceError{
		Provider: s.Provider(),
		Model:    s.model,
		Timeout:  errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded),
		Err:      err,
	}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		remoteErr.StatusCode = apiErr.HTTPStatusCode
		remoteErr.ErrorType = apiErr.Type
	case errors.As(err, &reqErr):
		remoteErr.StatusCode = reqErr.HTTPStatusCode
	}
	return remoteErr
}
