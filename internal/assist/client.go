// Package assist runs the natural-language command session: classify the
// user's text, offer the model a narrowed tool set, execute query tools
// inline, and stage confirmable mutations for explicit approval.
package assist

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	apperrors "folio/internal/errors"
)

// ChatClient is the slice of the OpenAI client the session needs. Tests
// substitute a scripted fake.
type ChatClient interface {
	Chat(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIChatClient wraps the go-openai client with endpoint override support
// and error mapping.
type OpenAIChatClient struct {
	client *openai.Client
}

// NewOpenAIChatClient creates a chat client. baseURL overrides the endpoint
// for OpenAI-compatible local servers; empty means the public API.
func NewOpenAIChatClient(apiKey, baseURL string) *OpenAIChatClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &OpenAIChatClient{client: openai.NewClientWithConfig(cfg)}
}

// Chat sends one chat completion request, mapping transport failures onto
// the LLMError taxonomy.
func (c *OpenAIChatClient) Chat(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return resp, mapChatError(err)
	}
	if len(resp.Choices) == 0 {
		return resp, apperrors.NewLLMError(http.StatusBadGateway, "empty completion", apperrors.ErrMalformedResponse)
	}
	return resp, nil
}

func mapChatError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusNotFound:
			return apperrors.NewLLMError(http.StatusNotFound, "model not found", apperrors.ErrModelNotFound)
		case http.StatusUnauthorized, http.StatusForbidden:
			return apperrors.NewLLMError(apiErr.HTTPStatusCode, "authentication failed", err)
		default:
			return apperrors.NewLLMError(http.StatusBadGateway, apiErr.Message, err)
		}
	}
	return apperrors.NewLLMError(http.StatusServiceUnavailable, "endpoint unreachable", apperrors.ErrLLMUnavailable)
}
