// Package perplexity adapts the Perplexity chat completions API through an
// OpenAI-compatible client.
package perplexity

import (
	"context"
	"errors"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"toolbridge/internal/format"
	"toolbridge/internal/tool"
	"toolbridge/internal/toolerr"
)

// Source names the upstream service in results and error messages.
const Source = "Perplexity AI"

const (
	defaultBaseURL = "https://api.perplexity.ai"
	model          = "sonar"
)

// Service issues Perplexity chat completions for one configured key.
type Service struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewService builds the service. An empty key turns every call into a
// Configuration error.
func NewService(apiKey string, httpClient *http.Client) *Service {
	return &Service{
		apiKey:     apiKey,
		httpClient: httpClient,
		baseURL:    defaultBaseURL,
	}
}

// SetBaseURL points the service at a different endpoint, used by tests.
func (s *Service) SetBaseURL(u string) { s.baseURL = u }

func (s *Service) newClient() *openai.Client {
	config := openai.DefaultConfig(s.apiKey)
	config.BaseURL = s.baseURL
	if s.httpClient != nil {
		config.HTTPClient = s.httpClient
	}
	return openai.NewClientWithConfig(config)
}

func (s *Service) ask(ctx context.Context, args tool.Args) (string, error) {
	if s.apiKey == "" {
		return "", toolerr.Configurationf("Perplexity API key is not configured; set PERPLEXITY_API_KEY")
	}
	query := args.String("query")

	resp, err := s.newClient().CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
	})
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", toolerr.New(toolerr.Upstream, "upstream returned no choices")
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		answer = "No response"
	}
	return format.Truncate(answer, "Ask a narrower question."), nil
}

// classify maps go-openai failures onto the tool error taxonomy.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return toolerr.FromStatus(apiErr.HTTPStatusCode, []int{http.StatusTooManyRequests})
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode > 0 {
			return toolerr.FromStatus(reqErr.HTTPStatusCode, []int{http.StatusTooManyRequests})
		}
		return toolerr.FromTransport(err)
	}
	return toolerr.FromTransport(err)
}

// Tools returns the tool definitions for this integration.
func (s *Service) Tools() []*tool.Definition {
	return []*tool.Definition{
		{
			Name:        "perplexity_ask",
			Description: "Ask Perplexity AI a question and get a web-grounded answer.",
			Source:      Source,
			ReadOnly:    true,
			Schema: tool.Schema{
				"query": {Type: tool.TypeString, Description: "The question to ask", Required: true, MinLen: 1},
			},
			Handler: s.ask,
		},
	}
}
