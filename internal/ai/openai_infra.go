package ai

import (
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// NewOpenAIClient builds a go-openai client for any OpenAI-compatible API
// (Groq by default).
func NewOpenAIClient(apiKey, baseURL string, timeout time.Duration) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return openai.NewClientWithConfig(cfg)
}
