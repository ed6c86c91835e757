package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const anthropicVersion = "2023-06-01"

// AnthropicProvider calls the Anthropic /v1/messages endpoint.
type AnthropicProvider struct {
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

// NewAnthropicProvider creates a provider targeting the Anthropic Messages API.
func NewAnthropicProvider(baseURL, apiKey, model string, maxTokens int, temperature float64, httpClient *http.Client) *AnthropicProvider {
	return &AnthropicProvider{
		baseURL:     baseURL,
		apiKey:      apiKey,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		httpClient:  httpClient,
	}
}

type messagesRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends prompt as a single user message and returns the text blocks
// of the reply joined together. The text is returned as-is; callers parse it.
func (p *AnthropicProvider) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := messagesRequest{
		Model:       p.model,
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
	}

	respBytes, err := postJSON(ctx, p.httpClient, p.baseURL+"/messages", map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": anthropicVersion,
	}, reqBody)
	if err != nil {
		return "", err
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(respBytes, &msgResp); err != nil {
		return "", fmt.Errorf("parse llm response: %w", err)
	}

	if msgResp.Error != nil {
		return "", fmt.Errorf("llm error (%s): %s", msgResp.Error.Type, msgResp.Error.Message)
	}

	var sb strings.Builder
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("llm returned no text content")
	}
	return sb.String(), nil
}
