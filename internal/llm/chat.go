package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"wellness-planner/internal/config"
	"wellness-planner/internal/shared"
)

const (
	groqBaseURL   = "https://api.groq.com/openai/v1"
	groqModel     = "llama-3.3-70b-versatile"
	openAIBaseURL = "https://api.openai.com/v1"
	openAIModel   = "gpt-4o-mini"
)

// ChatConfig configures an OpenAI-compatible chat completions client.
type ChatConfig struct {
	Name        string
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// ChatClient talks to any OpenAI-compatible /chat/completions endpoint.
type ChatClient struct {
	cfg        ChatConfig
	httpClient *http.Client
}

// NewChatClient creates a chat completions client.
func NewChatClient(cfg ChatConfig) *ChatClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Name == "" {
		cfg.Name = "chat"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &ChatClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// NewGroqClient creates a new Groq API client.
func NewGroqClient(cfg *config.Config, temperature float64) *ChatClient {
	model := cfg.LLMModel
	if model == "" {
		model = groqModel
	}
	return NewChatClient(ChatConfig{
		Name:        "groq",
		BaseURL:     groqBaseURL,
		APIKey:      cfg.GroqAPIKey,
		Model:       model,
		Temperature: temperature,
	})
}

// NewOpenAIClient creates a new OpenAI API client.
func NewOpenAIClient(cfg *config.Config, temperature float64) *ChatClient {
	model := cfg.LLMModel
	if model == "" {
		model = openAIModel
	}
	return NewChatClient(ChatConfig{
		Name:        "openai",
		BaseURL:     openAIBaseURL,
		APIKey:      cfg.OpenAIAPIKey,
		Model:       model,
		Temperature: temperature,
	})
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// GenerateContent sends a prompt to the model and returns the generated text.
func (c *ChatClient) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	jsonBody, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a helpful wellness assistant. Always respond with valid JSON only."},
			{Role: "user", Content: prompt},
		},
		Temperature:    c.cfg.Temperature,
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return ContentResponse{}, fmt.Errorf("%s api error: status=%d body=%s", c.cfg.Name, resp.StatusCode, string(bodyBytes))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ContentResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(out.Choices) == 0 {
		return ContentResponse{}, fmt.Errorf("no content generated")
	}

	model := out.Model
	if model == "" {
		model = c.cfg.Model
	}

	return ContentResponse{
		Content: out.Choices[0].Message.Content,
		Usage: shared.TokenUsage{
			PromptTokens:     out.Usage.PromptTokens,
			CompletionTokens: out.Usage.CompletionTokens,
			TotalTokens:      out.Usage.TotalTokens,
			Model:            model,
		},
	}, nil
}
