package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"weatherchat/internal/domain/entity"

	"github.com/rs/zerolog/log"
)

// OpenRouterClient talks to an OpenRouter-compatible chat-completions
// endpoint. It performs no retries; retry policy belongs to callers.
type OpenRouterClient struct {
	apiKey    string
	model     string
	baseURL   string
	siteURL   string
	siteTitle string
	client    *http.Client
}

func NewOpenRouterClient(apiKey, model, baseURL, siteURL, siteTitle string, timeout time.Duration) *OpenRouterClient {
	return &OpenRouterClient{
		apiKey:    apiKey,
		model:     model,
		baseURL:   strings.TrimRight(baseURL, "/"),
		siteURL:   siteURL,
		siteTitle: siteTitle,
		client:    &http.Client{Timeout: timeout},
	}
}

type chatCompletionRequest struct {
	Model       string           `json:"model"`
	Messages    []entity.Message `json:"messages"`
	MaxTokens   int              `json:"max_tokens"`
	Temperature float64          `json:"temperature"`
	TopP        float64          `json:"top_p"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message entity.Message `json:"message"`
	} `json:"choices"`
}

// Complete issues one chat-completions request and returns the first
// completion's text together with the raw provider payload. Failures are
// *entity.LLMError values; a 404 triggers one best-effort models-list
// call whose outcome lands in the error's Extra field.
func (c *OpenRouterClient) Complete(ctx context.Context, messages []entity.Message, params entity.Sampling) (string, json.RawMessage, error) {
	if c.apiKey == "" {
		return "", nil, &entity.LLMError{Kind: entity.LLMNotConfigured, Detail: "OPENROUTER_API_KEY not set"}
	}

	payload, err := json.Marshal(chatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
		TopP:        params.TopP,
	})
	if err != nil {
		return "", nil, &entity.LLMError{Kind: entity.LLMException, Detail: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", nil, &entity.LLMError{Kind: entity.LLMException, Detail: err.Error()}
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", nil, &entity.LLMError{Kind: entity.LLMException, Detail: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, &entity.LLMError{Kind: entity.LLMException, Detail: err.Error()}
	}

	if resp.StatusCode == http.StatusNotFound {
		return "", nil, &entity.LLMError{
			Kind:       entity.LLMModelNotFound,
			Detail:     string(body),
			StatusCode: resp.StatusCode,
			Extra:      c.listModels(ctx),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", nil, &entity.LLMError{
			Kind:       entity.LLMHTTPError,
			Detail:     string(body),
			StatusCode: resp.StatusCode,
		}
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", nil, &entity.LLMError{
			Kind:   entity.LLMMalformedResponse,
			Detail: "response missing completion text",
			Extra:  json.RawMessage(body),
		}
	}

	return parsed.Choices[0].Message.Content, json.RawMessage(body), nil
}

// listModels fetches the provider's model list to aid model_not_found
// diagnosis. Its own failure is swallowed into the returned snapshot so
// it can never mask the primary error.
func (c *OpenRouterClient) listModels(ctx context.Context) json.RawMessage {
	listCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(listCtx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return errSnapshot(err.Error())
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("models list diagnostic call failed")
		return errSnapshot(err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errSnapshot(err.Error())
	}
	if resp.StatusCode != http.StatusOK {
		return errSnapshot(fmt.Sprintf("models list failed: %d", resp.StatusCode))
	}
	return json.RawMessage(body)
}

func (c *OpenRouterClient) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("HTTP-Referer", c.siteURL)
	req.Header.Set("X-Title", c.siteTitle)
}

func errSnapshot(msg string) json.RawMessage {
	b, _ := json.Marshal(map[string]string{"error": msg})
	return b
}
