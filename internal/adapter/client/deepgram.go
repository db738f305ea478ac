package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"weatherchat/internal/domain/entity"
)

// DeepgramClient wraps the Deepgram pre-recorded transcription endpoint.
type DeepgramClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewDeepgramClient(apiKey, baseURL string, timeout time.Duration) *DeepgramClient {
	return &DeepgramClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type deepgramResponse struct {
	Results struct {
		Language string `json:"language"`
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
				Language   string `json:"language"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
	Text       string `json:"text"`
	Transcript string `json:"transcript"`
}

// Transcribe submits audio bytes and returns the first alternative's
// transcript. An empty or "auto" language asks Deepgram to detect it;
// anything starting with "ja" maps to Japanese, everything else to en-US.
func (c *DeepgramClient) Transcribe(ctx context.Context, audio []byte, language string) (*entity.Transcript, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("DEEPGRAM_API_KEY not configured")
	}

	q := url.Values{}
	q.Set("model", "general")
	q.Set("punctuate", "true")
	lang := strings.ToLower(strings.TrimSpace(language))
	switch {
	case lang == "" || lang == "auto":
		q.Set("detect_language", "true")
	case strings.HasPrefix(lang, "ja"):
		q.Set("language", "ja")
	default:
		q.Set("language", "en-US")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"?"+q.Encode(), bytes.NewReader(audio))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("deepgram status %d: %s", resp.StatusCode, string(body))
	}

	var parsed deepgramResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("deepgram response: %w", err)
	}

	out := &entity.Transcript{Raw: json.RawMessage(body), Language: parsed.Results.Language}
	if chans := parsed.Results.Channels; len(chans) > 0 && len(chans[0].Alternatives) > 0 {
		alt := chans[0].Alternatives[0]
		out.Text = alt.Transcript
		if alt.Language != "" {
			out.Language = alt.Language
		}
	}
	if out.Text == "" {
		// some response shapes carry the transcript at the top level
		if parsed.Text != "" {
			out.Text = parsed.Text
		} else {
			out.Text = parsed.Transcript
		}
	}
	return out, nil
}
