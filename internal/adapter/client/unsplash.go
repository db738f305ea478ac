package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"weatherchat/internal/domain/entity"

	"github.com/rs/zerolog/log"
)

// UnsplashClient runs image searches against the Unsplash photo API.
// Calls are spaced by a minimum delay to respect the provider's rate
// limits; the client is safe for concurrent use.
type UnsplashClient struct {
	accessKey string
	searchURL string
	minDelay  time.Duration
	client    *http.Client

	mu       sync.Mutex
	lastCall time.Time
}

func NewUnsplashClient(accessKey, searchURL string, minDelay, timeout time.Duration) *UnsplashClient {
	return &UnsplashClient{
		accessKey: accessKey,
		searchURL: searchURL,
		minDelay:  minDelay,
		client:    &http.Client{Timeout: timeout},
	}
}

type unsplashSearchResponse struct {
	Total   int `json:"total"`
	Results []struct {
		ID   string `json:"id"`
		URLs struct {
			Thumb   string `json:"thumb"`
			Small   string `json:"small"`
			Regular string `json:"regular"`
			Full    string `json:"full"`
			Raw     string `json:"raw"`
		} `json:"urls"`
		Links struct {
			HTML string `json:"html"`
		} `json:"links"`
		User struct {
			Name     string `json:"name"`
			Username string `json:"username"`
		} `json:"user"`
	} `json:"results"`
}

// Search runs one query and returns the first result normalized to an
// entity.Image, or (nil, nil) when the query produced nothing usable.
func (c *UnsplashClient) Search(ctx context.Context, query string) (*entity.Image, error) {
	c.throttle()

	q := url.Values{}
	q.Set("query", query)
	q.Set("per_page", "1")
	q.Set("orientation", "landscape")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if c.accessKey != "" {
		req.Header.Set("Authorization", "Client-ID "+c.accessKey)
	}

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
		return nil, fmt.Errorf("unsplash status %d: %s", resp.StatusCode, string(body))
	}

	var parsed unsplashSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unsplash response: %w", err)
	}
	if len(parsed.Results) == 0 {
		return nil, nil
	}

	r := parsed.Results[0]
	thumb := firstNonEmpty(r.URLs.Thumb, r.URLs.Small, r.URLs.Regular)
	regular := firstNonEmpty(r.URLs.Regular, r.URLs.Full, r.URLs.Raw)
	if thumb == "" && regular == "" {
		log.Debug().Str("query", query).Msg("unsplash result missing url fields")
		return nil, nil
	}

	sourcePage := r.Links.HTML
	if r.ID != "" {
		sourcePage = "https://unsplash.com/photos/" + r.ID
	}

	var attribution string
	switch {
	case r.User.Name != "":
		attribution = r.User.Name + " (Unsplash)"
	case r.User.Username != "":
		attribution = "@" + r.User.Username + " (Unsplash)"
	}

	return &entity.Image{
		Thumbnail:   thumb,
		URL:         regular,
		SourcePage:  sourcePage,
		Attribution: attribution,
	}, nil
}

// throttle blocks until at least minDelay has passed since the previous
// provider call.
func (c *UnsplashClient) throttle() {
	c.mu.Lock()
	wait := c.minDelay - time.Since(c.lastCall)
	if wait > 0 {
		time.Sleep(wait)
	}
	c.lastCall = time.Now()
	c.mu.Unlock()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
