// Package webhook posts anticheat notices to Discord. Delivery is best
// effort: a handful of attempts, then the notice is dropped.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

const (
	maxAttempts    = 5
	embedColor     = 0x542CB8
	footerText     = "Akatsuki Anticheat"
	logoURL        = "https://akatsuki.pw/static/logos/logo.png"
	requestTimeout = 10 * time.Second
)

type embedField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type embedFooter struct {
	Text string `json:"text"`
}

type embedThumbnail struct {
	URL string `json:"url"`
}

type embed struct {
	Color     int            `json:"color"`
	Fields    []embedField   `json:"fields"`
	Footer    embedFooter    `json:"footer"`
	Thumbnail embedThumbnail `json:"thumbnail"`
}

type webhookPayload struct {
	Embeds []embed `json:"embeds"`
}

// Client posts to the two anticheat channels. Either URL may be empty,
// which disables that channel.
type Client struct {
	httpClient      *http.Client
	generalURL      string
	confidentialURL string
}

func NewClient(generalURL, confidentialURL string) *Client {
	return &Client{
		httpClient:      &http.Client{Timeout: requestTimeout},
		generalURL:      generalURL,
		confidentialURL: confidentialURL,
	}
}

// NotifyGeneral posts to the public anticheat channel.
func (c *Client) NotifyGeneral(ctx context.Context, message string) {
	slog.Warn("anticheat notice", "message", message)
	c.post(ctx, c.generalURL, message)
}

// NotifyConfidential posts to the staff-only anticheat channel.
func (c *Client) NotifyConfidential(ctx context.Context, message string) {
	slog.Warn("anticheat notice", "message", message)
	c.post(ctx, c.confidentialURL, message)
}

func (c *Client) post(ctx context.Context, webhookURL, message string) {
	if webhookURL == "" {
		return
	}

	body, err := json.Marshal(webhookPayload{
		Embeds: []embed{{
			Color:     embedColor,
			Fields:    []embedField{{Name: "** **", Value: message}},
			Footer:    embedFooter{Text: footerText},
			Thumbnail: embedThumbnail{URL: logoURL},
		}},
	})
	if err != nil {
		return
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
		if err != nil {
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			continue
		}
		resp.Body.Close()
		if resp.StatusCode < http.StatusMultipleChoices {
			return
		}
	}
	slog.Warn("anticheat webhook delivery failed", "attempts", maxAttempts)
}
