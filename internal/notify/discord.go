package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/donaldgifford/vehicle-deal-checker/internal/metrics"
	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

const (
	colorGreen  = 0x2ECC71 // Excellent Deal
	colorYellow = 0xF1C40F // Good Deal
	colorOrange = 0xE67E22 // Fair Price
	colorRed    = 0xE74C3C // Overpriced
	colorGrey   = 0x95A5A6 // N/A
)

// Discord caps embed descriptions and field values.
const (
	maxDescription = 4096
	maxFieldValue  = 1024
)

// DiscordNotifier implements Notifier via Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordNotifier creates a new DiscordNotifier.
func NewDiscordNotifier(webhookURL string, opts ...DiscordOption) *DiscordNotifier {
	d := &DiscordNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DiscordOption configures a DiscordNotifier.
type DiscordOption func(*DiscordNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) DiscordOption {
	return func(d *DiscordNotifier) {
		d.client = c
	}
}

// discordWebhookPayload is the Discord webhook JSON structure.
type discordWebhookPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string              `json:"title"`
	URL         string              `json:"url,omitempty"`
	Color       int                 `json:"color"`
	Description string              `json:"description,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Footer      *discordFooter      `json:"footer,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordFooter struct {
	Text string `json:"text"`
}

// SendAlert sends a single alert as a Discord embed.
func (d *DiscordNotifier) SendAlert(ctx context.Context, alert *AlertPayload) error {
	start := time.Now()
	defer func() {
		metrics.NotificationDuration.Observe(time.Since(start).Seconds())
	}()

	payload := discordWebhookPayload{
		Embeds: []discordEmbed{buildEmbed(alert)},
	}
	return d.post(ctx, payload)
}

func buildEmbed(alert *AlertPayload) discordEmbed {
	embed := discordEmbed{
		Title:       fmt.Sprintf("%s: %s", alert.Rating, alert.Title),
		URL:         alert.ListingURL,
		Color:       ratingColor(alert.Rating),
		Description: truncate(alert.Comment, maxDescription),
		Fields: []discordEmbedField{
			{Name: "Listing Price", Value: alert.ListingPrice, Inline: true},
			{Name: "Fair Value", Value: alert.FairValue, Inline: true},
			{Name: "Mileage", Value: alert.Mileage, Inline: true},
		},
	}

	if alert.Range != "" {
		embed.Fields = append(embed.Fields,
			discordEmbedField{Name: "Range", Value: alert.Range, Inline: true})
	}
	if alert.Location != "" {
		embed.Fields = append(embed.Fields,
			discordEmbedField{Name: "Location", Value: alert.Location, Inline: true})
	}
	if len(alert.Flags) > 0 {
		lines := make([]string, 0, len(alert.Flags))
		for _, f := range alert.Flags {
			lines = append(lines, fmt.Sprintf("[%s] %s", f.Level, f.Label))
		}
		embed.Fields = append(embed.Fields, discordEmbedField{
			Name:  "Flags",
			Value: truncate(strings.Join(lines, "\n"), maxFieldValue),
		})
	}
	if alert.EvaluationID != "" {
		embed.Footer = &discordFooter{Text: "evaluation " + alert.EvaluationID}
	}

	return embed
}

func ratingColor(r domain.DealRatingKind) int {
	switch r {
	case domain.RatingExcellent:
		return colorGreen
	case domain.RatingGood:
		return colorYellow
	case domain.RatingFair:
		return colorOrange
	case domain.RatingOverpriced:
		return colorRed
	default:
		return colorGrey
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func (d *DiscordNotifier) post(ctx context.Context, payload discordWebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		d.webhookURL,
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("creating discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("discord rate limited (429, retry after %q)", resp.Header.Get("Retry-After"))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if readErr != nil {
			return fmt.Errorf("discord returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
