// Package notify tells the site owner about new comments. Delivery is best
// effort: callers log failures and carry on.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"time"

	"flik/internal/models"
)

// DefaultResendEndpoint is the Resend email API.
const DefaultResendEndpoint = "https://api.resend.com/emails"

// Notifier delivers a notification about a newly stored comment. postLabel
// is the post title, or its id when the post could not be resolved.
type Notifier interface {
	CommentCreated(ctx context.Context, postLabel string, c *models.Comment) error
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct{}

// CommentCreated logs the comment.
func (LogNotifier) CommentCreated(ctx context.Context, postLabel string, c *models.Comment) error {
	slog.Info("new comment", "post", postLabel, "email", c.Email, "comment_id", c.ID)
	return nil
}

// Resend sends notifications through the Resend HTTP API.
type Resend struct {
	APIKey   string
	From     string
	To       string
	Endpoint string
	Client   *http.Client
}

// NewResend returns a Resend notifier with a bounded HTTP client.
func NewResend(apiKey, from, to string) *Resend {
	return &Resend{
		APIKey:   apiKey,
		From:     from,
		To:       to,
		Endpoint: DefaultResendEndpoint,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type resendEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
}

// CommentCreated emails the comment to the configured recipient.
func (r *Resend) CommentCreated(ctx context.Context, postLabel string, c *models.Comment) error {
	msg := resendEmail{
		From:    r.From,
		To:      []string{r.To},
		Subject: "Nuevo comentario en " + postLabel,
		HTML: fmt.Sprintf(
			"<h2>Nuevo comentario en Flik</h2><p><strong>Post:</strong> %s</p><p><strong>Email:</strong> %s</p><p><strong>Contenido:</strong></p><blockquote>%s</blockquote>",
			html.EscapeString(postLabel), html.EscapeString(c.Email), html.EscapeString(c.Content),
		),
		Text: fmt.Sprintf("Nuevo comentario en Flik\nPost: %s\nEmail: %s\nContenido: %s", postLabel, c.Email, c.Content),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("send email: status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
	return nil
}

// New picks the Resend notifier when an API key and recipient are set,
// otherwise the log notifier.
func New(apiKey, from, to string) Notifier {
	if apiKey == "" || to == "" {
		return LogNotifier{}
	}
	return NewResend(apiKey, from, to)
}
