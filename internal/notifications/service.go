package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shop4me/ARVA-sub000/internal/config"
)

const userAgent = "arvactl/0.1.0"

// BatchSummary is what a finished generate run reports.
type BatchSummary struct {
	Published     int
	Skipped       int
	NeedsReview   int
	MissingAssets int
	Failed        int
	Duration      time.Duration
}

// Service defines the notification surface exposed to the variant pipeline.
type Service interface {
	NotifyNeedsReview(ctx context.Context, slug, colorName, reason string) error
	NotifyBatchCompleted(ctx context.Context, summary BatchSummary) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		review:   cfg.Notifications.Review,
		batch:    cfg.Notifications.Batch,
		errors:   cfg.Notifications.Errors,
	}
}

// Noop returns a service that drops every notification.
func Noop() Service { return noopService{} }

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	review   bool
	batch    bool
	errors   bool
}

func (n *ntfyService) NotifyNeedsReview(ctx context.Context, slug, colorName, reason string) error {
	if !n.review {
		return nil
	}
	message := fmt.Sprintf("🔍 %s · %s needs manual review", strings.TrimSpace(slug), strings.TrimSpace(colorName))
	if reason = strings.TrimSpace(reason); reason != "" {
		message = fmt.Sprintf("%s\nQA: %s", message, reason)
	}
	data := payload{
		title:   "ARVA - Needs Review",
		message: message,
		tags:    []string{"arva", "variant", "review"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyBatchCompleted(ctx context.Context, summary BatchSummary) error {
	if !n.batch {
		return nil
	}
	duration := summary.Duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	title := "ARVA - Variants Complete"
	if summary.NeedsReview > 0 || summary.Failed > 0 {
		title = "ARVA - Variants Complete (needs attention)"
	}
	message := fmt.Sprintf("Variant batch finished in %s: %d published, %d skipped, %d need review",
		duration, summary.Published, summary.Skipped, summary.NeedsReview)
	if summary.Failed > 0 {
		message = fmt.Sprintf("%s, %d failed", message, summary.Failed)
	}
	if summary.MissingAssets > 0 {
		message = fmt.Sprintf("%s\n%d products skipped for missing assets", message, summary.MissingAssets)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"arva", "batch", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("❌ Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "ARVA - Error",
		message:  builder.String(),
		tags:     []string{"arva", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "ARVA - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"arva", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyNeedsReview(context.Context, string, string, string) error { return nil }
func (noopService) NotifyBatchCompleted(context.Context, BatchSummary) error        { return nil }
func (noopService) NotifyError(context.Context, error, string) error                { return nil }
func (noopService) TestNotification(context.Context) error                          { return nil }
