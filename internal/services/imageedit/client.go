package imageedit

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shop4me/ARVA-sub000/internal/logging"
	"github.com/shop4me/ARVA-sub000/internal/mask"
	"github.com/shop4me/ARVA-sub000/internal/raster"
	"github.com/shop4me/ARVA-sub000/internal/services"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "dall-e-2"
	DefaultSize    = "1024x1024"

	defaultHTTPTimeout    = 120 * time.Second
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = 2 * time.Second
	defaultRetryMaxDelay  = 30 * time.Second
	maxErrorBodyBytes     = 220
	userAgent             = "arvactl/variants"
)

// Generator produces one candidate image for an edit request.
type Generator interface {
	Generate(ctx context.Context, req EditRequest) (*raster.Image, error)
}

// EditRequest describes a masked edit of a reference image.
type EditRequest struct {
	ReferencePath string
	MaskPath      string
	Prompt        string
	Size          string
}

// ClientConfig is the complete runtime configuration of a Client. It is
// resolved once at startup; the client never reads the environment.
type ClientConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	Size            string
	Timeout         time.Duration
	RequestInterval time.Duration
	RetryAttempts   int
	RetryBaseDelay  time.Duration
	RetryMaxDelay   time.Duration
}

// Client calls the image edit endpoint.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	limiter    *Limiter
	logger     *slog.Logger
	sleep      func(context.Context, time.Duration) error
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLimiter shares a limiter between clients.
func WithLimiter(l *Limiter) Option {
	return func(c *Client) {
		if l != nil {
			c.limiter = l
		}
	}
}

// WithLogger attaches a logger for per-call diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSleeper overrides how retry backoff sleeps (useful for tests).
func WithSleeper(sleep func(context.Context, time.Duration) error) Option {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// NewClient validates cfg, fills defaults and returns a ready client.
func NewClient(cfg ClientConfig, opts ...Option) (*Client, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "imageedit", "new client", "api key required (set image_edit.api_key or OPENAI_API_KEY)", nil)
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	if strings.TrimSpace(cfg.Size) == "" {
		cfg.Size = DefaultSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultHTTPTimeout
	}
	if cfg.RequestInterval < 0 {
		cfg.RequestInterval = 0
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = defaultRetryAttempts
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = defaultRetryBaseDelay
	}
	if cfg.RetryMaxDelay <= 0 {
		cfg.RetryMaxDelay = defaultRetryMaxDelay
	}

	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    NewLimiter(cfg.RequestInterval),
		logger:     logging.NewNop(),
		sleep:      SleepWithContext,
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "imageedit")
	return client, nil
}

// Config returns the resolved configuration.
func (c *Client) Config() ClientConfig {
	cfg := c.cfg
	cfg.APIKey = ""
	return cfg
}

type httpStatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Body)
}

// editResponse is the accepted response schema.
type editResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		B64JSON       string `json:"b64_json"`
		RevisedPrompt string `json:"revised_prompt"`
	} `json:"data"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

// Generate uploads the reference and mask and returns the decoded edit.
func (c *Client) Generate(ctx context.Context, req EditRequest) (*raster.Image, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, services.Wrap(services.ErrValidation, "imageedit", "generate", "prompt required", nil)
	}
	size := strings.TrimSpace(req.Size)
	if size == "" {
		size = c.cfg.Size
	}
	body, contentType, err := c.buildForm(req, size)
	if err != nil {
		return nil, err
	}

	attempts := c.cfg.RetryAttempts
	made := 0
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		made = attempt
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		started := time.Now()
		img, callID, err := c.sendOnce(ctx, body, contentType)
		if err == nil {
			c.logger.Debug("image edit completed",
				logging.String("call_id", callID),
				logging.Int("attempt", attempt),
				logging.Duration("elapsed", time.Since(started)),
			)
			return img, nil
		}
		lastErr = err
		delay, retry := c.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			break
		}
		c.logger.Debug("image edit retry scheduled",
			logging.Int("attempt", attempt),
			logging.Duration("delay", delay),
			logging.Error(err),
		)
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	return nil, services.Wrap(services.ErrExternalService, "imageedit", "generate", fmt.Sprintf("failed after %d attempt(s)", made), lastErr)
}

func (c *Client) buildForm(req EditRequest, size string) ([]byte, string, error) {
	reference, err := raster.Load(req.ReferencePath)
	if err != nil {
		return nil, "", err
	}
	referencePNG, err := rgbaPNG(reference)
	if err != nil {
		return nil, "", fmt.Errorf("encode reference png: %w", err)
	}

	var maskPNG []byte
	if strings.TrimSpace(req.MaskPath) != "" {
		m, err := mask.Load(req.MaskPath)
		if err != nil {
			return nil, "", err
		}
		maskPNG, err = raster.PNGBytes(m.APIFormat(reference.Width, reference.Height))
		if err != nil {
			return nil, "", fmt.Errorf("encode api mask: %w", err)
		}
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"model", c.cfg.Model},
		{"prompt", req.Prompt},
		{"size", size},
		{"response_format", "b64_json"},
	}
	for _, field := range fields {
		if err := writer.WriteField(field[0], field[1]); err != nil {
			return nil, "", fmt.Errorf("write form field %s: %w", field[0], err)
		}
	}
	name := strings.TrimSuffix(filepath.Base(req.ReferencePath), filepath.Ext(req.ReferencePath)) + ".png"
	if err := writeFile(writer, "image", name, referencePNG); err != nil {
		return nil, "", err
	}
	if maskPNG != nil {
		if err := writeFile(writer, "mask", "mask.png", maskPNG); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}

// rgbaPNG encodes img with an alpha channel. The PNG encoder stores fully
// opaque images as RGB, which the edits endpoint rejects, so one corner
// pixel is made 1/255 translucent.
func rgbaPNG(img *raster.Image) ([]byte, error) {
	withAlpha := img.WithAlpha()
	opaque := true
	for i := 3; i < len(withAlpha.Pix); i += 4 {
		if withAlpha.Pix[i] != 255 {
			opaque = false
			break
		}
	}
	if opaque && len(withAlpha.Pix) >= 4 {
		withAlpha.Pix[3] = 254
	}
	return raster.PNGBytes(withAlpha)
}

func writeFile(writer *multipart.Writer, field, name string, data []byte) error {
	part, err := writer.CreateFormFile(field, name)
	if err != nil {
		return fmt.Errorf("create form file %s: %w", field, err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("write form file %s: %w", field, err)
	}
	return nil
}

func (c *Client) sendOnce(ctx context.Context, body []byte, contentType string) (*raster.Image, string, error) {
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "images", "edits")
	if err != nil {
		return nil, "", fmt.Errorf("build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("http error (timeout=%s): %w", c.cfg.Timeout, err)
	}
	defer resp.Body.Close()
	callID := resp.Header.Get("x-request-id")
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, callID, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, callID, &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       truncate(strings.TrimSpace(string(payload)), maxErrorBodyBytes),
			RetryAfter: retryAfter,
		}
	}
	img, err := decodeResponse(payload)
	return img, callID, err
}

func decodeResponse(payload []byte) (*raster.Image, error) {
	var parsed editResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("api error (%s): %s", parsed.Error.Type, strings.TrimSpace(parsed.Error.Message))
	}
	if len(parsed.Data) == 0 {
		return nil, errors.New("response missing data")
	}
	encoded := strings.TrimSpace(parsed.Data[0].B64JSON)
	if encoded == "" {
		return nil, errors.New("response missing b64_json")
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode b64_json: %w", err)
	}
	img, err := raster.DecodeBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("decode returned image: %w", err)
	}
	return img, nil
}

func (c *Client) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts || err == nil || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusRequestTimeout,
			statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode >= http.StatusInternalServerError:
			if statusErr.RetryAfter > 0 {
				return c.capDelay(statusErr.RetryAfter), true
			}
			return c.backoffDelay(attempt), true
		default:
			return 0, false
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return c.backoffDelay(attempt), true
	}
	return 0, false
}

// backoffDelay doubles the base delay per attempt: base, 2*base, 4*base...
func (c *Client) backoffDelay(attempt int) time.Duration {
	delay := c.cfg.RetryBaseDelay
	for i := 1; i < attempt; i++ {
		if delay > c.cfg.RetryMaxDelay/2 {
			return c.cfg.RetryMaxDelay
		}
		delay *= 2
	}
	return c.capDelay(delay)
}

func (c *Client) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	if delay > c.cfg.RetryMaxDelay {
		return c.cfg.RetryMaxDelay
	}
	return delay
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		if delay := time.Until(when); delay > 0 {
			return delay, true
		}
	}
	return 0, false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
