package synth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// HTTPConfig configures the REST transport.
type HTTPConfig struct {
	// Endpoint receives SSML POST requests.
	Endpoint string
	// OutputFormat is sent as X-Microsoft-OutputFormat.
	OutputFormat string
	// Timeout bounds a single request. Defaults to 60s.
	Timeout time.Duration
	// RequestsPerMinute paces requests. Defaults to 60.
	RequestsPerMinute int
	// Tokens supplies the bearer token; nil sends no Authorization header.
	Tokens *TokenSource
	// Client overrides the HTTP client.
	Client *http.Client
}

// HTTPTransport posts SSML to a REST synthesis endpoint and streams the
// response body into the destination.
type HTTPTransport struct {
	endpoint     string
	outputFormat string
	tokens       *TokenSource
	client       *http.Client
	limiter      *rate.Limiter
}

// NewHTTPTransport creates the REST transport.
func NewHTTPTransport(config HTTPConfig) (*HTTPTransport, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("http transport: endpoint is required")
	}
	if config.OutputFormat == "" {
		config.OutputFormat = "audio-24khz-48kbitrate-mono-mp3"
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = 60
	}
	client := config.Client
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}

	return &HTTPTransport{
		endpoint:     config.Endpoint,
		outputFormat: config.OutputFormat,
		tokens:       config.Tokens,
		client:       client,
		limiter:      rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), 1),
	}, nil
}

// Name implements Transport.
func (t *HTTPTransport) Name() string {
	return "http"
}

// Synthesize implements Transport.
func (t *HTTPTransport) Synthesize(ctx context.Context, req Request, w io.Writer) error {
	if strings.TrimSpace(req.Text) == "" {
		return ErrEmptyText
	}
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, strings.NewReader(req.SSML()))
	if err != nil {
		return fmt.Errorf("unable to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/ssml+xml")
	httpReq.Header.Set("X-Microsoft-OutputFormat", t.outputFormat)
	httpReq.Header.Set("User-Agent", "voxcue")
	if t.tokens != nil {
		if token := t.tokens.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("http transport: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("http transport: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return fmt.Errorf("http transport: invalid response: %w", err)
	}
	if n == 0 {
		return ErrNoAudio
	}
	return nil
}
