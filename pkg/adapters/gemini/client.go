// Package gemini implements ports.FrameTransformer on top of the Gemini
// generateContent REST endpoint. Each frame is sent as an inline JPEG together
// with a prompt and the first image in the reply is returned.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/user/scribbler/pkg/ports"
)

const (
	DefaultModel   = "gemini-2.5-flash-image"
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	defaultHTTPTimeout = 60 * time.Second
	requestJPEGQuality = 90
	maxErrorBody       = 512
)

// DefaultPrompt asks the model to doodle over the frame while keeping it visible.
const DefaultPrompt = "Add a playful overlay of colorful hand-drawn doodles on top of this image. " +
	"First, detect the main subjects, objects, and prominent edges in the scene. " +
	"Draw thick white marker-style contour lines around the people, plates, food, and other important shapes, " +
	"following their edges loosely like an outline sketch. Then add random colorful scribbles, stars, swirls, " +
	"smiley faces, zigzags, and messy strokes in bright red, yellow, green, and blue. Scatter these doodles " +
	"around the outlined shapes in a spontaneous, energetic style, similar to fun chaotic hand-drawn graffiti. " +
	"Keep the original image fully visible beneath the drawings. The effect should look like expressive doodles " +
	"layered on top of the photograph, with outlines emphasizing edges and doodles adding chaos and personality. " +
	"Include randomness in placement, size, and density of the scribbles so every result is unique."

var (
	// ErrMissingAPIKey is returned when the client has no credential.
	ErrMissingAPIKey = errors.New("gemini: api key required")
	// ErrBlocked is returned when the prompt was rejected by safety filters.
	ErrBlocked = errors.New("gemini: prompt blocked")
	// ErrNoImage is returned when the reply contains no image part.
	ErrNoImage = errors.New("gemini: no image in response")
)

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gemini request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Config captures the settings needed to reach the model.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Prompts []string
	Timeout time.Duration
}

// Client transforms frames through the hosted model.
type Client struct {
	cfg        Config
	renderer   ports.Renderer
	httpClient *http.Client

	mu  sync.Mutex
	rng *rand.Rand
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

// WithSeed fixes the prompt selection sequence.
func WithSeed(seed uint64) Option {
	return func(c *Client) {
		c.rng = rand.New(rand.NewPCG(seed, seed+1))
	}
}

// NewClient creates a client. The renderer encodes outgoing frames and
// decodes returned images.
func NewClient(cfg Config, renderer ports.Renderer, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if len(cfg.Prompts) == 0 {
		cfg.Prompts = []string{DefaultPrompt}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultHTTPTimeout
	}

	c := &Client{
		cfg:        cfg,
		renderer:   renderer,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		rng:        rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Transform sends img with a randomly chosen prompt and returns the generated image.
func (c *Client) Transform(ctx context.Context, img image.Image) (image.Image, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	frame, err := c.renderer.EncodeImage(img, ports.FormatJPEG, requestJPEGQuality)
	if err != nil {
		return nil, fmt.Errorf("gemini: encode frame: %w", err)
	}

	payload := generateRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{Text: c.pickPrompt()},
				{InlineData: &blob{MimeType: "image/jpeg", Data: base64.StdEncoding.EncodeToString(frame)}},
			},
		}},
		GenerationConfig: &generationConfig{ResponseModalities: []string{"TEXT", "IMAGE"}},
	}

	resp, err := c.send(ctx, payload)
	if err != nil {
		return nil, err
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("%w: %s", ErrBlocked, resp.PromptFeedback.BlockReason)
	}

	data, format, ok := firstImage(resp)
	if !ok {
		return nil, ErrNoImage
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("gemini: decode image payload: %w", err)
	}
	out, err := c.renderer.DecodeImage(raw, format)
	if err != nil {
		return nil, fmt.Errorf("gemini: decode image: %w", err)
	}
	return out, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

func (c *Client) pickPrompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.Prompts[c.rng.IntN(len(c.cfg.Prompts))]
}

func (c *Client) send(ctx context.Context, payload generateRequest) (generateResponse, error) {
	var parsed generateResponse

	endpoint, err := url.JoinPath(c.cfg.BaseURL, "models", c.cfg.Model+":generateContent")
	if err != nil {
		return parsed, fmt.Errorf("gemini request: build url: %w", err)
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return parsed, fmt.Errorf("gemini request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return parsed, fmt.Errorf("gemini request: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return parsed, fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return parsed, fmt.Errorf("gemini request: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(body)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return parsed, &StatusError{StatusCode: resp.StatusCode, Body: snippet}
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return parsed, fmt.Errorf("gemini request: decode response: %w", err)
	}
	return parsed, nil
}

// firstImage returns the first inline image of the first candidate that has one.
func firstImage(resp generateResponse) (string, ports.ImageFormat, bool) {
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			b := p.InlineData
			if b == nil || b.Data == "" || !strings.HasPrefix(b.MimeType, "image/") {
				continue
			}
			format := ports.FormatPNG
			if b.MimeType == "image/jpeg" || b.MimeType == "image/jpg" {
				format = ports.FormatJPEG
			}
			return b.Data, format, true
		}
	}
	return "", ports.FormatPNG, false
}

// Ensure Client implements ports.FrameTransformer
var _ ports.FrameTransformer = (*Client)(nil)
