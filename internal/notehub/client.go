// Package notehub is a thin HTTP client for the NoteHub notes API.
//
// It maps list, create and delete calls onto GET/POST/DELETE requests and
// reports every failure as a *TransportError. Nothing is retried.
package notehub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/idilsaglam/notehub/internal/model"
)

const (
	// DefaultBaseURL is the public NoteHub API.
	DefaultBaseURL = "https://notehub-public.goit.study/api"
	DefaultTimeout = 30 * time.Second

	maxBodyBytes = 1 << 20
)

// Client talks to the NoteHub API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	log        zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithToken attaches "Authorization: Bearer <token>" to every request.
// An empty token sends requests unauthenticated.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout bounds each request, response body included. d <= 0 keeps
// DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit paces outgoing requests to rps with the given burst.
// rps <= 0 disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger used for per-request debug lines.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a client for baseURL (protocol and host plus optional path
// prefix, e.g. "https://example.com/api").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
		limiter: rate.NewLimiter(rate.Inf, 1),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient = &http.Client{Timeout: c.timeout}
	return c
}

// ListNotes fetches one page of notes. Pagination metadata is returned
// exactly as the API sent it.
func (c *Client) ListNotes(ctx context.Context, p model.ListParams) (*model.Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("perPage", strconv.Itoa(p.PerPage))
	if p.Search != "" {
		q.Set("search", p.Search)
	}

	var page model.Page
	if err := c.do(ctx, "listNotes", http.MethodGet, "/notes?"+q.Encode(), nil, &page); err != nil {
		return nil, err
	}
	if page.Notes == nil {
		page.Notes = []model.Note{}
	}
	return &page, nil
}

// CreateNote creates a note. Callers validate in before calling; the server
// may still reject it.
func (c *Client) CreateNote(ctx context.Context, in model.CreateInput) (*model.Note, error) {
	var n model.Note
	if err := c.do(ctx, "createNote", http.MethodPost, "/notes", in, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// DeleteNote deletes the note with id and returns it as the API last saw it.
func (c *Client) DeleteNote(ctx context.Context, id string) (*model.Note, error) {
	var n model.Note
	if err := c.do(ctx, "deleteNote", http.MethodDelete, "/notes/"+url.PathEscape(id), nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, target any) error {
	fullURL := c.baseURL + path
	fail := func(status int, msg string, err error) error {
		return &TransportError{Op: op, Method: method, URL: fullURL, StatusCode: status, Message: msg, Err: err}
	}

	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fail(0, "encode request: "+err.Error(), err)
		}
		bodyReader = bytes.NewReader(b)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fail(0, "rate limit: "+err.Error(), err)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return fail(0, "build request: "+err.Error(), err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("op", op).Str("method", method).Str("url", fullURL).
			Str("request_id", reqID).Dur("took", time.Since(start)).Msg("notehub request failed")
		return fail(0, "network error: "+err.Error(), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	c.log.Debug().Str("op", op).Str("method", method).Str("url", fullURL).
		Int("status", resp.StatusCode).Str("request_id", reqID).
		Str("headers", formatHeaders(req.Header)).Dur("took", time.Since(start)).
		Msg("notehub request")
	if err != nil {
		return fail(resp.StatusCode, "read response: "+err.Error(), err)
	}
	if len(raw) > maxBodyBytes {
		return fail(resp.StatusCode, fmt.Sprintf("response too large: over %d bytes", maxBodyBytes), nil)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(resp.StatusCode, apiMessage(resp.StatusCode, raw), nil)
	}

	if target == nil || len(bytes.TrimSpace(raw)) == 0 {
		if target != nil {
			return fail(resp.StatusCode, "malformed response: empty body", nil)
		}
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fail(resp.StatusCode, "malformed response: "+err.Error(), err)
	}
	return nil
}

// apiMessage prefers the "message" field of an error body.
func apiMessage(status int, body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && strings.TrimSpace(payload.Message) != "" {
		return payload.Message
	}
	return fmt.Sprintf("request failed with status code %d", status)
}
