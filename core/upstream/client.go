// Package upstream talks to the processing backend that owns PDF
// extraction, quiz and script generation, and speech synthesis.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Client is an HTTP client for the processing backend. The base URL can be
// swapped at runtime when the config file changes.
type Client struct {
	mu         sync.RWMutex
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates a backend client. timeout is the default per-call
// budget, applied to calls whose context carries no deadline of its own;
// slow generation endpoints pass a context with a longer deadline.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

// SetBaseURL replaces the backend origin.
func (c *Client) SetBaseURL(u string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = strings.TrimRight(u, "/")
}

// BaseURL returns the current backend origin.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// Do forwards one request to the backend, preserving method and body.
// bearer, when non-empty, is attached as an Authorization header. The
// caller owns the response body. A context without a deadline gets the
// client's default timeout, which then covers the body read as well.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader, contentType, bearer string) (*http.Response, error) {
	cancel := context.CancelFunc(func() {})
	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL()+path, body)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("creating %s %s request: %w", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	// The deadline timer stays armed until the caller closes the body.
	resp.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	b.cancel()
	return b.ReadCloser.Close()
}

// PostJSON forwards a JSON payload to the backend.
func (c *Client) PostJSON(ctx context.Context, path string, payload interface{}, bearer string) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", path, err)
	}
	return c.Do(ctx, http.MethodPost, path, bytes.NewReader(data), "application/json", bearer)
}

// ExtractResult is the backend's answer to a document upload.
type ExtractResult struct {
	FullText string `json:"full_text"`
	Message  string `json:"message,omitempty"`
}

// ExtractText uploads one document to /upload and returns the extracted
// text. This is the primary artifact of the upload flow.
func (c *Client) ExtractText(ctx context.Context, fileName string, file io.Reader, bearer string) (*ExtractResult, int, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return nil, 0, fmt.Errorf("building upload form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, 0, fmt.Errorf("copying upload body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, 0, fmt.Errorf("closing upload form: %w", err)
	}

	resp, err := c.Do(ctx, http.MethodPost, "/upload", &buf, w.FormDataContentType(), bearer)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, fmt.Errorf("extraction returned status %d", resp.StatusCode)
	}

	var result ExtractResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("decoding extraction response: %w", err)
	}
	return &result, resp.StatusCode, nil
}

// GeneratePodcast asks /podcast to turn extracted text into a two-voice
// script. The backend takes the text as a form field.
func (c *Client) GeneratePodcast(ctx context.Context, text string) (string, error) {
	form := url.Values{}
	form.Set("text", text)

	resp, err := c.Do(ctx, http.MethodPost, "/podcast", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", "")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("podcast generation returned status %d", resp.StatusCode)
	}

	var result struct {
		PodcastScript string `json:"podcast_script"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding podcast response: %w", err)
	}
	return result.PodcastScript, nil
}

// Ping checks upstream reachability for the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.Do(ctx, http.MethodGet, "/", nil, "", "")
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	return nil
}
