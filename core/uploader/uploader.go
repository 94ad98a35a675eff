// Package uploader performs progress-observable document uploads against
// the gateway's upload endpoint.
package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"doccast/core/token"
	"doccast/core/validate"
	"doccast/model"
)

// ProgressFunc receives upload progress snapshots. It is called
// synchronously as body bytes are handed to the transport, so it must not
// block.
type ProgressFunc func(model.UploadProgress)

// Uploader posts PDF files to an upload endpoint as multipart form data.
type Uploader struct {
	endpoint string
	client   *http.Client
	tokens   token.Provider
}

// New creates an Uploader for the given endpoint URL. tokens may be nil
// for anonymous uploads.
func New(endpoint string, tokens token.Provider) *Uploader {
	return &Uploader{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 5 * time.Minute,
		},
		tokens: tokens,
	}
}

// Upload validates and sends one file, reporting progress to onProgress
// (which may be nil). Every path returns a settled UploadResult; the
// method never returns a Go error to keep the success/failure policy in
// one envelope, matching what the browser client does.
//
// Progress totals cover the full multipart body, since that is what the
// transport actually sends; Loaded is non-decreasing and the final
// snapshot before the response arrives reads 100 percent.
func (u *Uploader) Upload(ctx context.Context, name, mimeType string, size int64, file io.Reader, onProgress ProgressFunc) model.UploadResult {
	if err := validate.File(name, mimeType, size); err != nil {
		return model.UploadResult{Success: false, Error: err.Error()}
	}

	body, contentType, err := buildMultipart(name, file)
	if err != nil {
		return model.UploadResult{Success: false, Error: fmt.Sprintf("Failed to prepare upload: %v", err)}
	}

	pr := &progressReader{
		r:          bytes.NewReader(body),
		total:      int64(len(body)),
		onProgress: onProgress,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, pr)
	if err != nil {
		return model.UploadResult{Success: false, Error: fmt.Sprintf("Failed to prepare upload: %v", err)}
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(body))
	if u.tokens != nil {
		token.Decorate(req, u.tokens)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return model.UploadResult{Success: false, Error: "Network error"}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.UploadResult{Success: false, Error: readErrorMessage(resp)}
	}

	var payload struct {
		FullText      string `json:"full_text"`
		PodcastScript string `json:"podcast_script"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return model.UploadResult{Success: false, Error: "Failed to parse response"}
	}

	return model.UploadResult{
		Success:       true,
		FullText:      payload.FullText,
		PodcastScript: payload.PodcastScript,
	}
}

// buildMultipart assembles the multipart body with the file under field
// name "file". Uploads are capped at 10 MiB by validation, so buffering
// the body in memory is bounded and gives the transport an exact total
// for progress reporting.
func buildMultipart(name string, file io.Reader) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// readErrorMessage extracts a human-readable message from a failed upload
// response, falling back to a status-coded message when the body is not
// the expected JSON envelope.
func readErrorMessage(resp *http.Response) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return fmt.Sprintf("Upload failed with status %d", resp.StatusCode)
}

// progressReader counts bytes as the HTTP transport consumes the request
// body and reports each increment.
type progressReader struct {
	r          *bytes.Reader
	total      int64
	loaded     int64
	onProgress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		p.emit()
	}
	return n, err
}

func (p *progressReader) emit() {
	if p.onProgress == nil || p.total == 0 {
		return
	}
	pct := int(float64(p.loaded)/float64(p.total)*100 + 0.5)
	if pct > 100 {
		pct = 100
	}
	p.onProgress(model.UploadProgress{
		Loaded:     p.loaded,
		Total:      p.total,
		Percentage: pct,
	})
}
