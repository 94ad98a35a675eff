package uploader

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doccast/core/token"
	"doccast/model"
)

func pdfBody(n int) (string, io.Reader) {
	content := strings.Repeat("x", n)
	return content, strings.NewReader(content)
}

func TestUploadSuccess(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, r.ParseMultipartForm(32<<20))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "doc.pdf", hdr.Filename)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"full_text":"extracted","podcast_script":"script"}`)
	}))
	defer srv.Close()

	tokens := token.NewMemoryStore()
	require.NoError(t, tokens.Set("tok"))

	_, body := pdfBody(2048)
	res := New(srv.URL, tokens).Upload(context.Background(), "doc.pdf", "application/pdf", 2048, body, nil)

	assert.True(t, res.Success)
	assert.Equal(t, "extracted", res.FullText)
	assert.Equal(t, "script", res.PodcastScript)
	assert.Equal(t, "Bearer tok", gotAuth)
}

func TestUploadProgressMonotonic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		io.WriteString(w, `{"full_text":"t"}`)
	}))
	defer srv.Close()

	var snapshots []model.UploadProgress
	_, body := pdfBody(300 * 1024)
	res := New(srv.URL, nil).Upload(context.Background(), "doc.pdf", "application/pdf", 300*1024, body, func(p model.UploadProgress) {
		snapshots = append(snapshots, p)
	})

	require.True(t, res.Success)
	require.NotEmpty(t, snapshots)

	var prev int64
	for _, s := range snapshots {
		assert.GreaterOrEqual(t, s.Loaded, prev, "loaded must not decrease")
		assert.Equal(t, snapshots[0].Total, s.Total, "total is fixed")
		assert.GreaterOrEqual(t, s.Percentage, 0)
		assert.LessOrEqual(t, s.Percentage, 100)
		prev = s.Loaded
	}

	last := snapshots[len(snapshots)-1]
	assert.Equal(t, 100, last.Percentage, "final snapshot must read 100%%")
	assert.Equal(t, last.Total, last.Loaded)
}

func TestUploadRejectsInvalidFileWithoutNetwork(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	u := New(srv.URL, nil)

	res := u.Upload(context.Background(), "doc.txt", "text/plain", 10, strings.NewReader("x"), nil)
	assert.False(t, res.Success)
	assert.Equal(t, "Please select a PDF file", res.Error)

	res = u.Upload(context.Background(), "doc.pdf", "application/pdf", 0, strings.NewReader(""), nil)
	assert.False(t, res.Success)
	assert.Equal(t, "File cannot be empty", res.Error)

	assert.Zero(t, calls, "invalid files must not reach the network")
}

func TestUploadServerErrorMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":"Only PDF files are allowed"}`)
	}))
	defer srv.Close()

	_, body := pdfBody(10)
	res := New(srv.URL, nil).Upload(context.Background(), "doc.pdf", "application/pdf", 10, body, nil)
	assert.False(t, res.Success)
	assert.Equal(t, "Only PDF files are allowed", res.Error)
}

func TestUploadServerErrorFallbackMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "upstream exploded")
	}))
	defer srv.Close()

	_, body := pdfBody(10)
	res := New(srv.URL, nil).Upload(context.Background(), "doc.pdf", "application/pdf", 10, body, nil)
	assert.False(t, res.Success)
	assert.Equal(t, "Upload failed with status 502", res.Error)
}

func TestUploadNetworkError(t *testing.T) {
	// A server that is already closed produces a connection error.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, body := pdfBody(10)
	res := New(srv.URL, nil).Upload(context.Background(), "doc.pdf", "application/pdf", 10, body, nil)
	assert.False(t, res.Success)
	assert.Equal(t, "Network error", res.Error)
}
