package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText(t *testing.T) {
	var gotAuth, gotName, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/upload", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		gotName = hdr.Filename
		buf := make([]byte, hdr.Size)
		_, _ = file.Read(buf)
		gotBody = string(buf)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"full_text":"extracted body"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	result, status, err := c.ExtractText(context.Background(), "notes.pdf", strings.NewReader("%PDF-1.4"), "tok-1")

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "extracted body", result.FullText)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "notes.pdf", gotName)
	assert.Equal(t, "%PDF-1.4", gotBody)
}

func TestExtractTextUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, status, err := c.ExtractText(context.Background(), "notes.pdf", strings.NewReader("x"), "")

	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestGeneratePodcast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/podcast", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "some extracted text", r.PostFormValue("text"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"podcast_script":"HOST: hello"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	script, err := c.GeneratePodcast(context.Background(), "some extracted text")

	require.NoError(t, err)
	assert.Equal(t, "HOST: hello", script)
}

func TestSetBaseURLSwapsOrigin(t *testing.T) {
	first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"podcast_script":"from first"}`))
	}))
	defer first.Close()
	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"podcast_script":"from second"}`))
	}))
	defer second.Close()

	c := NewClient(first.URL+"/", 5*time.Second)
	assert.Equal(t, first.URL, c.BaseURL())

	script, err := c.GeneratePodcast(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, "from first", script)

	c.SetBaseURL(second.URL)
	script, err = c.GeneratePodcast(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, "from second", script)
}

// Calls without their own deadline run under the client default; a caller
// deadline replaces it entirely.
func TestDefaultTimeoutOnlyWithoutDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"podcast_script":"slow"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 50*time.Millisecond)

	_, err := c.GeneratePodcast(context.Background(), "t")
	require.Error(t, err, "default budget must cut off the slow call")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	script, err := c.GeneratePodcast(ctx, "t")
	require.NoError(t, err, "caller deadline must override the default budget")
	assert.Equal(t, "slow", script)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A 404 on / still proves the backend is up.
		w.WriteHeader(http.StatusNotFound)
	}))
	c := NewClient(srv.URL, time.Second)
	assert.NoError(t, c.Ping(context.Background()))

	srv.Close()
	assert.Error(t, c.Ping(context.Background()))
}
