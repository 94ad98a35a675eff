package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doccast/model"
)

// multipartPDF builds a multipart body with one PDF form file.
func multipartPDF(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	hdr.Set("Content-Type", "application/pdf")
	part, err := w.CreatePart(hdr)
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func postUpload(t *testing.T, router http.Handler, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartPDF(t, filename, content)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUploadTwoStepSuccess(t *testing.T) {
	var podcastCalled bool
	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/upload":
			require.NoError(t, r.ParseMultipartForm(32<<20))
			_, hdr, err := r.FormFile("file")
			require.NoError(t, err)
			assert.Equal(t, "doc.pdf", hdr.Filename)
			io.WriteString(w, `{"full_text":"chapter one"}`)
		case "/podcast":
			podcastCalled = true
			assert.Equal(t, "chapter one", r.FormValue("text"))
			io.WriteString(w, `{"podcast_script":"HOST: welcome"}`)
		default:
			t.Errorf("unexpected upstream path %s", r.URL.Path)
		}
	}))
	defer mock.Close()

	h := newTestHandler(mock.URL)
	rec := postUpload(t, NewRouter(h), "doc.pdf", "%PDF-1.4 content")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res model.UploadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, "chapter one", res.FullText)
	assert.Equal(t, "HOST: welcome", res.PodcastScript)
	assert.True(t, podcastCalled)

	// The session document was stored and the session cookie minted.
	cookies := rec.Result().Cookies()
	var sessCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == sessionCookieName {
			sessCookie = c
		}
	}
	require.NotNil(t, sessCookie, "upload must establish a document session")

	doc, err := h.docs.Get(context.Background(), sessCookie.Value)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "chapter one", doc.ExtractedText)
	assert.Equal(t, "HOST: welcome", doc.PodcastScript)
}

func TestUploadSecondaryFailureIsPartial(t *testing.T) {
	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/upload":
			io.WriteString(w, `{"full_text":"X"}`)
		case "/podcast":
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `{"detail":"script model overloaded"}`)
		}
	}))
	defer mock.Close()

	rec := postUpload(t, NewRouter(newTestHandler(mock.URL)), "doc.pdf", "%PDF-1.4")

	require.Equal(t, http.StatusOK, rec.Code)
	var res model.UploadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success, "primary artifact alone is still a success")
	assert.Equal(t, "X", res.FullText)
	assert.Equal(t, "", res.PodcastScript)
}

func TestUploadNoPodcastFieldDefaultsEmpty(t *testing.T) {
	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/upload":
			io.WriteString(w, `{"full_text":"X"}`)
		case "/podcast":
			io.WriteString(w, `{}`)
		}
	}))
	defer mock.Close()

	rec := postUpload(t, NewRouter(newTestHandler(mock.URL)), "doc.pdf", "%PDF-1.4")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"podcast_script":""`)
	assert.Contains(t, rec.Body.String(), `"full_text":"X"`)
}

func TestUploadPrimaryFailure(t *testing.T) {
	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"detail":"no extractable text"}`)
	}))
	defer mock.Close()

	rec := postUpload(t, NewRouter(newTestHandler(mock.URL)), "doc.pdf", "%PDF-1.4")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Failed to process PDF. Please try again.", decodeError(t, rec))
}

func TestUploadRejectsNonPDFWithoutUpstreamCall(t *testing.T) {
	calls := 0
	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer mock.Close()

	router := NewRouter(newTestHandler(mock.URL))

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="doc.txt"`)
	hdr.Set("Content-Type", "text/plain")
	part, err := w.CreatePart(hdr)
	require.NoError(t, err)
	io.WriteString(part, "plain text")
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please select a PDF file", decodeError(t, rec))
	assert.Zero(t, calls)
}

func TestUploadMissingFile(t *testing.T) {
	router := NewRouter(newTestHandler("http://127.0.0.1:0"))

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("other", "value"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No file provided", decodeError(t, rec))
}

func TestUploadForwardsBearerWhenPresent(t *testing.T) {
	var gotAuth string
	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/upload":
			gotAuth = r.Header.Get("Authorization")
			io.WriteString(w, `{"full_text":""}`)
		}
	}))
	defer mock.Close()

	router := NewRouter(newTestHandler(mock.URL))

	body, contentType := multipartPDF(t, "doc.pdf", "%PDF-1.4")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(&http.Cookie{Name: authCookieName, Value: "user-tok"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bearer user-tok", gotAuth)

	// Empty extraction skips script generation entirely.
	assert.True(t, strings.Contains(rec.Body.String(), `"podcast_script":""`))
}
