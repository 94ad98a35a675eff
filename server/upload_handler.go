package server

import (
	"net/http"

	"doccast/cache"
	"doccast/core/validate"
	"doccast/logger"
	"doccast/model"
)

// maxUploadBytes caps the inbound request body. Slightly above the file
// limit to leave room for multipart framing.
const maxUploadBytes = validate.MaxFileSize + 1<<20

// UploadHandler relays a PDF to the backend in two steps: text extraction
// first, then script generation from the extracted text. Extraction
// failure fails the request; script generation failure does not. The
// extracted text has standalone value, so the response stays successful
// with an empty podcast_script.
func (h *APIHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "Failed to parse multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if err := validate.File(header.Filename, mimeType, header.Size); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Token is optional here: anonymous uploads are allowed, but an
	// authenticated upload lets the backend attach the file to the account.
	bearer := bearerFromRequest(r)

	// Extraction and script generation both run under the generation
	// budget; the default relay budget is sized for quick JSON calls.
	extractCtx, cancelExtract := h.generateContext(r)
	result, status, err := h.backend.ExtractText(extractCtx, header.Filename, file, bearer)
	cancelExtract()
	if err != nil {
		logger.Error("[Upload] extraction failed",
			logger.String("filename", header.Filename),
			logger.Int("status", status),
			logger.ErrorField(err))
		if status == 0 {
			respondError(w, http.StatusBadGateway, "Failed to process PDF. Please try again.")
			return
		}
		respondError(w, status, "Failed to process PDF. Please try again.")
		return
	}

	podcastScript := ""
	if result.FullText != "" {
		scriptCtx, cancelScript := h.generateContext(r)
		defer cancelScript()
		script, err := h.backend.GeneratePodcast(scriptCtx, result.FullText)
		if err != nil {
			// The script is a secondary artifact; its absence must not
			// sink the upload.
			logger.Warn("[Upload] script generation failed, continuing without it",
				logger.String("filename", header.Filename),
				logger.ErrorField(err))
		} else {
			podcastScript = script
		}
	}

	h.storeSessionDocument(w, r, cache.SessionDocument{
		ExtractedText: result.FullText,
		PodcastScript: podcastScript,
	})

	logger.Info("[Upload] document processed",
		logger.String("filename", header.Filename),
		logger.Int("textLength", len(result.FullText)),
		logger.Bool("script", podcastScript != ""))

	respondJSON(w, http.StatusOK, model.UploadResult{
		Success:       true,
		FullText:      result.FullText,
		PodcastScript: podcastScript,
	})
}
