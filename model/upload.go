package model

// UploadResult is the normalized outcome of one document upload as seen by
// the browser. FullText is the extracted document text (the primary
// artifact); PodcastScript is the generated script (the secondary artifact)
// and stays empty when script generation did not run or failed.
type UploadResult struct {
	Success       bool   `json:"success"`
	FullText      string `json:"full_text"`
	PodcastScript string `json:"podcast_script"`
	Message       string `json:"message,omitempty"`
	Error         string `json:"error,omitempty"`
}

// UploadProgress is one snapshot of an in-flight upload. Snapshots are
// ephemeral; they are emitted in order with non-decreasing Loaded and
// discarded once the request settles.
type UploadProgress struct {
	Loaded     int64 `json:"loaded"`
	Total      int64 `json:"total"`
	Percentage int   `json:"percentage"`
}

// UploadedFileRecord describes a previously uploaded document, owned and
// persisted by the processing backend.
type UploadedFileRecord struct {
	ID          int64  `json:"id"`
	Filename    string `json:"filename"`
	FileType    string `json:"file_type,omitempty"`
	FileSize    int64  `json:"file_size,omitempty"`
	TextPreview string `json:"text_preview,omitempty"`
	UploadDate  string `json:"upload_date,omitempty"`
}
