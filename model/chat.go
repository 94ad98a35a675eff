package model

// ChatSession represents one conversation owned by the processing backend.
// The gateway only passes identifiers through.
type ChatSession struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// ChatMessage is a single message inside a chat session. Role is "user",
// "bot", "file" or "system"; file messages carry the uploaded file's name
// and size instead of text content.
type ChatMessage struct {
	ID        int64  `json:"id"`
	ChatID    int64  `json:"chat_id,omitempty"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	FileName  string `json:"file_name,omitempty"`
	FileSize  int64  `json:"file_size,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// ChatRequest is the body of a chat relay call.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the assistant's reply as returned to the browser.
type ChatResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
}
