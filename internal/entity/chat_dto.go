package entity

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Query   string `json:"query"`
	History []Turn `json:"history,omitempty"`
}

// ChatResponse always carries an answer string, even when the pipeline
// degraded to general-knowledge mode or to the fallback message.
type ChatResponse struct {
	Answer string `json:"answer"`
}

// UploadResponse reports the result of a document upload.
type UploadResponse struct {
	Status         string `json:"status"`
	Filename       string `json:"filename,omitempty"`
	Message        string `json:"message,omitempty"`
	CharsExtracted int    `json:"chars_extracted,omitempty"`
	ChunksWritten  int    `json:"chunks_written,omitempty"`
}
