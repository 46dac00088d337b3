package entity

// StartSessionRequest begins a conversation, optionally under a
// caller-chosen thread ID.
type StartSessionRequest struct {
	ThreadID *string `json:"thread_id,omitempty"`
}

type StartSessionResponse struct {
	ThreadID string `json:"thread_id"`
	Message  string `json:"message"`
}

type ChatRequest struct {
	ThreadID string `json:"thread_id"`
	Message  string `json:"message"`
}

// ChatResponse carries one assistant turn. Results is the pretty-printed
// record, present once the conversation is done.
type ChatResponse struct {
	Response string  `json:"response"`
	Done     bool    `json:"done"`
	Results  *string `json:"results,omitempty"`
}

type EndSessionRequest struct {
	ThreadID string `json:"thread_id"`
}

type EndSessionResponse struct {
	Done    bool    `json:"done"`
	Results *string `json:"results,omitempty"`
}

// ExportResult is a rendered transcript ready to be written out as a
// file download.
type ExportResult struct {
	Data        []byte
	ContentType string
	Filename    string
}

// ErrorResponse is the error payload handlers return.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
