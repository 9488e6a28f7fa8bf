package models

// OutboundMessageRequest represents requests to send a message manually via the API.
type OutboundMessageRequest struct {
	To         string `json:"to" binding:"required"`
	Message    string `json:"message" binding:"required"`
	PreviewURL bool   `json:"preview_url"`
}

// ShareRequest asks for a session summary to be pushed to a WhatsApp number.
// An empty To falls back to the configured operator.
type ShareRequest struct {
	To string `json:"to"`
}
