package api

// CompletionRequest is the body of POST /v1/completions. Optional fields
// fall back to the server's configuration.
type CompletionRequest struct {
	Prompt        string `json:"prompt"`
	MaxTokens     *int   `json:"max_tokens,omitempty"`
	Deterministic *bool  `json:"deterministic,omitempty"`
}

// CompletionResponse is the synchronous completion result.
type CompletionResponse struct {
	ID        string  `json:"id"`
	Object    string  `json:"object"`
	CreatedAt int64   `json:"created_at"`
	Text      string  `json:"text"`
	Usage     Usage   `json:"usage"`
	TPS       float64 `json:"tps,omitempty"`
}

// Usage is per-call token accounting.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ErrorBody wraps API failures.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}
