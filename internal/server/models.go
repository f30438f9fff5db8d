package server

// SmartChatRequest is the unified entrypoint payload. ForceMode, when
// set to a valid mode, bypasses routing.
type SmartChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	ForceMode string `json:"force_mode,omitempty"`
}

type SmartChatResponse struct {
	Answer          string   `json:"answer"`
	ModeUsed        string   `json:"mode_used"`
	ModeExplanation string   `json:"mode_explanation"`
	Sources         []string `json:"sources"`
	SessionID       string   `json:"session_id"`
}

type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type ChatResponse struct {
	Answer    string `json:"answer"`
	SessionID string `json:"session_id"`
}

type WebSearchRequest struct {
	Message string `json:"message"`
}

type WebSearchResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

type RAGQueryRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type RAGQueryResponse struct {
	Answer  string   `json:"answer"`
	Mode    string   `json:"mode"`
	Sources []string `json:"sources"`
}

type RAGUploadResponse struct {
	Status  string `json:"status"`
	Chunks  int    `json:"chunks"`
	Message string `json:"message"`
}
