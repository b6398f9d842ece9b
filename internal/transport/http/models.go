package http

// ToolResponse is the body of the per-tool endpoints.
type ToolResponse struct {
	Result  string `json:"result"`
	Success bool   `json:"success"`
}

const (
	FrameSession = "session"
	FrameContent = "content"
	FrameDone    = "done"
	FrameError   = "error"
)

// StreamFrame is one SSE data line or websocket message of a streamed answer.
type StreamFrame struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	Chunk     string `json:"chunk,omitempty"`
	Error     string `json:"error,omitempty"`
}

// OctResponse is the body of /ask_oct.
type OctResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Status   string `json:"status"`
	Success  bool   `json:"success"`
}

type HealthResponse struct {
	Status   string   `json:"status"`
	Version  string   `json:"version"`
	Strategy string   `json:"strategy"`
	Services []string `json:"services"`
}
