package types

const (
	ResponseStatusSuccess = "success"
	ResponseStatusError   = "error"
)

const (
	EventDocument = "document"
	EventSummary  = "summary"
	EventError    = "error"
)

type DataResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type AskResponse struct {
	Ingestion *IngestionResult `json:"ingestion"`
	Answer    *Answer          `json:"answer,omitempty"`
}

// RemoteErrorResponse carries the diagnostic detail of a failed model call.
type RemoteErrorResponse struct {
	Ingestion  *IngestionResult `json:"ingestion,omitempty"`
	Provider   string           `json:"provider"`
	Model      string           `json:"model"`
	StatusCode int              `json:"status_code,omitempty"`
	ErrorType  string           `json:"error_type,omitempty"`
	Timeout    bool             `json:"timeout"`
	Detail     string           `json:"detail"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}
