package handler

const (
	// Version is reported by the info endpoint.
	Version = "1.0.0"

	StatusSuccess = "success"
	StatusHealthy = "healthy"

	ErrMessageRequired = "Message is required"

	responsePrefix = "Processed: "
)

// Endpoints lists the API routes advertised by the info endpoint.
var Endpoints = []string{"/api/info", "/api/submit", "/healthz"}

type SubmissionRequest struct {
	Message string `json:"message"`
}

type SubmissionResponse struct {
	Status          string `json:"status"`
	ReceivedMessage string `json:"received_message"`
	ProcessedAt     string `json:"processed_at"`
	Response        string `json:"response"`
}

type InfoResponse struct {
	Version     string   `json:"version"`
	Environment string   `json:"environment"`
	Endpoints   []string `json:"endpoints"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
