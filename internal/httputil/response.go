package httputil

import (
	"encoding/json"
	"log"
	"net/http"
)

// Envelope is the response shape shared by every endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// RespondJSON sends a success envelope with the given payload and status code.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	writeEnvelope(w, Envelope{Success: true, Data: data}, statusCode)
}

// RespondMessage sends a success envelope that carries only a message.
func RespondMessage(w http.ResponseWriter, message string, statusCode int) {
	writeEnvelope(w, Envelope{Success: true, Message: message}, statusCode)
}

// RespondMessageJSON sends a success envelope with both a message and a payload.
func RespondMessageJSON(w http.ResponseWriter, message string, data any, statusCode int) {
	writeEnvelope(w, Envelope{Success: true, Message: message, Data: data}, statusCode)
}

// RespondError sends an error envelope with the given message and status code.
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	writeEnvelope(w, Envelope{Success: false, Message: message}, statusCode)
}

// RespondErrorWithCode sends an error envelope with a machine-readable error code.
func RespondErrorWithCode(w http.ResponseWriter, message string, code string, statusCode int) {
	writeEnvelope(w, Envelope{Success: false, Message: message, Code: code}, statusCode)
}

// writeEnvelope logs encoding errors to avoid silent failures.
func writeEnvelope(w http.ResponseWriter, env Envelope, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}
