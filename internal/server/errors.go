package server

import (
	"encoding/json"
	"net/http"
)

// Стабильные машиночитаемые коды ошибок API
const (
	codeMissingInput = "missing_input"
	codeUnknownVoice = "unknown_voice"
	codeInvalidSpeed = "invalid_speed"
	codeBadRequest   = "invalid_request"
	codeProvider     = "provider_error"
	codeCredential   = "credential_error"
)

// apiError представляет тело ошибки API в формате, совместимом с OpenAI
type apiError struct {
	Error apiErrorDetail `json:"error"`
}

type apiErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// writeAPIError отправляет клиенту JSON ошибку со стабильным кодом
func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	errType := "invalid_request_error"
	if status >= 500 {
		errType = "api_error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiError{
		Error: apiErrorDetail{
			Message: message,
			Type:    errType,
			Code:    code,
		},
	})
}
