package dto

import (
	"encoding/json"
	"time"
)

type ErrorResponse struct {
	Timestamp        time.Time         `json:"timestamp"`
	Status           int               `json:"status"`
	Error            string            `json:"error"`
	Message          string            `json:"message"`
	ValidationErrors map[string]string `json:"validationErrors,omitempty"`
}

func NewErr(status int, label, msg string) ErrorResponse {
	return ErrorResponse{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     label,
		Message:   msg,
	}
}

func (e ErrorResponse) ToString() string {
	b, err := json.MarshalIndent(e, "", "    ")
	if err != nil {
		return ""
	}

	return string(b)
}
