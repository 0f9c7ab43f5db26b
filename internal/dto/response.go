package dto

import "github.com/pmsworkflow/pms-api/internal/repository"

// Envelope is the uniform response body
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	Data       any    `json:"data,omitempty"`
	Total      *int   `json:"total,omitempty"`
}

// Success wraps data in a success envelope
func Success(statusCode int, data any, message string) Envelope {
	return Envelope{
		StatusCode: statusCode,
		Status:     repository.StatusSuccess,
		Message:    message,
		Data:       data,
	}
}

// List wraps a slice and its length
func List[E any](statusCode int, items []E, message string) Envelope {
	total := len(items)
	env := Success(statusCode, items, message)
	env.Total = &total
	return env
}

// FromResult converts a data-access result, applying shape to successful data
func FromResult[D any](res repository.Result[D], message string, shape func(D) any) Envelope {
	if !res.OK() {
		return Envelope{StatusCode: res.StatusCode, Status: res.Status, Message: res.Message}
	}
	var data any = res.Data
	if shape != nil {
		data = shape(res.Data)
	}
	return Success(res.StatusCode, data, message)
}
