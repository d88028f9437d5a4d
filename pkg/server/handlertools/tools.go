package handlertools

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/getzep/nlp-annotator-api/internal"
	"github.com/getzep/nlp-annotator-api/pkg/models"
)

var log = internal.GetLogger()

const ProblemContentType = "application/problem+json"

// EncodeJSON encodes data into JSON and writes it to the response writer.
func EncodeJSON(w http.ResponseWriter, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(data)
}

// WriteJSON writes an already encoded JSON body with status 200.
func WriteJSON(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Errorf("error writing response: %v", err)
	}
}

// StatusFor maps an error to the HTTP status reported to the client.
func StatusFor(err error) int {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrBadRequest):
		return http.StatusBadRequest
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// RenderProblem renders err as an RFC 7807 problem. Server errors are logged and their
// details are not exposed.
func RenderProblem(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	detail := err.Error()

	if status == http.StatusInternalServerError {
		log.Error(err)
		detail = "The server encountered an internal error."
	} else {
		log.Debug(err)
	}

	problem := models.ProblemDetail{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}

	w.Header().Set("Content-Type", ProblemContentType)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem); err != nil {
		log.Errorf("error encoding problem: %v", err)
	}
}
