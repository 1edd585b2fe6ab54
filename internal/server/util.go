// internal/server/util.go
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/biscuit28110/Signature-by-lt-v2/internal/auth"
)

// RespondWithError sends a JSON error response.
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"error": message})
}

// RespondWithJSON sends a JSON response with the given status code and payload.
// If the payload is nil, no body is sent.
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			// Headers are already written, nothing more to do.
			_ = err
		}
	}
}

func isStorageError(err error) bool {
	var storageErr *auth.StorageError
	return errors.As(err, &storageErr)
}
