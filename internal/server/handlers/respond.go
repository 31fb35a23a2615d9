package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"waypost/internal/domain/area"
	"waypost/internal/domain/external"
)

// requestContext extracts the identity headers forwarded by the gateway.
func requestContext(r *http.Request) external.RequestContext {
	return external.RequestContext{
		UserID:        r.Header.Get("x-userid"),
		Authorization: r.Header.Get("Authorization"),
		Locale:        r.Header.Get("x-localecode"),
	}
}

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithError translates structured domain errors to their status and
// code; anything else becomes an opaque 500.
func respondWithError(w http.ResponseWriter, err error, log *zap.Logger) {
	var domainErr *area.Error
	if errors.As(err, &domainErr) {
		if domainErr.HTTPStatus() >= http.StatusInternalServerError {
			log.Error("request failed", zap.Error(err))
		}
		respondWithJSON(w, domainErr.HTTPStatus(), map[string]string{
			"errorCode": string(domainErr.Code),
			"message":   domainErr.Message,
		})
		return
	}

	log.Error("request failed", zap.Error(err))
	respondWithJSON(w, http.StatusInternalServerError, map[string]string{
		"errorCode": "INTERNAL_ERROR",
		"message":   "something went wrong",
	})
}
