package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	areasvc "waypost/internal/service/area"
)

// SpaceHandler serves the space-only routes on top of the shared area set.
type SpaceHandler struct {
	svc *areasvc.Service
	log *zap.Logger
}

// NewSpaceHandler creates a new space handler
func NewSpaceHandler(svc *areasvc.Service, log *zap.Logger) *SpaceHandler {
	return &SpaceHandler{
		svc: svc,
		log: log,
	}
}

// RequestClaim handles POST /spaces/{id}/request-claim
func (h *SpaceHandler) RequestClaim(w http.ResponseWriter, r *http.Request) {
	rc := requestContext(r)
	id := chi.URLParam(r, "id")

	space, err := h.svc.RequestClaim(r.Context(), rc, id)
	if err != nil {
		respondWithError(w, err, h.log)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"space": space})
}

// CheckIn handles POST /spaces/{id}/check-in
func (h *SpaceHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	rc := requestContext(r)
	id := chi.URLParam(r, "id")

	checkIn, coins, err := h.svc.CheckIn(r.Context(), rc, id)
	if err != nil {
		respondWithError(w, err, h.log)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"checkIn":      checkIn,
		"coinRewarded": coins,
	})
}
