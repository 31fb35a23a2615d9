package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"waypost/internal/domain/area"
	"waypost/internal/domain/geo"
	areasvc "waypost/internal/service/area"
)

// AreaHandler serves the shared area routes; the kind is bound per route
// group when the router is built.
type AreaHandler struct {
	svc *areasvc.Service
	log *zap.Logger
}

// NewAreaHandler creates a new area handler
func NewAreaHandler(svc *areasvc.Service, log *zap.Logger) *AreaHandler {
	return &AreaHandler{
		svc: svc,
		log: log,
	}
}

// Create handles POST /{kind}
func (h *AreaHandler) Create(t area.Type) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc := requestContext(r)

		var params area.CreateParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			respondWithError(w, area.ValidationError("invalid request body"), h.log)
			return
		}
		params.Type = t
		params.FromUserID = rc.UserID

		created, coins, err := h.svc.Create(r.Context(), rc, params)
		if errors.Is(err, area.ErrInsufficientFunds) && created != nil {
			// The area is persisted; the caller can keep it by re-submitting
			// with skipReward set.
			respondWithJSON(w, http.StatusBadRequest, map[string]interface{}{
				"area":         created,
				"coinRewarded": coins,
				"errorCode":    area.CodeInsufficientFunds,
				"message":      "the space owner cannot fund this reward",
			})
			return
		}
		if err != nil {
			respondWithError(w, err, h.log)
			return
		}

		respondWithJSON(w, http.StatusCreated, map[string]interface{}{
			"area":         created,
			"coinRewarded": coins,
		})
	}
}

// Update handles PUT /{kind}/{id}
func (h *AreaHandler) Update(t area.Type) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc := requestContext(r)
		id := chi.URLParam(r, "id")

		var params area.UpdateParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			respondWithError(w, area.ValidationError("invalid request body"), h.log)
			return
		}

		updated, err := h.svc.Update(r.Context(), rc, t, id, params)
		if err != nil {
			respondWithError(w, err, h.log)
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]interface{}{"area": updated})
	}
}

type searchRequest struct {
	Query           string          `json:"query"`
	Latitude        float64         `json:"latitude"`
	Longitude       float64         `json:"longitude"`
	ProximityMeters float64         `json:"proximityMeters"`
	FilterBy        string          `json:"filterBy"`
	Search          string          `json:"search"`
	PartialMatch    bool            `json:"partialMatch"`
	Pagination      area.Pagination `json:"pagination"`
}

// Search handles POST /{kind}/search
func (h *AreaHandler) Search(t area.Type) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc := requestContext(r)

		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, area.ValidationError("invalid request body"), h.log)
			return
		}

		results, page, err := h.svc.Search(r.Context(), rc, t, areasvc.SearchRequest{
			Scope:           req.Query,
			Center:          geo.Point{Latitude: req.Latitude, Longitude: req.Longitude},
			ProximityMeters: req.ProximityMeters,
			FilterBy:        req.FilterBy,
			Query:           req.Search,
			Partial:         req.PartialMatch,
			Pagination:      req.Pagination,
		})
		if err != nil {
			respondWithError(w, err, h.log)
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"results":    results,
			"pagination": page,
		})
	}
}

type searchMineRequest struct {
	DraftsOnly   bool            `json:"draftsOnly"`
	PublicOnly   bool            `json:"publicOnly"`
	FilterBy     string          `json:"filterBy"`
	Search       string          `json:"search"`
	PartialMatch bool            `json:"partialMatch"`
	Pagination   area.Pagination `json:"pagination"`
}

// SearchMine handles POST /{kind}/me/search
func (h *AreaHandler) SearchMine(t area.Type) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc := requestContext(r)

		var req searchMineRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, area.ValidationError("invalid request body"), h.log)
			return
		}

		results, page, err := h.svc.SearchMine(r.Context(), rc, t, area.MineFilters{
			DraftsOnly: req.DraftsOnly,
			PublicOnly: req.PublicOnly,
			FilterBy:   req.FilterBy,
			Query:      req.Search,
			Partial:    req.PartialMatch,
		}, req.Pagination)
		if err != nil {
			respondWithError(w, err, h.log)
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"results":    results,
			"pagination": page,
		})
	}
}

type findRequest struct {
	IDs        []string   `json:"ids"`
	Limit      int        `json:"limit"`
	Order      string     `json:"order"`
	Before     *time.Time `json:"before"`
	HideMature bool       `json:"hideMatureContent"`
	WithMedia  bool       `json:"withMedia"`
	WithUser   bool       `json:"withUser"`
}

// Find handles POST /{kind}/find
func (h *AreaHandler) Find(t area.Type) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req findRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, area.ValidationError("invalid request body"), h.log)
			return
		}

		result, err := h.svc.FindByIDs(r.Context(), t, req.IDs, area.FindFilters{
			Limit:      req.Limit,
			Order:      req.Order,
			Before:     req.Before,
			HideMature: req.HideMature,
		}, area.EnrichOptions{WithMedia: req.WithMedia, WithUser: req.WithUser})
		if err != nil {
			respondWithError(w, err, h.log)
			return
		}

		respondWithJSON(w, http.StatusOK, result)
	}
}

// Details handles POST /{kind}/{id}/details
func (h *AreaHandler) Details(t area.Type) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc := requestContext(r)
		id := chi.URLParam(r, "id")

		var opts area.EnrichOptions
		if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
			respondWithError(w, area.ValidationError("invalid request body"), h.log)
			return
		}

		details, err := h.svc.GetDetails(r.Context(), rc, t, id, opts)
		if err != nil {
			respondWithError(w, err, h.log)
			return
		}

		respondWithJSON(w, http.StatusOK, details)
	}
}

type deleteRequest struct {
	IDs []string `json:"ids"`
}

// Delete handles DELETE /{kind}
func (h *AreaHandler) Delete(t area.Type) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc := requestContext(r)

		var req deleteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, area.ValidationError("invalid request body"), h.log)
			return
		}

		count, err := h.svc.Delete(r.Context(), rc, t, req.IDs)
		if err != nil {
			respondWithError(w, err, h.log)
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]int{"deleted": count})
	}
}
