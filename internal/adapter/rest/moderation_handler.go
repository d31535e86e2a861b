package rest

import (
	"net/http"

	"github.com/CesarOsorioP/StateView-sub000/internal/domain"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) HandleGetPerson(w http.ResponseWriter, r *http.Request) {
	person, err := h.moderation.GetPerson(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondWithJSON(w, r, http.StatusOK, toPersonResponse(person))
}

func (h *Handler) HandleSetAccountState(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req stateRequest
	if err := h.decode(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	person, err := h.moderation.SetAccountState(r.Context(), chi.URLParam(r, "userID"), domain.AccountState(req.State), id.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondWithJSON(w, r, http.StatusOK, toPersonResponse(person))
}

func (h *Handler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req roleRequest
	if err := h.decode(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	person, err := h.moderation.SetRole(r.Context(), chi.URLParam(r, "userID"), domain.Role(req.Role), id.UserID, id.Role)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondWithJSON(w, r, http.StatusOK, toPersonResponse(person))
}

func (h *Handler) HandleGetItem(w http.ResponseWriter, r *http.Request) {
	variant, err := domain.ParseItemVariant(chi.URLParam(r, "variant"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	item, err := h.catalog.GetItem(r.Context(), variant, chi.URLParam(r, "itemID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondWithJSON(w, r, http.StatusOK, toCatalogItemResponse(item))
}

// HandleRecalculateRating rebuilds an item's aggregate from its active reviews.
func (h *Handler) HandleRecalculateRating(w http.ResponseWriter, r *http.Request) {
	variant, err := domain.ParseItemVariant(chi.URLParam(r, "variant"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	agg, err := h.catalog.RecalculateRating(r.Context(), variant, chi.URLParam(r, "itemID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondWithJSON(w, r, http.StatusOK, toAggregateResponse(agg))
}
