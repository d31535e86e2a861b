package rest

import (
	"fmt"
	"net/http"

	"github.com/CesarOsorioP/StateView-sub000/internal/domain"
	"github.com/CesarOsorioP/StateView-sub000/internal/usecase"
	"go.uber.org/zap"
)

func (h *Handler) HandleCreateReview(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req createReviewRequest
	if err := h.decode(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	res, err := h.reviews.CreateReview(r.Context(), usecase.CreateReviewInput{
		UserID:      id.UserID,
		ItemID:      req.ItemID,
		ItemVariant: domain.ItemVariant(req.ItemVariant),
		Text:        req.Text,
		Rating:      *req.Rating,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondWithJSON(w, r, http.StatusCreated, toReviewMutationResponse(res))
}

func (h *Handler) HandleGetReview(w http.ResponseWriter, r *http.Request) {
	reviewID, err := objectIDParam(r, "reviewID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	review, err := h.reviews.GetReview(r.Context(), reviewID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondWithJSON(w, r, http.StatusOK, toReviewResponse(review))
}

// HandleListReviews lists active reviews filtered by the itemId, variant and userId query parameters.
func (h *Handler) HandleListReviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ReviewFilter{
		ItemID: q.Get("itemId"),
		UserID: q.Get("userId"),
	}
	if v := q.Get("variant"); v != "" {
		variant, err := domain.ParseItemVariant(v)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		filter.ItemVariant = variant
	}

	reviews, err := h.reviews.ListReviews(r.Context(), filter)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	out := make([]*reviewResponse, 0, len(reviews))
	for _, review := range reviews {
		out = append(out, toReviewResponse(review))
	}
	h.respondWithJSON(w, r, http.StatusOK, out)
}

func (h *Handler) HandleUpdateReview(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	reviewID, err := objectIDParam(r, "reviewID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req updateReviewRequest
	if err := h.decode(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if req.Text == nil && req.Rating == nil {
		h.respondError(w, r, fmt.Errorf("%w: nothing to update, send text or rating", domain.ErrInvalidInput))
		return
	}

	res, err := h.reviews.UpdateReview(r.Context(), usecase.UpdateReviewInput{
		ReviewID: reviewID,
		EditorID: id.UserID,
		Text:     req.Text,
		Rating:   req.Rating,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondWithJSON(w, r, http.StatusOK, toReviewMutationResponse(res))
}

func (h *Handler) HandleDeleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	reviewID, err := objectIDParam(r, "reviewID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	agg, err := h.reviews.DeleteReview(r.Context(), reviewID, id.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondWithJSON(w, r, http.StatusOK, map[string]interface{}{
		"deleted":     reviewID.Hex(),
		"item_rating": toAggregateResponse(agg),
	})
}

func (h *Handler) HandleToggleReviewLike(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	reviewID, err := objectIDParam(r, "reviewID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	review, liked, err := h.reviews.ToggleLike(r.Context(), reviewID, id.UserID, id.Name)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondWithJSON(w, r, http.StatusOK, likeToggleResponse{
		Liked:     liked,
		LikeCount: len(review.Likes),
		Likes:     toLikeResponses(review.Likes),
	})
}

// HandleSetReviewState is the moderator's review lifecycle change.
func (h *Handler) HandleSetReviewState(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	reviewID, err := objectIDParam(r, "reviewID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req stateRequest
	if err := h.decode(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	res, err := h.reviews.SetReviewState(r.Context(), reviewID, domain.ReviewState(req.State), id.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.logger.Info("Review state changed",
		zap.String("review_id", reviewID.Hex()),
		zap.String("state", req.State),
		zap.String("moderator_id", id.UserID))
	h.respondWithJSON(w, r, http.StatusOK, toReviewMutationResponse(res))
}
