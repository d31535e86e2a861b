package rest

import (
	"net/http"
)

func (h *Handler) HandleCreateComment(w http.ResponseWriter, r *http.Request) {
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
	var req textRequest
	if err := h.decode(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	comment, err := h.comments.CreateComment(r.Context(), reviewID, id.UserID, req.Text)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondWithJSON(w, r, http.StatusCreated, toCommentResponse(comment))
}

func (h *Handler) HandleListComments(w http.ResponseWriter, r *http.Request) {
	reviewID, err := objectIDParam(r, "reviewID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	comments, err := h.comments.ListComments(r.Context(), reviewID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	out := make([]*commentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, toCommentResponse(c))
	}
	h.respondWithJSON(w, r, http.StatusOK, out)
}

func (h *Handler) HandleUpdateComment(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	commentID, err := objectIDParam(r, "commentID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req textRequest
	if err := h.decode(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	comment, err := h.comments.UpdateComment(r.Context(), commentID, id.UserID, req.Text)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondWithJSON(w, r, http.StatusOK, toCommentResponse(comment))
}

func (h *Handler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	commentID, err := objectIDParam(r, "commentID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.comments.DeleteComment(r.Context(), commentID, id.UserID); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleToggleCommentLike(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	commentID, err := objectIDParam(r, "commentID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	comment, liked, err := h.comments.ToggleLike(r.Context(), commentID, id.UserID, id.Name)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondWithJSON(w, r, http.StatusOK, likeToggleResponse{
		Liked:     liked,
		LikeCount: len(comment.Likes),
		Likes:     toLikeResponses(comment.Likes),
	})
}
