package rest

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/CesarOsorioP/StateView-sub000/internal/domain"
	"github.com/CesarOsorioP/StateView-sub000/internal/usecase"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HandleCreateReport files a report. Reporting yourself is refused before any other check.
func (h *Handler) HandleCreateReport(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req createReportRequest
	if err := h.decode(w, r, &req); err != nil {
		if req.ReportedUserID != "" && strings.TrimSpace(req.ReportedUserID) == id.UserID {
			err = domain.ErrSelfReport
		}
		h.respondError(w, r, err)
		return
	}

	in := usecase.CreateReportInput{
		ReporterID:     id.UserID,
		ReportedUserID: req.ReportedUserID,
		Reason:         req.Reason,
	}
	if req.ReviewID != "" {
		reviewID, err := primitive.ObjectIDFromHex(req.ReviewID)
		if err != nil {
			h.respondError(w, r, fmt.Errorf("%w: invalid review_id '%s'", domain.ErrInvalidInput, req.ReviewID))
			return
		}
		in.ReviewID = &reviewID
	}

	report, err := h.reports.CreateReport(r.Context(), in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondWithJSON(w, r, http.StatusCreated, toReportResponse(report))
}

func (h *Handler) HandleListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.ListReports(r.Context(), domain.ReportState(r.URL.Query().Get("state")))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	out := make([]*reportResponse, 0, len(reports))
	for _, report := range reports {
		out = append(out, toReportResponse(report))
	}
	h.respondWithJSON(w, r, http.StatusOK, out)
}

func (h *Handler) HandleResolveReport(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	reportID, err := objectIDParam(r, "reportID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req stateRequest
	if err := h.decode(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	report, err := h.reports.ResolveReport(r.Context(), reportID, id.UserID, domain.ReportState(req.State))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondWithJSON(w, r, http.StatusOK, toReportResponse(report))
}

// HandleGetReportedContent returns the report with the live review, or a null review if it is gone.
func (h *Handler) HandleGetReportedContent(w http.ResponseWriter, r *http.Request) {
	reportID, err := objectIDParam(r, "reportID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	content, err := h.reports.GetReportedContent(r.Context(), reportID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondWithJSON(w, r, http.StatusOK, reportedContentResponse{
		Report: toReportResponse(content.Report),
		Review: toReviewResponse(content.Review),
	})
}

func (h *Handler) HandleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	reportID, err := objectIDParam(r, "reportID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.reports.DeleteReport(r.Context(), reportID, id.UserID); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
