package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CesarOsorioP/StateView-sub000/internal/domain"
	"github.com/CesarOsorioP/StateView-sub000/internal/platform/logger"
	"github.com/CesarOsorioP/StateView-sub000/internal/platform/metrics"
	"github.com/CesarOsorioP/StateView-sub000/internal/platform/sanitize"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ReportUsecase implements the abuse report pipeline. It never changes account states.
type ReportUsecase struct {
	reports   domain.ReportRepository
	reviews   domain.ReviewRepository
	catalog   domain.CatalogRepository
	people    domain.PersonRepository
	publisher EventPublisher
	metrics   *metrics.MetricsManager
	logger    *logger.Logger
}

func NewReportUsecase(repos Repositories, pub EventPublisher, m *metrics.MetricsManager, log *logger.Logger) *ReportUsecase {
	return &ReportUsecase{
		reports:   repos.Reports,
		reviews:   repos.Reviews,
		catalog:   repos.Catalog,
		people:    repos.People,
		publisher: pub,
		metrics:   m,
		logger:    log.Named("ReportUsecase"),
	}
}

type CreateReportInput struct {
	ReporterID     string
	ReportedUserID string
	Reason         string
	ReviewID       *primitive.ObjectID
}

// ReportedContent pairs a report with the live review it points at.
// Review is nil when the report has no review or the review is gone.
type ReportedContent struct {
	Report *domain.Report
	Review *domain.Review
}

func reportEvent(r *domain.Report) map[string]interface{} {
	event := map[string]interface{}{
		"report_id":        r.ID.Hex(),
		"reporter_id":      r.ReporterID,
		"reported_user_id": r.ReportedUserID,
		"state":            string(r.State),
	}
	if r.ReviewID != nil {
		event["review_id"] = r.ReviewID.Hex()
	}
	if r.ResolvedBy != "" {
		event["resolved_by"] = r.ResolvedBy
	}
	return event
}

// CreateReport files a pending report. When it names a review, the review content is frozen
// into the report now; a review that no longer exists leaves the snapshot empty.
func (uc *ReportUsecase) CreateReport(ctx context.Context, in CreateReportInput) (*domain.Report, error) {
	uc.logger.Info("Creating report", zap.String("reporter_id", in.ReporterID), zap.String("reported_user_id", in.ReportedUserID))

	report, err := domain.NewReport(in.ReporterID, in.ReportedUserID, sanitize.Text(in.Reason), in.ReviewID)
	if err != nil {
		if errors.Is(err, domain.ErrSelfReport) {
			uc.logger.Warn("Self report rejected", zap.String("user_id", in.ReporterID))
		}
		return nil, err
	}

	if report.ReviewID != nil {
		snapshot, err := uc.snapshotReview(ctx, *report.ReviewID, report.ReportedUserID)
		if err != nil {
			return nil, err
		}
		report.Snapshot = snapshot
	}

	if err := uc.reports.Create(ctx, report); err != nil {
		return nil, err
	}

	publish(ctx, uc.publisher, uc.logger, SubjectReportCreated, reportEvent(report))
	uc.metrics.IncReport("created")
	return report, nil
}

// snapshotReview freezes the reported review. The review has to be written by the reported user.
func (uc *ReportUsecase) snapshotReview(ctx context.Context, reviewID primitive.ObjectID, reportedUserID string) (domain.ReportSnapshot, error) {
	review, err := uc.reviews.GetByID(ctx, reviewID)
	if errors.Is(err, domain.ErrNotFound) {
		uc.logger.Info("Reported review no longer exists, snapshot left empty", zap.String("review_id", reviewID.Hex()))
		return domain.ReportSnapshot{}, nil
	}
	if err != nil {
		return domain.ReportSnapshot{}, err
	}
	if review.UserID != reportedUserID {
		uc.logger.Warn("Reported review belongs to another user",
			zap.String("review_id", reviewID.Hex()),
			zap.String("review_author", review.UserID),
			zap.String("reported_user_id", reportedUserID))
		return domain.ReportSnapshot{}, fmt.Errorf("%w: review %s was not written by user %s", domain.ErrInvalidInput, reviewID.Hex(), reportedUserID)
	}

	title := ""
	if item, err := uc.catalog.GetByID(ctx, review.ItemVariant, review.ItemID); err == nil {
		title = item.Title
	} else {
		uc.logger.Debug("Catalog item of reported review not found", zap.String("item_id", review.ItemID), zap.Error(err))
	}
	return review.Snapshot(title), nil
}

// ListReports returns reports, newest first, optionally filtered by state, with both parties resolved.
func (uc *ReportUsecase) ListReports(ctx context.Context, state domain.ReportState) ([]*domain.Report, error) {
	if state != "" && !state.IsValid() {
		return nil, fmt.Errorf("%w: unknown report state '%s'", domain.ErrInvalidInput, state)
	}
	reports, err := uc.reports.List(ctx, domain.ReportFilter{State: state})
	if err != nil {
		return nil, err
	}
	if err := resolveReportParties(ctx, uc.people, reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// ResolveReport moves a pending report to resolved or rejected and records the moderator.
func (uc *ReportUsecase) ResolveReport(ctx context.Context, id primitive.ObjectID, moderatorID string, state domain.ReportState) (*domain.Report, error) {
	uc.logger.Info("Resolving report",
		zap.String("report_id", id.Hex()),
		zap.String("moderator_id", moderatorID),
		zap.String("new_state", string(state)))

	if !state.IsValid() {
		return nil, fmt.Errorf("%w: unknown report state '%s'", domain.ErrInvalidInput, state)
	}
	if !domain.ReportStatePending.CanTransitionTo(state) {
		return nil, fmt.Errorf("%w: reports cannot be moved to %s", domain.ErrInvalidTransition, state)
	}
	if moderatorID == "" {
		return nil, fmt.Errorf("%w: moderatorID cannot be empty", domain.ErrInvalidInput)
	}

	report, err := uc.reports.Resolve(ctx, id, state, moderatorID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	publish(ctx, uc.publisher, uc.logger, SubjectReportResolved, reportEvent(report))
	uc.metrics.IncReport(string(state))
	return report, nil
}

// GetReportedContent looks up the live review behind a report for moderator display.
// A missing review is not an error: the caller falls back to the report snapshot.
func (uc *ReportUsecase) GetReportedContent(ctx context.Context, id primitive.ObjectID) (*ReportedContent, error) {
	report, err := uc.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := resolveReportParties(ctx, uc.people, []*domain.Report{report}); err != nil {
		return nil, err
	}
	content := &ReportedContent{Report: report}
	if report.ReviewID == nil {
		return content, nil
	}

	review, err := uc.reviews.GetByID(ctx, *report.ReviewID)
	if errors.Is(err, domain.ErrNotFound) {
		return content, nil
	}
	if err != nil {
		return nil, err
	}
	if err := resolveReviewAuthors(ctx, uc.people, []*domain.Review{review}); err != nil {
		return nil, err
	}
	content.Review = review
	return content, nil
}

// DeleteReport removes a report outright. It is an administrative action outside the normal workflow.
func (uc *ReportUsecase) DeleteReport(ctx context.Context, id primitive.ObjectID, adminID string) error {
	uc.logger.Info("Deleting report", zap.String("report_id", id.Hex()), zap.String("admin_id", adminID))
	report, err := uc.reports.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.reports.Delete(ctx, id); err != nil {
		return err
	}
	event := reportEvent(report)
	event["deleted_by"] = adminID
	publish(ctx, uc.publisher, uc.logger, SubjectReportDeleted, event)
	uc.metrics.IncReport("deleted")
	return nil
}
