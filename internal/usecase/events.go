package usecase

import (
	"context"

	"github.com/CesarOsorioP/StateView-sub000/internal/platform/logger"
	"go.uber.org/zap"
)

// EventPublisher sends domain events to the message bus.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

const (
	SubjectReviewCreated      = "review.created"
	SubjectReviewUpdated      = "review.updated"
	SubjectReviewDeleted      = "review.deleted"
	SubjectReviewModerated    = "review.moderated"
	SubjectCommentCreated     = "comment.created"
	SubjectCommentUpdated     = "comment.updated"
	SubjectCommentDeleted     = "comment.deleted"
	SubjectReportCreated      = "report.created"
	SubjectReportResolved     = "report.resolved"
	SubjectReportDeleted      = "report.deleted"
	SubjectPersonStateChanged = "person.state_changed"
	SubjectPersonRoleChanged  = "person.role_changed"
)

// publish is best effort: a failed publish is logged and never fails the operation.
func publish(ctx context.Context, pub EventPublisher, log *logger.Logger, subject string, data map[string]interface{}) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, subject, data); err != nil {
		log.Warn("Failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}
