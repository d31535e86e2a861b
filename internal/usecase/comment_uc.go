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

// CommentUsecase implements comments on reviews.
type CommentUsecase struct {
	comments  domain.CommentRepository
	reviews   domain.ReviewRepository
	people    domain.PersonRepository
	publisher EventPublisher
	metrics   *metrics.MetricsManager
	logger    *logger.Logger
}

func NewCommentUsecase(repos Repositories, pub EventPublisher, m *metrics.MetricsManager, log *logger.Logger) *CommentUsecase {
	return &CommentUsecase{
		comments:  repos.Comments,
		reviews:   repos.Reviews,
		people:    repos.People,
		publisher: pub,
		metrics:   m,
		logger:    log.Named("CommentUsecase"),
	}
}

func commentEvent(c *domain.Comment) map[string]interface{} {
	return map[string]interface{}{
		"comment_id": c.ID.Hex(),
		"review_id":  c.ReviewID.Hex(),
		"user_id":    c.UserID,
	}
}

// CreateComment adds the user's single comment on a review.
func (uc *CommentUsecase) CreateComment(ctx context.Context, reviewID primitive.ObjectID, userID, text string) (*domain.Comment, error) {
	uc.logger.Info("Creating comment", zap.String("review_id", reviewID.Hex()), zap.String("user_id", userID))

	comment, err := domain.NewComment(reviewID, userID, sanitize.Text(text))
	if err != nil {
		return nil, err
	}
	if _, err := uc.reviews.GetByID(ctx, reviewID); err != nil {
		return nil, err
	}
	if err := uc.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	// a review deleted between the check and the insert has already run its comment cascade
	if _, err := uc.reviews.GetByID(ctx, reviewID); err != nil {
		uc.logger.Warn("Review removed while commenting, dropping comment",
			zap.String("review_id", reviewID.Hex()), zap.String("comment_id", comment.ID.Hex()), zap.Error(err))
		if delErr := uc.comments.Delete(context.WithoutCancel(ctx), comment.ID); delErr != nil && !errors.Is(delErr, domain.ErrNotFound) {
			uc.logger.Error("Failed to drop orphaned comment", zap.String("comment_id", comment.ID.Hex()), zap.Error(delErr))
		}
		return nil, err
	}

	publish(ctx, uc.publisher, uc.logger, SubjectCommentCreated, commentEvent(comment))
	uc.metrics.IncComment("created")
	return comment, nil
}

// UpdateComment replaces the text of the author's comment and marks it edited.
func (uc *CommentUsecase) UpdateComment(ctx context.Context, id primitive.ObjectID, editorID, text string) (*domain.Comment, error) {
	comment, err := uc.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.UserID != editorID {
		uc.logger.Warn("User forbidden to update comment", zap.String("comment_id", id.Hex()), zap.String("requesting_user", editorID))
		return nil, domain.ErrForbidden
	}
	text = sanitize.Text(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment text cannot be empty", domain.ErrInvalidInput)
	}

	comment.Text = text
	comment.Edited = true
	comment.UpdatedAt = time.Now().UTC()
	if err := uc.comments.Update(ctx, comment); err != nil {
		return nil, err
	}

	publish(ctx, uc.publisher, uc.logger, SubjectCommentUpdated, commentEvent(comment))
	uc.metrics.IncComment("updated")
	return comment, nil
}

// DeleteComment hard deletes the author's comment.
func (uc *CommentUsecase) DeleteComment(ctx context.Context, id primitive.ObjectID, requesterID string) error {
	comment, err := uc.comments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if comment.UserID != requesterID {
		uc.logger.Warn("User forbidden to delete comment", zap.String("comment_id", id.Hex()), zap.String("requesting_user", requesterID))
		return domain.ErrForbidden
	}
	if err := uc.comments.Delete(ctx, id); err != nil {
		return err
	}

	publish(ctx, uc.publisher, uc.logger, SubjectCommentDeleted, commentEvent(comment))
	uc.metrics.IncComment("deleted")
	return nil
}

// ListComments returns the comments of a review in posting order with authors resolved.
func (uc *CommentUsecase) ListComments(ctx context.Context, reviewID primitive.ObjectID) ([]*domain.Comment, error) {
	comments, err := uc.comments.ListByReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if err := resolveCommentAuthors(ctx, uc.people, comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// ToggleLike flips the liker's like on a comment. Comment likes are separate from review likes.
func (uc *CommentUsecase) ToggleLike(ctx context.Context, id primitive.ObjectID, likerID, name string) (*domain.Comment, bool, error) {
	if likerID == "" {
		return nil, false, fmt.Errorf("%w: likerID cannot be empty", domain.ErrInvalidInput)
	}
	liker := domain.Like{UserID: likerID, Name: likerName(ctx, uc.people, likerID, name)}
	comment, err := uc.comments.ToggleLike(ctx, id, liker)
	if err != nil {
		return nil, false, err
	}
	liked := domain.HasLiked(comment.Likes, likerID)
	uc.metrics.IncLike("comment", liked)
	return comment, liked, nil
}
