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

// ReviewUsecase implements reviews and keeps catalog rating aggregates in step with them.
type ReviewUsecase struct {
	reviews    domain.ReviewRepository
	comments   domain.CommentRepository
	catalog    domain.CatalogRepository
	people     domain.PersonRepository
	aggregates *aggregateWriter
	publisher  EventPublisher
	metrics    *metrics.MetricsManager
	logger     *logger.Logger
}

func NewReviewUsecase(repos Repositories, pub EventPublisher, m *metrics.MetricsManager, retry RetryPolicy, log *logger.Logger) *ReviewUsecase {
	return &ReviewUsecase{
		reviews:    repos.Reviews,
		comments:   repos.Comments,
		catalog:    repos.Catalog,
		people:     repos.People,
		aggregates: newAggregateWriter(repos.Catalog, retry, m, log),
		publisher:  pub,
		metrics:    m,
		logger:     log.Named("ReviewUsecase"),
	}
}

// CreateReviewInput holds the input parameters for creating a review.
type CreateReviewInput struct {
	UserID      string
	ItemID      string
	ItemVariant domain.ItemVariant
	Text        string
	Rating      float64
}

// UpdateReviewInput carries an author's edit. Nil fields are left unchanged.
type UpdateReviewInput struct {
	ReviewID primitive.ObjectID
	EditorID string
	Text     *string
	Rating   *float64
}

// ReviewResult is a mutated review with the aggregate of its catalog item after the mutation.
type ReviewResult struct {
	Review    *domain.Review
	Aggregate *domain.RatingAggregate
}

func reviewEvent(r *domain.Review) map[string]interface{} {
	return map[string]interface{}{
		"review_id":    r.ID.Hex(),
		"user_id":      r.UserID,
		"item_id":      r.ItemID,
		"item_variant": string(r.ItemVariant),
		"rating":       r.Rating,
		"state":        string(r.State),
	}
}

// CreateReview stores a review and adds its rating to the item aggregate.
// If the aggregate cannot be written the review is removed again.
func (uc *ReviewUsecase) CreateReview(ctx context.Context, in CreateReviewInput) (*ReviewResult, error) {
	uc.logger.Info("Creating review",
		zap.String("user_id", in.UserID),
		zap.String("item_id", in.ItemID),
		zap.String("item_variant", string(in.ItemVariant)),
		zap.Float64("rating", in.Rating))

	review, err := domain.NewReview(in.UserID, in.ItemID, in.ItemVariant, sanitize.Text(in.Text), in.Rating)
	if err != nil {
		return nil, err
	}

	if _, err := uc.catalog.GetByID(ctx, review.ItemVariant, review.ItemID); err != nil {
		return nil, err
	}

	existing, err := uc.reviews.FindActiveByUserAndItem(ctx, review.UserID, review.ItemID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: review %s already covers item %s", domain.ErrAlreadyExists, existing.ID.Hex(), review.ItemID)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	if err := uc.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	agg, err := uc.aggregates.apply(ctx, review.ItemVariant, review.ItemID, review.Rating, 1)
	if err != nil {
		uc.logger.Error("Rating aggregate not updated, removing review", zap.String("review_id", review.ID.Hex()), zap.Error(err))
		if delErr := uc.reviews.Delete(context.WithoutCancel(ctx), review.ID, review.Version); delErr != nil {
			uc.logger.Error("Failed to remove review after aggregate failure", zap.String("review_id", review.ID.Hex()), zap.Error(delErr))
		}
		return nil, fmt.Errorf("ReviewUsecase.CreateReview: update rating of %s: %w", review.ItemID, err)
	}

	publish(ctx, uc.publisher, uc.logger, SubjectReviewCreated, reviewEvent(review))
	uc.metrics.IncReview("created")
	uc.logger.Info("Review created", zap.String("review_id", review.ID.Hex()), zap.Float64("average_rating", agg.Average))
	return &ReviewResult{Review: review, Aggregate: agg}, nil
}

// GetReview returns a review with its author resolved.
func (uc *ReviewUsecase) GetReview(ctx context.Context, id primitive.ObjectID) (*domain.Review, error) {
	review, err := uc.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := resolveReviewAuthors(ctx, uc.people, []*domain.Review{review}); err != nil {
		return nil, err
	}
	return review, nil
}

// UpdateReview lets the author change text and rating. A rating change on an active review
// moves the item total by the difference and leaves the count alone. The edit never touches the
// moderation state, and is re-applied on a fresh read when a concurrent write wins the race.
func (uc *ReviewUsecase) UpdateReview(ctx context.Context, in UpdateReviewInput) (*ReviewResult, error) {
	uc.logger.Info("Updating review", zap.String("review_id", in.ReviewID.Hex()), zap.String("editor_id", in.EditorID))

	var res *ReviewResult
	err := retryOnConflict(ctx, func() error {
		var err error
		res, err = uc.updateReview(ctx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (uc *ReviewUsecase) updateReview(ctx context.Context, in UpdateReviewInput) (*ReviewResult, error) {
	review, err := uc.reviews.GetByID(ctx, in.ReviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != in.EditorID {
		uc.logger.Warn("User forbidden to update review",
			zap.String("review_id", in.ReviewID.Hex()),
			zap.String("review_author", review.UserID),
			zap.String("requesting_user", in.EditorID))
		return nil, domain.ErrForbidden
	}

	before := *review
	if in.Text != nil {
		text := sanitize.Text(*in.Text)
		if text == "" {
			return nil, fmt.Errorf("%w: review text cannot be empty", domain.ErrInvalidInput)
		}
		review.Text = text
	}
	if in.Rating != nil {
		if err := domain.ValidateRating(*in.Rating); err != nil {
			return nil, err
		}
		review.Rating = *in.Rating
	}
	if review.Text == before.Text && review.Rating == before.Rating {
		return uc.withCurrentAggregate(ctx, review), nil
	}

	review.UpdatedAt = time.Now().UTC()
	if err := uc.reviews.UpdateContent(ctx, review); err != nil {
		return nil, err
	}

	delta := review.Rating - before.Rating
	if !review.IsActive() || delta == 0 {
		publish(ctx, uc.publisher, uc.logger, SubjectReviewUpdated, reviewEvent(review))
		uc.metrics.IncReview("updated")
		return uc.withCurrentAggregate(ctx, review), nil
	}

	agg, err := uc.aggregates.apply(ctx, review.ItemVariant, review.ItemID, delta, 0)
	if err != nil {
		uc.logger.Error("Rating aggregate not updated, restoring review", zap.String("review_id", review.ID.Hex()), zap.Error(err))
		restore := before
		restore.Version = review.Version
		if rbErr := uc.reviews.UpdateContent(context.WithoutCancel(ctx), &restore); rbErr != nil {
			uc.logger.Error("Failed to restore review after aggregate failure", zap.String("review_id", review.ID.Hex()), zap.Error(rbErr))
		}
		return nil, fmt.Errorf("ReviewUsecase.UpdateReview: update rating of %s: %w", review.ItemID, err)
	}

	event := reviewEvent(review)
	event["previous_rating"] = before.Rating
	publish(ctx, uc.publisher, uc.logger, SubjectReviewUpdated, event)
	uc.metrics.IncReview("updated")
	return &ReviewResult{Review: review, Aggregate: agg}, nil
}

func (uc *ReviewUsecase) withCurrentAggregate(ctx context.Context, review *domain.Review) *ReviewResult {
	res := &ReviewResult{Review: review}
	item, err := uc.catalog.GetByID(ctx, review.ItemVariant, review.ItemID)
	if err != nil {
		uc.logger.Warn("Catalog item not readable", zap.String("item_id", review.ItemID), zap.Error(err))
		return res
	}
	res.Aggregate = &item.Rating
	return res
}

// DeleteReview removes the author's review, its comments, and its rating from the item aggregate.
func (uc *ReviewUsecase) DeleteReview(ctx context.Context, id primitive.ObjectID, requesterID string) (*domain.RatingAggregate, error) {
	uc.logger.Info("Deleting review", zap.String("review_id", id.Hex()), zap.String("user_id", requesterID))

	var review *domain.Review
	err := retryOnConflict(ctx, func() error {
		var err error
		review, err = uc.reviews.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if review.UserID != requesterID {
			uc.logger.Warn("User forbidden to delete review",
				zap.String("review_id", id.Hex()),
				zap.String("review_author", review.UserID),
				zap.String("requesting_user", requesterID))
			return domain.ErrForbidden
		}
		// the rating removed below is the one of the exact version deleted here
		return uc.reviews.Delete(ctx, id, review.Version)
	})
	if err != nil {
		return nil, err
	}

	var agg *domain.RatingAggregate
	if review.IsActive() {
		agg, err = uc.aggregates.apply(ctx, review.ItemVariant, review.ItemID, -review.Rating, -1)
		if err != nil {
			uc.logger.Error("Rating aggregate not updated, restoring review", zap.String("review_id", id.Hex()), zap.Error(err))
			if rbErr := uc.reviews.Create(context.WithoutCancel(ctx), review); rbErr != nil {
				uc.logger.Error("Failed to restore review after aggregate failure", zap.String("review_id", id.Hex()), zap.Error(rbErr))
			}
			return nil, fmt.Errorf("ReviewUsecase.DeleteReview: update rating of %s: %w", review.ItemID, err)
		}
	} else {
		agg = uc.withCurrentAggregate(ctx, review).Aggregate
	}

	if n, err := uc.comments.DeleteByReview(ctx, id); err != nil {
		uc.logger.Error("Failed to delete comments of deleted review", zap.String("review_id", id.Hex()), zap.Error(err))
	} else if n > 0 {
		uc.logger.Info("Deleted comments of review", zap.String("review_id", id.Hex()), zap.Int64("count", n))
	}

	publish(ctx, uc.publisher, uc.logger, SubjectReviewDeleted, reviewEvent(review))
	uc.metrics.IncReview("deleted")
	return agg, nil
}

// ListReviews returns matching reviews, newest first, with authors resolved.
// Without a state filter only active reviews are listed.
func (uc *ReviewUsecase) ListReviews(ctx context.Context, filter domain.ReviewFilter) ([]*domain.Review, error) {
	if filter.ItemVariant != "" && !filter.ItemVariant.IsValid() {
		return nil, fmt.Errorf("%w: unknown item variant '%s'", domain.ErrInvalidInput, filter.ItemVariant)
	}
	if filter.State == "" {
		filter.State = domain.ReviewStateActive
	} else if !filter.State.IsValid() {
		return nil, fmt.Errorf("%w: unknown review state '%s'", domain.ErrInvalidInput, filter.State)
	}

	reviews, err := uc.reviews.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := resolveReviewAuthors(ctx, uc.people, reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// ToggleLike adds the liker to the review's likes, or removes them if already there.
func (uc *ReviewUsecase) ToggleLike(ctx context.Context, id primitive.ObjectID, likerID, name string) (*domain.Review, bool, error) {
	if likerID == "" {
		return nil, false, fmt.Errorf("%w: likerID cannot be empty", domain.ErrInvalidInput)
	}
	liker := domain.Like{UserID: likerID, Name: likerName(ctx, uc.people, likerID, name)}
	review, err := uc.reviews.ToggleLike(ctx, id, liker)
	if err != nil {
		return nil, false, err
	}
	liked := domain.HasLiked(review.Likes, likerID)
	uc.metrics.IncLike("review", liked)
	return review, liked, nil
}

// SetReviewState is the moderator's lifecycle change. Leaving the active state takes the rating
// out of the item aggregate and entering it puts the rating back.
func (uc *ReviewUsecase) SetReviewState(ctx context.Context, id primitive.ObjectID, state domain.ReviewState, moderatorID string) (*ReviewResult, error) {
	uc.logger.Info("Moderating review",
		zap.String("review_id", id.Hex()),
		zap.String("moderator_id", moderatorID),
		zap.String("new_state", string(state)))

	if !state.IsValid() {
		return nil, fmt.Errorf("%w: unknown review state '%s'", domain.ErrInvalidInput, state)
	}

	var res *ReviewResult
	err := retryOnConflict(ctx, func() error {
		var err error
		res, err = uc.setReviewState(ctx, id, state, moderatorID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (uc *ReviewUsecase) setReviewState(ctx context.Context, id primitive.ObjectID, state domain.ReviewState, moderatorID string) (*ReviewResult, error) {
	review, err := uc.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.State == state {
		return uc.withCurrentAggregate(ctx, review), nil
	}

	before := *review
	review.State = state
	review.UpdatedAt = time.Now().UTC()
	if err := uc.reviews.UpdateState(ctx, review); err != nil {
		return nil, err
	}

	var deltaTotal float64
	var deltaCount int64
	switch {
	case !before.IsActive() && review.IsActive():
		deltaTotal, deltaCount = review.Rating, 1
	case before.IsActive() && !review.IsActive():
		deltaTotal, deltaCount = -review.Rating, -1
	}

	res := &ReviewResult{Review: review}
	if deltaCount != 0 {
		res.Aggregate, err = uc.aggregates.apply(ctx, review.ItemVariant, review.ItemID, deltaTotal, deltaCount)
		if err != nil {
			uc.logger.Error("Rating aggregate not updated, restoring review state", zap.String("review_id", id.Hex()), zap.Error(err))
			restore := before
			restore.Version = review.Version
			if rbErr := uc.reviews.UpdateState(context.WithoutCancel(ctx), &restore); rbErr != nil {
				uc.logger.Error("Failed to restore review state", zap.String("review_id", id.Hex()), zap.Error(rbErr))
			}
			return nil, fmt.Errorf("ReviewUsecase.SetReviewState: update rating of %s: %w", review.ItemID, err)
		}
	} else {
		res = uc.withCurrentAggregate(ctx, review)
	}

	event := reviewEvent(review)
	event["previous_state"] = string(before.State)
	event["moderator_id"] = moderatorID
	publish(ctx, uc.publisher, uc.logger, SubjectReviewModerated, event)
	uc.metrics.IncReview("moderated")
	return res, nil
}
