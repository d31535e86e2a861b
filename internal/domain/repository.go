package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CatalogRepository reads catalog items and moves their rating aggregates.
type CatalogRepository interface {
	GetByID(ctx context.Context, variant ItemVariant, id string) (*CatalogItem, error)
	// ApplyRatingDelta adds deltaTotal and deltaCount to the item's aggregate and recomputes the
	// average in a single atomic write. The count is floored at zero. Returns the aggregate after the write.
	ApplyRatingDelta(ctx context.Context, variant ItemVariant, id string, deltaTotal float64, deltaCount int64) (*RatingAggregate, error)
	// SetRating overwrites the aggregate, used to reconcile it against the active reviews.
	SetRating(ctx context.Context, variant ItemVariant, id string, total float64, count int64) (*RatingAggregate, error)
	Upsert(ctx context.Context, item *CatalogItem) error
}

// ReviewRepository defines persistence for reviews and their embedded likes.
type ReviewRepository interface {
	// Create returns ErrAlreadyExists when the author already has an active review of the item.
	Create(ctx context.Context, review *Review) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*Review, error)
	FindActiveByUserAndItem(ctx context.Context, userID, itemID string) (*Review, error)
	// UpdateContent persists the author's text, rating and updated-at. UpdateState persists the
	// moderation state and updated-at. Both only write when the stored version equals review.Version,
	// return ErrOptimisticLock otherwise, and increment review.Version on success.
	UpdateContent(ctx context.Context, review *Review) error
	UpdateState(ctx context.Context, review *Review) error
	// Delete removes the review when the stored version equals version.
	Delete(ctx context.Context, id primitive.ObjectID, version int64) error
	// List orders by creation time descending, newest id first on ties.
	List(ctx context.Context, filter ReviewFilter) ([]*Review, error)
	ToggleLike(ctx context.Context, id primitive.ObjectID, liker Like) (*Review, error)
	// SumActiveRatings returns the rating total and count over the active reviews of an item.
	SumActiveRatings(ctx context.Context, variant ItemVariant, itemID string) (float64, int64, error)
}

// CommentRepository defines persistence for comments and their embedded likes.
type CommentRepository interface {
	// Create returns ErrAlreadyExists when the author already commented on the review.
	Create(ctx context.Context, comment *Comment) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*Comment, error)
	Update(ctx context.Context, comment *Comment) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// ListByReview orders by creation time ascending.
	ListByReview(ctx context.Context, reviewID primitive.ObjectID) ([]*Comment, error)
	DeleteByReview(ctx context.Context, reviewID primitive.ObjectID) (int64, error)
	ToggleLike(ctx context.Context, id primitive.ObjectID, liker Like) (*Comment, error)
}

// ReportRepository defines persistence for abuse reports.
type ReportRepository interface {
	Create(ctx context.Context, report *Report) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*Report, error)
	// List orders by creation time descending, newest id first on ties.
	List(ctx context.Context, filter ReportFilter) ([]*Report, error)
	// Resolve moves a pending report to state. It returns ErrNotFound for a missing report and
	// ErrInvalidTransition when the report is no longer pending.
	Resolve(ctx context.Context, id primitive.ObjectID, state ReportState, moderatorID string, at time.Time) (*Report, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// PersonRepository defines persistence for users.
type PersonRepository interface {
	// Create returns ErrAlreadyExists when the email is taken.
	Create(ctx context.Context, person *Person) error
	GetByID(ctx context.Context, id string) (*Person, error)
	// GetByIDs returns the people found, keyed by id. Unknown ids are skipped.
	GetByIDs(ctx context.Context, ids []string) (map[string]*Person, error)
	UpdateState(ctx context.Context, id string, state AccountState) (*Person, error)
	UpdateRole(ctx context.Context, id string, role Role) (*Person, error)
}
