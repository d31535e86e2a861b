package domain

import (
	"fmt"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReviewState is the lifecycle state of a review.
type ReviewState string

const (
	ReviewStateActive  ReviewState = "active"
	ReviewStatePending ReviewState = "pending"
	ReviewStateBlocked ReviewState = "blocked"
	ReviewStateDeleted ReviewState = "deleted"
)

func (s ReviewState) IsValid() bool {
	switch s {
	case ReviewStateActive, ReviewStatePending, ReviewStateBlocked, ReviewStateDeleted:
		return true
	}
	return false
}

const (
	MinRating  = 0.0
	MaxRating  = 5.0
	RatingStep = 0.5
)

// ValidateRating accepts values in [MinRating, MaxRating] on RatingStep increments.
func ValidateRating(rating float64) error {
	if math.IsNaN(rating) || math.IsInf(rating, 0) {
		return fmt.Errorf("%w: rating must be a number", ErrInvalidInput)
	}
	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("%w: rating must be between %.0f and %.0f", ErrInvalidInput, MinRating, MaxRating)
	}
	if steps := rating / RatingStep; steps != math.Trunc(steps) {
		return fmt.Errorf("%w: rating must be a multiple of %.1f", ErrInvalidInput, RatingStep)
	}
	return nil
}

// Review is a user's star-rated review of a catalog item.
type Review struct {
	ID          primitive.ObjectID
	UserID      string
	ItemID      string
	ItemVariant ItemVariant
	Text        string
	Rating      float64
	State       ReviewState
	Likes       []Like
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int64 // for optimistic locking

	// Author is filled by read paths that resolve the author; it is never persisted.
	Author *AuthorSummary
}

// NewReview creates an active review.
func NewReview(userID, itemID string, variant ItemVariant, text string, rating float64) (*Review, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: userID cannot be empty", ErrInvalidInput)
	}
	if strings.TrimSpace(itemID) == "" {
		return nil, fmt.Errorf("%w: itemID cannot be empty", ErrInvalidInput)
	}
	if !variant.IsValid() {
		return nil, fmt.Errorf("%w: unknown item variant '%s'", ErrInvalidInput, variant)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: review text cannot be empty", ErrInvalidInput)
	}
	if err := ValidateRating(rating); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Review{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		ItemID:      itemID,
		ItemVariant: variant,
		Text:        text,
		Rating:      rating,
		State:       ReviewStateActive,
		Likes:       []Like{},
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     1,
	}, nil
}

// IsActive reports whether the review counts toward its item's rating aggregate.
func (r *Review) IsActive() bool {
	return r.State == ReviewStateActive
}

// Snapshot freezes the reportable content of the review.
func (r *Review) Snapshot(itemTitle string) ReportSnapshot {
	return ReportSnapshot{
		Text:    r.Text,
		Kind:    ContentKindReview,
		Title:   itemTitle,
		Rating:  r.Rating,
		Variant: r.ItemVariant,
	}
}

// ReviewFilter holds parameters for listing reviews. Empty fields do not filter.
type ReviewFilter struct {
	ItemID      string
	ItemVariant ItemVariant
	UserID      string
	State       ReviewState
}
