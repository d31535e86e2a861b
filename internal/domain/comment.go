package domain

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is a user's reply to a review.
type Comment struct {
	ID        primitive.ObjectID
	ReviewID  primitive.ObjectID
	UserID    string
	Text      string
	Edited    bool
	Likes     []Like
	CreatedAt time.Time
	UpdatedAt time.Time

	Author *AuthorSummary
}

func NewComment(reviewID primitive.ObjectID, userID, text string) (*Comment, error) {
	if reviewID.IsZero() {
		return nil, fmt.Errorf("%w: reviewID cannot be empty", ErrInvalidInput)
	}
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: userID cannot be empty", ErrInvalidInput)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: comment text cannot be empty", ErrInvalidInput)
	}
	now := time.Now().UTC()
	return &Comment{
		ID:        primitive.NewObjectID(),
		ReviewID:  reviewID,
		UserID:    userID,
		Text:      text,
		Likes:     []Like{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
