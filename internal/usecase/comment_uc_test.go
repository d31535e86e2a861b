package usecase

import (
	"context"
	"testing"

	"github.com/CesarOsorioP/StateView-sub000/internal/domain"
	"github.com/CesarOsorioP/StateView-sub000/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCommentUsecase_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	review := f.createReview(t, userA, 4).Review

	comment, err := f.comments.CreateComment(ctx, review.ID, userB, "  totally agree ")
	require.NoError(t, err)
	assert.Equal(t, "totally agree", comment.Text)
	assert.False(t, comment.Edited)

	_, err = f.comments.CreateComment(ctx, review.ID, userB, "second thoughts")
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	_, err = f.comments.UpdateComment(ctx, comment.ID, userC, "not mine")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	edited, err := f.comments.UpdateComment(ctx, comment.ID, userB, "agree, mostly")
	require.NoError(t, err)
	assert.True(t, edited.Edited)
	assert.Equal(t, "agree, mostly", edited.Text)

	_, err = f.comments.UpdateComment(ctx, comment.ID, userB, "<i></i>")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.ErrorIs(t, f.comments.DeleteComment(ctx, comment.ID, userC), domain.ErrForbidden)
	require.NoError(t, f.comments.DeleteComment(ctx, comment.ID, userB))
	assert.ErrorIs(t, f.comments.DeleteComment(ctx, comment.ID, userB), domain.ErrNotFound)

	f.pub.AssertCalled(t, "Publish", mock.Anything, SubjectCommentCreated, mock.Anything)
	f.pub.AssertCalled(t, "Publish", mock.Anything, SubjectCommentUpdated, mock.Anything)
	f.pub.AssertCalled(t, "Publish", mock.Anything, SubjectCommentDeleted, mock.Anything)
}

func TestCommentUsecase_CreateOnMissingReview(t *testing.T) {
	f := newFixture(t)
	_, err := f.comments.CreateComment(context.Background(), primitive.NewObjectID(), userB, "hello")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.comments.CreateComment(context.Background(), primitive.NewObjectID(), userB, " ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// vanishingReviews deletes a review right after handing it out the first time.
type vanishingReviews struct {
	domain.ReviewRepository
	reads int
}

func (v *vanishingReviews) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Review, error) {
	review, err := v.ReviewRepository.GetByID(ctx, id)
	v.reads++
	if err == nil && v.reads == 1 {
		if delErr := v.ReviewRepository.Delete(ctx, id, review.Version); delErr != nil {
			return nil, delErr
		}
	}
	return review, err
}

func TestCommentUsecase_CreateOnReviewDeletedMeanwhile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	review := f.createReview(t, userA, 4).Review

	repos := f.repos
	repos.Reviews = &vanishingReviews{ReviewRepository: f.store.Reviews}
	uc := NewCommentUsecase(repos, f.pub, nil, logger.NewNop())

	_, err := uc.CreateComment(ctx, review.ID, userB, "first!")
	require.ErrorIs(t, err, domain.ErrNotFound)

	left, err := f.store.Comments.ListByReview(ctx, review.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
	f.pub.AssertNotCalled(t, "Publish", mock.Anything, SubjectCommentCreated, mock.Anything)
}

func TestCommentUsecase_ListComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	review := f.createReview(t, userA, 4).Review

	first, err := f.comments.CreateComment(ctx, review.ID, userB, "first")
	require.NoError(t, err)
	second, err := f.comments.CreateComment(ctx, review.ID, unknownU, "second")
	require.NoError(t, err)

	comments, err := f.comments.ListComments(ctx, review.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, first.ID, comments[0].ID)
	assert.Equal(t, second.ID, comments[1].ID)
	assert.Equal(t, "Bruno", comments[0].Author.Name)
	assert.Equal(t, &domain.AuthorSummary{ID: unknownU}, comments[1].Author)
}

func TestCommentUsecase_LikesAreSeparateFromReviewLikes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	review := f.createReview(t, userA, 4).Review
	comment, err := f.comments.CreateComment(ctx, review.ID, userB, "nice")
	require.NoError(t, err)

	liked, ok, err := f.comments.ToggleLike(ctx, comment.ID, userC, "Carla")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []domain.Like{{UserID: userC, Name: "Carla"}}, liked.Likes)

	got, err := f.reviews.GetReview(ctx, review.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Likes)

	unliked, ok, err := f.comments.ToggleLike(ctx, comment.ID, userC, "Carla")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, unliked.Likes)

	_, _, err = f.comments.ToggleLike(ctx, comment.ID, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
