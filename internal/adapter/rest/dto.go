package rest

import (
	"time"

	"github.com/CesarOsorioP/StateView-sub000/internal/domain"
	"github.com/CesarOsorioP/StateView-sub000/internal/usecase"
)

type createReviewRequest struct {
	ItemID      string   `json:"item_id" validate:"required,max=64"`
	ItemVariant string   `json:"item_variant" validate:"required,oneof=movie series game album"`
	Text        string   `json:"text" validate:"required,max=5000"`
	Rating      *float64 `json:"rating" validate:"required,min=0,max=5,halfstep"`
}

type updateReviewRequest struct {
	Text   *string  `json:"text,omitempty" validate:"omitempty,max=5000"`
	Rating *float64 `json:"rating,omitempty" validate:"omitempty,min=0,max=5,halfstep"`
}

type textRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

type createReportRequest struct {
	ReportedUserID string `json:"reported_user_id"`
	Reason         string `json:"reason" validate:"required,max=1000"`
	ReviewID       string `json:"review_id,omitempty" validate:"omitempty,mongodb"`
}

type stateRequest struct {
	State string `json:"state" validate:"required"`
}

type roleRequest struct {
	Role string `json:"role" validate:"required"`
}

type authorResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Role      string `json:"role,omitempty"`
}

func toAuthorResponse(a *domain.AuthorSummary) *authorResponse {
	if a == nil {
		return nil
	}
	return &authorResponse{ID: a.ID, Name: a.Name, AvatarURL: a.AvatarURL, Role: string(a.Role)}
}

type likeResponse struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
}

func toLikeResponses(likes []domain.Like) []likeResponse {
	out := make([]likeResponse, 0, len(likes))
	for _, l := range likes {
		out = append(out, likeResponse{UserID: l.UserID, Name: l.Name})
	}
	return out
}

type aggregateResponse struct {
	RatingTotal   float64 `json:"rating_total"`
	RatingCount   int64   `json:"rating_count"`
	AverageRating float64 `json:"average_rating"`
}

func toAggregateResponse(a *domain.RatingAggregate) *aggregateResponse {
	if a == nil {
		return nil
	}
	return &aggregateResponse{RatingTotal: a.Total, RatingCount: a.Count, AverageRating: a.Average}
}

type reviewResponse struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	ItemID      string          `json:"item_id"`
	ItemVariant string          `json:"item_variant"`
	Text        string          `json:"text"`
	Rating      float64         `json:"rating"`
	State       string          `json:"state"`
	Likes       []likeResponse  `json:"likes"`
	LikeCount   int             `json:"like_count"`
	Author      *authorResponse `json:"author,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func toReviewResponse(r *domain.Review) *reviewResponse {
	if r == nil {
		return nil
	}
	return &reviewResponse{
		ID:          r.ID.Hex(),
		UserID:      r.UserID,
		ItemID:      r.ItemID,
		ItemVariant: string(r.ItemVariant),
		Text:        r.Text,
		Rating:      r.Rating,
		State:       string(r.State),
		Likes:       toLikeResponses(r.Likes),
		LikeCount:   len(r.Likes),
		Author:      toAuthorResponse(r.Author),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type reviewMutationResponse struct {
	Review *reviewResponse    `json:"review"`
	Item   *aggregateResponse `json:"item_rating,omitempty"`
}

func toReviewMutationResponse(res *usecase.ReviewResult) reviewMutationResponse {
	return reviewMutationResponse{Review: toReviewResponse(res.Review), Item: toAggregateResponse(res.Aggregate)}
}

type commentResponse struct {
	ID        string          `json:"id"`
	ReviewID  string          `json:"review_id"`
	UserID    string          `json:"user_id"`
	Text      string          `json:"text"`
	Edited    bool            `json:"edited"`
	Likes     []likeResponse  `json:"likes"`
	LikeCount int             `json:"like_count"`
	Author    *authorResponse `json:"author,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func toCommentResponse(c *domain.Comment) *commentResponse {
	return &commentResponse{
		ID:        c.ID.Hex(),
		ReviewID:  c.ReviewID.Hex(),
		UserID:    c.UserID,
		Text:      c.Text,
		Edited:    c.Edited,
		Likes:     toLikeResponses(c.Likes),
		LikeCount: len(c.Likes),
		Author:    toAuthorResponse(c.Author),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type likeToggleResponse struct {
	Liked     bool           `json:"liked"`
	LikeCount int            `json:"like_count"`
	Likes     []likeResponse `json:"likes"`
}

type snapshotResponse struct {
	Text    string  `json:"text"`
	Kind    string  `json:"kind"`
	Title   string  `json:"title,omitempty"`
	Rating  float64 `json:"rating"`
	Variant string  `json:"item_variant,omitempty"`
}

type reportResponse struct {
	ID              string            `json:"id"`
	ReporterID      string            `json:"reporter_id"`
	ReportedUserID  string            `json:"reported_user_id"`
	ReviewID        string            `json:"review_id,omitempty"`
	Reason          string            `json:"reason"`
	State           string            `json:"state"`
	ReportedContent *snapshotResponse `json:"reported_content,omitempty"`
	ResolvedBy      string            `json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time        `json:"resolved_at,omitempty"`
	Reporter        *authorResponse   `json:"reporter,omitempty"`
	ReportedUser    *authorResponse   `json:"reported_user,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

func toReportResponse(r *domain.Report) *reportResponse {
	resp := &reportResponse{
		ID:             r.ID.Hex(),
		ReporterID:     r.ReporterID,
		ReportedUserID: r.ReportedUserID,
		Reason:         r.Reason,
		State:          string(r.State),
		ResolvedBy:     r.ResolvedBy,
		ResolvedAt:     r.ResolvedAt,
		Reporter:       toAuthorResponse(r.Reporter),
		ReportedUser:   toAuthorResponse(r.ReportedUser),
		CreatedAt:      r.CreatedAt,
	}
	if r.ReviewID != nil {
		resp.ReviewID = r.ReviewID.Hex()
	}
	if !r.Snapshot.IsEmpty() {
		resp.ReportedContent = &snapshotResponse{
			Text:    r.Snapshot.Text,
			Kind:    string(r.Snapshot.Kind),
			Title:   r.Snapshot.Title,
			Rating:  r.Snapshot.Rating,
			Variant: string(r.Snapshot.Variant),
		}
	}
	return resp
}

type reportedContentResponse struct {
	Report *reportResponse `json:"report"`
	Review *reviewResponse `json:"review"`
}

type personResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Role      string    `json:"role"`
	State     string    `json:"state"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toPersonResponse(p *domain.Person) *personResponse {
	return &personResponse{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		AvatarURL: p.AvatarURL,
		Role:      string(p.Role),
		State:     string(p.State),
		UpdatedAt: p.UpdatedAt,
	}
}

type catalogItemResponse struct {
	ID        string             `json:"id"`
	Variant   string             `json:"variant"`
	Title     string             `json:"title"`
	Year      string             `json:"year,omitempty"`
	PosterURL string             `json:"poster_url,omitempty"`
	Rating    *aggregateResponse `json:"rating"`
}

func toCatalogItemResponse(item *domain.CatalogItem) *catalogItemResponse {
	return &catalogItemResponse{
		ID:        item.ID,
		Variant:   string(item.Variant),
		Title:     item.Title,
		Year:      item.Year,
		PosterURL: item.PosterURL,
		Rating:    toAggregateResponse(&item.Rating),
	}
}
