package mongodb

import (
	"time"

	"github.com/CesarOsorioP/StateView-sub000/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type likeDocument struct {
	UserID string `bson:"user_id"`
	Name   string `bson:"name"`
}

func toLikeDocuments(likes []domain.Like) []likeDocument {
	docs := make([]likeDocument, 0, len(likes))
	for _, l := range likes {
		docs = append(docs, likeDocument{UserID: l.UserID, Name: l.Name})
	}
	return docs
}

func toDomainLikes(docs []likeDocument) []domain.Like {
	likes := make([]domain.Like, 0, len(docs))
	for _, d := range docs {
		likes = append(likes, domain.Like{UserID: d.UserID, Name: d.Name})
	}
	return likes
}

// toggleLikePipeline builds an update pipeline that removes liker from the likes array when
// present and appends it otherwise, so a toggle is a single document write.
func toggleLikePipeline(liker domain.Like) mongo.Pipeline {
	likes := bson.D{{Key: "$ifNull", Value: bson.A{"$likes", bson.A{}}}}
	likerID := bson.D{{Key: "$literal", Value: liker.UserID}}
	likerDoc := bson.D{
		{Key: "user_id", Value: likerID},
		{Key: "name", Value: bson.D{{Key: "$literal", Value: liker.Name}}},
	}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "likes", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$in", Value: bson.A{likerID, bson.D{{Key: "$map", Value: bson.D{
					{Key: "input", Value: likes},
					{Key: "as", Value: "l"},
					{Key: "in", Value: "$$l.user_id"},
				}}}}}},
				bson.D{{Key: "$filter", Value: bson.D{
					{Key: "input", Value: likes},
					{Key: "as", Value: "l"},
					{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$l.user_id", likerID}}}},
				}}},
				bson.D{{Key: "$concatArrays", Value: bson.A{likes, bson.A{likerDoc}}}},
			}}}},
		}}},
	}
}

type reviewDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	UserID      string             `bson:"user_id"`
	ItemID      string             `bson:"item_id"`
	ItemVariant string             `bson:"item_variant"`
	Text        string             `bson:"text"`
	Rating      float64            `bson:"rating"`
	State       string             `bson:"state"`
	Likes       []likeDocument     `bson:"likes"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
	Version     int64              `bson:"version"`
}

func fromDomainReview(r *domain.Review) *reviewDocument {
	return &reviewDocument{
		ID:          r.ID,
		UserID:      r.UserID,
		ItemID:      r.ItemID,
		ItemVariant: string(r.ItemVariant),
		Text:        r.Text,
		Rating:      r.Rating,
		State:       string(r.State),
		Likes:       toLikeDocuments(r.Likes),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		Version:     r.Version,
	}
}

func (d *reviewDocument) toDomain() *domain.Review {
	return &domain.Review{
		ID:          d.ID,
		UserID:      d.UserID,
		ItemID:      d.ItemID,
		ItemVariant: domain.ItemVariant(d.ItemVariant),
		Text:        d.Text,
		Rating:      d.Rating,
		State:       domain.ReviewState(d.State),
		Likes:       toDomainLikes(d.Likes),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
		Version:     d.Version,
	}
}

type commentDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	ReviewID  primitive.ObjectID `bson:"review_id"`
	UserID    string             `bson:"user_id"`
	Text      string             `bson:"text"`
	Edited    bool               `bson:"edited"`
	Likes     []likeDocument     `bson:"likes"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func fromDomainComment(c *domain.Comment) *commentDocument {
	return &commentDocument{
		ID:        c.ID,
		ReviewID:  c.ReviewID,
		UserID:    c.UserID,
		Text:      c.Text,
		Edited:    c.Edited,
		Likes:     toLikeDocuments(c.Likes),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (d *commentDocument) toDomain() *domain.Comment {
	return &domain.Comment{
		ID:        d.ID,
		ReviewID:  d.ReviewID,
		UserID:    d.UserID,
		Text:      d.Text,
		Edited:    d.Edited,
		Likes:     toDomainLikes(d.Likes),
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

type snapshotDocument struct {
	Text    string  `bson:"text,omitempty"`
	Kind    string  `bson:"kind,omitempty"`
	Title   string  `bson:"title,omitempty"`
	Rating  float64 `bson:"rating,omitempty"`
	Variant string  `bson:"variant,omitempty"`
}

type reportDocument struct {
	ID             primitive.ObjectID  `bson:"_id"`
	ReporterID     string              `bson:"reporter_id"`
	ReportedUserID string              `bson:"reported_user_id"`
	ReviewID       *primitive.ObjectID `bson:"review_id,omitempty"`
	Snapshot       snapshotDocument    `bson:"reported_content"`
	Reason         string              `bson:"reason"`
	State          string              `bson:"state"`
	ResolvedBy     string              `bson:"resolved_by,omitempty"`
	ResolvedAt     *time.Time          `bson:"resolved_at,omitempty"`
	CreatedAt      time.Time           `bson:"created_at"`
}

func fromDomainReport(r *domain.Report) *reportDocument {
	return &reportDocument{
		ID:             r.ID,
		ReporterID:     r.ReporterID,
		ReportedUserID: r.ReportedUserID,
		ReviewID:       r.ReviewID,
		Snapshot: snapshotDocument{
			Text:    r.Snapshot.Text,
			Kind:    string(r.Snapshot.Kind),
			Title:   r.Snapshot.Title,
			Rating:  r.Snapshot.Rating,
			Variant: string(r.Snapshot.Variant),
		},
		Reason:     r.Reason,
		State:      string(r.State),
		ResolvedBy: r.ResolvedBy,
		ResolvedAt: r.ResolvedAt,
		CreatedAt:  r.CreatedAt,
	}
}

func (d *reportDocument) toDomain() *domain.Report {
	r := &domain.Report{
		ID:             d.ID,
		ReporterID:     d.ReporterID,
		ReportedUserID: d.ReportedUserID,
		ReviewID:       d.ReviewID,
		Snapshot: domain.ReportSnapshot{
			Text:    d.Snapshot.Text,
			Kind:    domain.ContentKind(d.Snapshot.Kind),
			Title:   d.Snapshot.Title,
			Rating:  d.Snapshot.Rating,
			Variant: domain.ItemVariant(d.Snapshot.Variant),
		},
		Reason:     d.Reason,
		State:      domain.ReportState(d.State),
		ResolvedBy: d.ResolvedBy,
		CreatedAt:  d.CreatedAt.UTC(),
	}
	if d.ResolvedAt != nil {
		at := d.ResolvedAt.UTC()
		r.ResolvedAt = &at
	}
	return r
}

type personDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	AvatarURL    string             `bson:"avatar_url,omitempty"`
	Role         string             `bson:"role"`
	State        string             `bson:"account_state"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func fromDomainPerson(p *domain.Person) (*personDocument, error) {
	oid, err := primitive.ObjectIDFromHex(p.ID)
	if err != nil {
		return nil, err
	}
	return &personDocument{
		ID:           oid,
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		AvatarURL:    p.AvatarURL,
		Role:         string(p.Role),
		State:        string(p.State),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}, nil
}

func (d *personDocument) toDomain() *domain.Person {
	return &domain.Person{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		AvatarURL:    d.AvatarURL,
		Role:         domain.Role(d.Role),
		State:        domain.AccountState(d.State),
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

type catalogDocument struct {
	ID            string    `bson:"_id"`
	Title         string    `bson:"title"`
	Year          string    `bson:"year,omitempty"`
	PosterURL     string    `bson:"poster_url,omitempty"`
	RatingTotal   float64   `bson:"rating_total"`
	RatingCount   int64     `bson:"rating_count"`
	AverageRating float64   `bson:"average_rating"`
	CreatedAt     time.Time `bson:"created_at"`
}

func (d *catalogDocument) toDomain(variant domain.ItemVariant) *domain.CatalogItem {
	return &domain.CatalogItem{
		ID:        d.ID,
		Variant:   variant,
		Title:     d.Title,
		Year:      d.Year,
		PosterURL: d.PosterURL,
		Rating: domain.RatingAggregate{
			Total:   d.RatingTotal,
			Count:   d.RatingCount,
			Average: d.AverageRating,
		},
		CreatedAt: d.CreatedAt.UTC(),
	}
}
