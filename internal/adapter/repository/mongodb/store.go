package mongodb

import (
	"fmt"

	"github.com/CesarOsorioP/StateView-sub000/internal/platform/logger"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store bundles the MongoDB repositories of one database.
type Store struct {
	Catalog  *CatalogRepository
	Reviews  *ReviewRepository
	Comments *CommentRepository
	Reports  *ReportRepository
	People   *PersonRepository
}

// NewStore creates every repository, ensuring their indexes.
func NewStore(db *mongo.Database, log *logger.Logger) (*Store, error) {
	reviews, err := NewReviewRepository(db, log)
	if err != nil {
		return nil, fmt.Errorf("review repository: %w", err)
	}
	comments, err := NewCommentRepository(db, log)
	if err != nil {
		return nil, fmt.Errorf("comment repository: %w", err)
	}
	reports, err := NewReportRepository(db, log)
	if err != nil {
		return nil, fmt.Errorf("report repository: %w", err)
	}
	people, err := NewPersonRepository(db, log)
	if err != nil {
		return nil, fmt.Errorf("person repository: %w", err)
	}
	return &Store{
		Catalog:  NewCatalogRepository(db, log),
		Reviews:  reviews,
		Comments: comments,
		Reports:  reports,
		People:   people,
	}, nil
}
