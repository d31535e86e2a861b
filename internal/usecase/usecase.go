package usecase

import "github.com/CesarOsorioP/StateView-sub000/internal/domain"

// Repositories groups the persistence ports the usecases depend on.
type Repositories struct {
	Catalog  domain.CatalogRepository
	Reviews  domain.ReviewRepository
	Comments domain.CommentRepository
	Reports  domain.ReportRepository
	People   domain.PersonRepository
}
