// Package memory provides process-local implementations of the domain repositories.
// They back STORAGE_DRIVER=memory and the usecase and handler tests.
package memory

// Store bundles one repository per entity.
type Store struct {
	Catalog  *CatalogRepository
	Reviews  *ReviewRepository
	Comments *CommentRepository
	Reports  *ReportRepository
	People   *PersonRepository
}

func NewStore() *Store {
	return &Store{
		Catalog:  NewCatalogRepository(),
		Reviews:  NewReviewRepository(),
		Comments: NewCommentRepository(),
		Reports:  NewReportRepository(),
		People:   NewPersonRepository(),
	}
}
