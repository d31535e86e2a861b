package usecase

import (
	"context"

	"github.com/CesarOsorioP/StateView-sub000/internal/domain"
)

// lookupPeople loads the people behind ids with one repository call.
func lookupPeople(ctx context.Context, people domain.PersonRepository, ids []string) (map[string]*domain.Person, error) {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return map[string]*domain.Person{}, nil
	}
	return people.GetByIDs(ctx, unique)
}

// summaryOf falls back to a bare id when the person no longer exists.
func summaryOf(found map[string]*domain.Person, id string) *domain.AuthorSummary {
	if p, ok := found[id]; ok {
		return p.Summary()
	}
	return &domain.AuthorSummary{ID: id}
}

func resolveReviewAuthors(ctx context.Context, people domain.PersonRepository, reviews []*domain.Review) error {
	ids := make([]string, 0, len(reviews))
	for _, r := range reviews {
		ids = append(ids, r.UserID)
	}
	found, err := lookupPeople(ctx, people, ids)
	if err != nil {
		return err
	}
	for _, r := range reviews {
		r.Author = summaryOf(found, r.UserID)
	}
	return nil
}

func resolveCommentAuthors(ctx context.Context, people domain.PersonRepository, comments []*domain.Comment) error {
	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.UserID)
	}
	found, err := lookupPeople(ctx, people, ids)
	if err != nil {
		return err
	}
	for _, c := range comments {
		c.Author = summaryOf(found, c.UserID)
	}
	return nil
}

func resolveReportParties(ctx context.Context, people domain.PersonRepository, reports []*domain.Report) error {
	ids := make([]string, 0, 2*len(reports))
	for _, r := range reports {
		ids = append(ids, r.ReporterID, r.ReportedUserID)
	}
	found, err := lookupPeople(ctx, people, ids)
	if err != nil {
		return err
	}
	for _, r := range reports {
		r.Reporter = summaryOf(found, r.ReporterID)
		r.ReportedUser = summaryOf(found, r.ReportedUserID)
	}
	return nil
}

// likerName returns name, or the display name on record when name is empty.
func likerName(ctx context.Context, people domain.PersonRepository, userID, name string) string {
	if name != "" {
		return name
	}
	if p, err := people.GetByID(ctx, userID); err == nil {
		return p.Name
	}
	return ""
}
