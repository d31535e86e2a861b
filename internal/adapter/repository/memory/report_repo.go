package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/CesarOsorioP/StateView-sub000/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReportRepository keeps reports in process memory.
type ReportRepository struct {
	mu      sync.RWMutex
	reports map[primitive.ObjectID]domain.Report
}

func NewReportRepository() *ReportRepository {
	return &ReportRepository{reports: make(map[primitive.ObjectID]domain.Report)}
}

func copyReport(r domain.Report) *domain.Report {
	if r.ReviewID != nil {
		id := *r.ReviewID
		r.ReviewID = &id
	}
	if r.ResolvedAt != nil {
		at := *r.ResolvedAt
		r.ResolvedAt = &at
	}
	r.Reporter = nil
	r.ReportedUser = nil
	return &r
}

func (r *ReportRepository) Create(_ context.Context, report *domain.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reports[report.ID]; ok {
		return fmt.Errorf("%w: report %s", domain.ErrAlreadyExists, report.ID.Hex())
	}
	r.reports[report.ID] = *copyReport(*report)
	return nil
}

func (r *ReportRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	report, ok := r.reports[id]
	if !ok {
		return nil, fmt.Errorf("%w: report %s", domain.ErrNotFound, id.Hex())
	}
	return copyReport(report), nil
}

func (r *ReportRepository) List(_ context.Context, filter domain.ReportFilter) ([]*domain.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Report, 0)
	for _, report := range r.reports {
		if filter.State != "" && report.State != filter.State {
			continue
		}
		out = append(out, copyReport(report))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

func (r *ReportRepository) Resolve(_ context.Context, id primitive.ObjectID, state domain.ReportState, moderatorID string, at time.Time) (*domain.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.reports[id]
	if !ok {
		return nil, fmt.Errorf("%w: report %s", domain.ErrNotFound, id.Hex())
	}
	if !report.State.CanTransitionTo(state) {
		return nil, fmt.Errorf("%w: report %s is %s", domain.ErrInvalidTransition, id.Hex(), report.State)
	}
	report.State = state
	report.ResolvedBy = moderatorID
	report.ResolvedAt = &at
	r.reports[id] = report
	return copyReport(report), nil
}

func (r *ReportRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reports[id]; !ok {
		return fmt.Errorf("%w: report %s", domain.ErrNotFound, id.Hex())
	}
	delete(r.reports, id)
	return nil
}
