package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/CesarOsorioP/StateView-sub000/internal/domain"
)

// PersonRepository keeps users in process memory.
type PersonRepository struct {
	mu     sync.RWMutex
	people map[string]domain.Person
}

func NewPersonRepository() *PersonRepository {
	return &PersonRepository{people: make(map[string]domain.Person)}
}

func (r *PersonRepository) Create(_ context.Context, person *domain.Person) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.people[person.ID]; ok {
		return fmt.Errorf("%w: user %s", domain.ErrAlreadyExists, person.ID)
	}
	for _, p := range r.people {
		if strings.EqualFold(p.Email, person.Email) {
			return fmt.Errorf("%w: email %s", domain.ErrAlreadyExists, person.Email)
		}
	}
	r.people[person.ID] = *person
	return nil
}

func (r *PersonRepository) GetByID(_ context.Context, id string) (*domain.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.people[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, id)
	}
	return &p, nil
}

func (r *PersonRepository) GetByIDs(_ context.Context, ids []string) (map[string]*domain.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*domain.Person, len(ids))
	for _, id := range ids {
		if p, ok := r.people[id]; ok {
			out[id] = &p
		}
	}
	return out, nil
}

func (r *PersonRepository) UpdateState(_ context.Context, id string, state domain.AccountState) (*domain.Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.people[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, id)
	}
	p.State = state
	p.UpdatedAt = time.Now().UTC()
	r.people[id] = p
	return &p, nil
}

func (r *PersonRepository) UpdateRole(_ context.Context, id string, role domain.Role) (*domain.Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.people[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, id)
	}
	p.Role = role
	p.UpdatedAt = time.Now().UTC()
	r.people[id] = p
	return &p, nil
}
