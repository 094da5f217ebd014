package plan

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"treasurehunt/internal/plan/models"
	"treasurehunt/pkg/platform/sentinel"
)

// InMemoryStore keeps plans in a map under a mutex. It backs tests and
// development mode.
type InMemoryStore struct {
	mu    sync.Mutex
	plans map[string]*models.Plan
}

// NewInMemoryStore creates an empty in-memory plan store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{plans: make(map[string]*models.Plan)}
}

func (s *InMemoryStore) Create(_ context.Context, p *models.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, exists := s.plans[p.ID]; exists {
		return sentinel.ErrConflict
	}
	if p.CreatedDate.IsZero() {
		p.CreatedDate = time.Now()
	}
	clone := *p
	s.plans[p.ID] = &clone
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*models.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.plans[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (s *InMemoryStore) List(_ context.Context, status models.PlanStatus, limit, offset int) ([]*models.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.Plan
	for _, p := range s.plans {
		if status != "" && p.Status != status {
			continue
		}
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedDate.After(out[j].CreatedDate)
	})
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryStore) Update(_ context.Context, p *models.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.plans[p.ID]; !ok {
		return sentinel.ErrNotFound
	}
	clone := *p
	s.plans[p.ID] = &clone
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.plans[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.plans, id)
	return nil
}
