package registration

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"treasurehunt/internal/registration/models"
	"treasurehunt/pkg/platform/sentinel"
)

// InMemoryStore keeps registrations in a map under a mutex.
type InMemoryStore struct {
	mu   sync.Mutex
	regs map[string]*models.Registration
}

// NewInMemoryStore creates an empty in-memory registration store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{regs: make(map[string]*models.Registration)}
}

func (s *InMemoryStore) Create(_ context.Context, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	if _, exists := s.regs[reg.ID]; exists {
		return sentinel.ErrConflict
	}
	if reg.CreatedDate.IsZero() {
		reg.CreatedDate = time.Now()
	}
	for i := range reg.Members {
		if reg.Members[i].ID == "" {
			reg.Members[i].ID = uuid.NewString()
		}
		reg.Members[i].RegistrationID = reg.ID
	}
	s.regs[reg.ID] = cloneRegistration(reg)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.regs[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneRegistration(reg), nil
}

func (s *InMemoryStore) List(_ context.Context, status models.RegistrationStatus, planID string, limit, offset int) ([]*models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.Registration
	for _, reg := range s.regs {
		if status != "" && reg.Status != status {
			continue
		}
		if planID != "" && reg.PlanID != planID {
			continue
		}
		out = append(out, cloneRegistration(reg))
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

func (s *InMemoryStore) UpdateStatus(_ context.Context, id string, status models.RegistrationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.regs[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	reg.Status = status
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.regs[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.regs, id)
	return nil
}

func (s *InMemoryStore) CountActiveByPlan(_ context.Context, planID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, reg := range s.regs {
		if reg.PlanID == planID && reg.Status != models.StatusCancelled {
			count++
		}
	}
	return count, nil
}

func cloneRegistration(reg *models.Registration) *models.Registration {
	clone := *reg
	clone.Members = append([]models.TeamMember(nil), reg.Members...)
	return &clone
}
