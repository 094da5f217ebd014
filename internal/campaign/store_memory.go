package campaign

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"treasurehunt/internal/campaign/models"
	"treasurehunt/pkg/platform/sentinel"
)

// InMemoryStore keeps campaigns in a map under a mutex.
type InMemoryStore struct {
	mu        sync.Mutex
	campaigns map[string]*models.Campaign
}

// NewInMemoryStore creates an empty in-memory campaign store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{campaigns: make(map[string]*models.Campaign)}
}

func cloneCampaign(c *models.Campaign) *models.Campaign {
	clone := *c
	clone.Recipients = append([]string(nil), c.Recipients...)
	if c.ScheduledDate != nil {
		at := *c.ScheduledDate
		clone.ScheduledDate = &at
	}
	return &clone
}

func (s *InMemoryStore) Create(_ context.Context, c *models.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedDate.IsZero() {
		c.CreatedDate = time.Now()
	}
	s.campaigns[c.ID] = cloneCampaign(c)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.campaigns[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneCampaign(c), nil
}

func (s *InMemoryStore) List(_ context.Context, status models.CampaignStatus, limit, offset int) ([]*models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.Campaign
	for _, c := range s.campaigns {
		if status != "" && c.Status != status {
			continue
		}
		out = append(out, cloneCampaign(c))
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

func (s *InMemoryStore) Update(_ context.Context, c *models.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.campaigns[c.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.campaigns[c.ID] = cloneCampaign(c)
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.campaigns[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.campaigns, id)
	return nil
}
