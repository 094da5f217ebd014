package settings

import (
	"context"
	"sort"
	"sync"
	"time"

	"treasurehunt/internal/settings/models"
	"treasurehunt/pkg/platform/sentinel"
)

// InMemoryStore keeps settings in a map under a mutex.
type InMemoryStore struct {
	mu       sync.Mutex
	settings map[string]*models.AppSetting
}

// NewInMemoryStore creates an empty in-memory settings store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{settings: make(map[string]*models.AppSetting)}
}

func (s *InMemoryStore) Get(_ context.Context, key string) (*models.AppSetting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	setting, ok := s.settings[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *setting
	return &clone, nil
}

func (s *InMemoryStore) Set(_ context.Context, key, value string) (*models.AppSetting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	setting := &models.AppSetting{Key: key, Value: value, UpdatedAt: time.Now()}
	s.settings[key] = setting
	clone := *setting
	return &clone, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.AppSetting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.AppSetting, 0, len(s.settings))
	for _, setting := range s.settings {
		clone := *setting
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *InMemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.settings[key]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.settings, key)
	return nil
}
