package upload

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"treasurehunt/internal/upload/models"
	"treasurehunt/pkg/platform/sentinel"
)

// InMemoryStore keeps upload metadata in maps under a mutex.
type InMemoryStore struct {
	mu     sync.Mutex
	docs   map[string]*models.UploadedDocument
	images map[string]*models.UploadedImage
}

// NewInMemoryStore creates an empty in-memory upload store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		docs:   make(map[string]*models.UploadedDocument),
		images: make(map[string]*models.UploadedImage),
	}
}

func (s *InMemoryStore) CreateDocument(_ context.Context, doc *models.UploadedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now()
	}
	clone := *doc
	s.docs[doc.ID] = &clone
	return nil
}

func (s *InMemoryStore) FindDocument(_ context.Context, id string) (*models.UploadedDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *doc
	return &clone, nil
}

func (s *InMemoryStore) ListDocuments(_ context.Context, registrationID string) ([]*models.UploadedDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.UploadedDocument
	for _, doc := range s.docs {
		if doc.RegistrationID != registrationID {
			continue
		}
		clone := *doc
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out, nil
}

func (s *InMemoryStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func (s *InMemoryStore) CreateImage(_ context.Context, img *models.UploadedImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if img.ID == "" {
		img.ID = uuid.NewString()
	}
	if img.UploadedAt.IsZero() {
		img.UploadedAt = time.Now()
	}
	clone := *img
	s.images[img.ID] = &clone
	return nil
}

func (s *InMemoryStore) FindImageByPlan(_ context.Context, planID string) (*models.UploadedImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest *models.UploadedImage
	for _, img := range s.images {
		if img.PlanID != planID {
			continue
		}
		if latest == nil || img.UploadedAt.After(latest.UploadedAt) {
			latest = img
		}
	}
	if latest == nil {
		return nil, sentinel.ErrNotFound
	}
	clone := *latest
	return &clone, nil
}

func (s *InMemoryStore) DeleteImage(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.images[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.images, id)
	return nil
}
