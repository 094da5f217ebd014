package mailqueue

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"treasurehunt/pkg/platform/sentinel"
)

// InMemoryStore keeps entries in a map under a mutex. It backs tests and
// development mode; the mutex gives ClaimReady the same claim atomicity the
// postgres store gets from row locks.
type InMemoryStore struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

// NewInMemoryStore creates an empty in-memory queue store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string]*Entry)}
}

func (s *InMemoryStore) Enqueue(_ context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if _, exists := s.entries[entry.ID]; exists {
		return sentinel.ErrConflict
	}
	if entry.CreatedDate.IsZero() {
		entry.CreatedDate = time.Now()
	}
	entry.UpdatedDate = entry.CreatedDate
	clone := *entry
	s.entries[entry.ID] = &clone
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *entry
	return &clone, nil
}

func (s *InMemoryStore) List(_ context.Context, status Status, limit, offset int) ([]*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Entry
	for _, e := range s.entries {
		if status != "" && e.Status != status {
			continue
		}
		clone := *e
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

func (s *InMemoryStore) CountReady(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, e := range s.entries {
		if e.IsReady(now) {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryStore) ClaimReady(_ context.Context, now time.Time, limit int) ([]*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ready []*Entry
	for _, e := range s.entries {
		if e.IsReady(now) {
			ready = append(ready, e)
		}
	}
	sort.Slice(ready, func(i, j int) bool {
		if ready[i].Priority != ready[j].Priority {
			return ready[i].Priority < ready[j].Priority
		}
		return ready[i].CreatedDate.Before(ready[j].CreatedDate)
	})
	if limit > 0 && len(ready) > limit {
		ready = ready[:limit]
	}

	claimed := make([]*Entry, 0, len(ready))
	for _, e := range ready {
		e.Status = StatusProcessing
		e.UpdatedDate = now
		clone := *e
		claimed = append(claimed, &clone)
	}
	return claimed, nil
}

func (s *InMemoryStore) MarkSent(_ context.Context, id string, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if entry.Status != StatusProcessing {
		return sentinel.ErrInvalidState
	}
	entry.Status = StatusSent
	entry.SentDate = &sentAt
	entry.ErrorMessage = ""
	entry.UpdatedDate = sentAt
	return nil
}

func (s *InMemoryStore) MarkFailed(_ context.Context, id string, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if entry.Status != StatusProcessing {
		return sentinel.ErrInvalidState
	}
	entry.RetryCount++
	entry.Status = StatusFailed
	entry.ErrorMessage = reason
	entry.UpdatedDate = time.Now()
	return nil
}

func (s *InMemoryStore) Cancel(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if entry.Status != StatusPending && entry.Status != StatusScheduled {
		return sentinel.ErrInvalidState
	}
	entry.Status = StatusCancelled
	entry.UpdatedDate = time.Now()
	return nil
}

func (s *InMemoryStore) RequeueRetriable(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, e := range s.entries {
		if e.Retriable() {
			e.Status = StatusPending
			e.UpdatedDate = time.Now()
			count++
		}
	}
	return count, nil
}

func (s *InMemoryStore) DeleteSentBefore(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id, e := range s.entries {
		if e.Status == StatusSent && e.CreatedDate.Before(cutoff) {
			delete(s.entries, id)
			count++
		}
	}
	return count, nil
}

func (s *InMemoryStore) ReclaimStale(_ context.Context, olderThan time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, e := range s.entries {
		if e.Status != StatusProcessing || !e.UpdatedDate.Before(olderThan) {
			continue
		}
		e.RetryCount++
		e.ErrorMessage = "reclaimed: processing timed out"
		if e.RetryCount < e.MaxRetries {
			e.Status = StatusPending
		} else {
			e.Status = StatusFailed
		}
		e.UpdatedDate = time.Now()
		count++
	}
	return count, nil
}

func (s *InMemoryStore) CampaignCounts(_ context.Context, campaignID string) (sent, failed, pending int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.CampaignID != campaignID {
			continue
		}
		switch e.Status {
		case StatusSent:
			sent++
		case StatusFailed:
			failed++
		case StatusCancelled:
			// cancelled entries count toward none of the aggregates
		default:
			pending++
		}
	}
	return sent, failed, pending, nil
}

func (s *InMemoryStore) CancelByCampaign(_ context.Context, campaignID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, e := range s.entries {
		if e.CampaignID != campaignID {
			continue
		}
		if e.Status == StatusPending || e.Status == StatusScheduled || e.Retriable() {
			e.Status = StatusCancelled
			e.UpdatedDate = time.Now()
			count++
		}
	}
	return count, nil
}
