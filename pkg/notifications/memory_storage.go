package notifications

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"
)

// MemorySubscriptionStore is an in-memory SubscriptionStore for development and tests.
type MemorySubscriptionStore struct {
	subscriptions map[string]Subscription
	mu            sync.RWMutex
}

func NewMemorySubscriptionStore() *MemorySubscriptionStore {
	return &MemorySubscriptionStore{subscriptions: make(map[string]Subscription)}
}

func (s *MemorySubscriptionStore) Upsert(ctx context.Context, in SubscriptionInput, now time.Time) (*Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existing *Subscription
	if sub, ok := s.subscriptions[in.UserID]; ok {
		existing = &sub
	}

	merged := in.Merge(existing, now)
	s.subscriptions[in.UserID] = merged

	out := cloneSubscription(merged)
	return &out, nil
}

func (s *MemorySubscriptionStore) Get(ctx context.Context, userID string) (*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subscriptions[userID]
	if !ok {
		return nil, ErrSubscriptionNotFound
	}

	out := cloneSubscription(sub)
	return &out, nil
}

func cloneSubscription(s Subscription) Subscription {
	s.Channels = slices.Clone(s.Channels)
	return s
}

// MemoryStorage is an in-memory notification Storage for development and tests.
type MemoryStorage struct {
	byID   map[string]Notification
	byUser map[string][]string // userID -> notification ids in insertion order
	mu     sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		byID:   make(map[string]Notification),
		byUser: make(map[string][]string),
	}
}

func (s *MemoryStorage) Create(ctx context.Context, n Notification) error {
	if n.ID == "" {
		return errors.New("notification ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[n.ID]; exists {
		return errors.New("notification ID already exists")
	}

	s.byID[n.ID] = cloneNotification(n)
	s.byUser[n.UserID] = append(s.byUser[n.UserID], n.ID)
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, id string) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.byID[id]
	if !ok {
		return nil, ErrNotificationNotFound
	}

	out := cloneNotification(n)
	return &out, nil
}

func (s *MemoryStorage) UpdateStatus(ctx context.Context, id string, from, to Status, sentAt *time.Time, now time.Time) (*Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.byID[id]
	if !ok {
		return nil, ErrNotificationNotFound
	}
	if n.Status != from {
		return nil, ErrInvalidTransition
	}

	n.Status = to
	if to == StatusSent && sentAt != nil {
		at := *sentAt
		n.SentAt = &at
	}
	n.UpdatedAt = now
	s.byID[id] = n

	out := cloneNotification(n)
	return &out, nil
}

func (s *MemoryStorage) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.byID[id]
	if !ok {
		return ErrNotificationNotFound
	}
	delete(s.byID, id)
	s.byUser[n.UserID] = slices.DeleteFunc(s.byUser[n.UserID], func(v string) bool { return v == id })
	return nil
}

func (s *MemoryStorage) ListByUser(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	s.mu.RLock()
	ids := s.byUser[userID]
	list := make([]Notification, 0, len(ids))
	for _, id := range ids {
		list = append(list, cloneNotification(s.byID[id]))
	}
	s.mu.RUnlock()

	// Newest first; equal timestamps keep reverse insertion order.
	slices.Reverse(list)
	slices.SortStableFunc(list, func(a, b Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return paginate(list, opts), nil
}

func paginate(list []Notification, opts ListOptions) []Notification {
	start := min(max(opts.Offset, 0), len(list))
	end := len(list)
	if opts.Limit > 0 {
		end = min(start+opts.Limit, len(list))
	}
	return list[start:end]
}

func cloneNotification(n Notification) Notification {
	n.Content = maps.Clone(n.Content)
	if n.SentAt != nil {
		at := *n.SentAt
		n.SentAt = &at
	}
	return n
}
