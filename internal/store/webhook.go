package store

import (
	"sort"
	"sync"

	"github.com/efreitasn/marketcore/internal/domain"
)

// WebhookStore is a thread-safe in-memory store for order-event subscriptions.
// Primary index: webhook_id → webhook.
// Secondary index: owner → event → webhook.
//
// Unlike the marketplace arenas it is read from webhook delivery goroutines,
// so it carries its own lock. Stored webhooks are never shared: Upsert keeps
// its own copy and every getter hands out a fresh one.
type WebhookStore struct {
	mu       sync.RWMutex
	webhooks map[string]*domain.Webhook
	byOwner  map[domain.Principal]map[string]*domain.Webhook
}

// NewWebhookStore creates an empty WebhookStore.
func NewWebhookStore() *WebhookStore {
	return &WebhookStore{
		webhooks: make(map[string]*domain.Webhook),
		byOwner:  make(map[domain.Principal]map[string]*domain.Webhook),
	}
}

// Upsert inserts or updates a subscription keyed by (owner, event). An
// existing subscription keeps its webhook_id and only has URL and UpdatedAt
// refreshed when the URL changed. Returns true if a new subscription was
// created.
func (s *WebhookStore) Upsert(w *domain.Webhook) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.byOwner[w.Owner][w.Event]; ok {
		if existing.URL != w.URL {
			existing.URL = w.URL
			existing.UpdatedAt = w.UpdatedAt
		}
		return false
	}

	stored := clone(w)
	s.webhooks[w.WebhookID] = stored
	if s.byOwner[w.Owner] == nil {
		s.byOwner[w.Owner] = make(map[string]*domain.Webhook)
	}
	s.byOwner[w.Owner][w.Event] = stored
	return true
}

// Get retrieves a webhook by ID. It returns domain.ErrWebhookNotFound if the
// webhook does not exist.
func (s *WebhookStore) Get(id string) (*domain.Webhook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.webhooks[id]
	if !ok {
		return nil, domain.ErrWebhookNotFound
	}
	return clone(w), nil
}

// ListByOwner returns all subscriptions of a principal sorted by event name.
// Returns an empty slice if there are none.
func (s *WebhookStore) ListByOwner(owner domain.Principal) []*domain.Webhook {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.byOwner[owner]
	result := make([]*domain.Webhook, 0, len(events))
	for _, w := range events {
		result = append(result, clone(w))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Event < result[j].Event })
	return result
}

// Delete removes the webhook with the given id if it belongs to owner. A
// webhook owned by someone else is reported as domain.ErrWebhookNotFound.
func (s *WebhookStore) Delete(owner domain.Principal, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.webhooks[id]
	if !ok || w.Owner != owner {
		return domain.ErrWebhookNotFound
	}

	delete(s.webhooks, id)
	if events, ok := s.byOwner[w.Owner]; ok {
		delete(events, w.Event)
		if len(events) == 0 {
			delete(s.byOwner, w.Owner)
		}
	}
	return nil
}

// GetByOwnerEvent returns the subscription for an owner+event pair, or nil.
func (s *WebhookStore) GetByOwnerEvent(owner domain.Principal, event string) *domain.Webhook {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.byOwner[owner][event]
	if !ok {
		return nil
	}
	return clone(w)
}

func clone(w *domain.Webhook) *domain.Webhook {
	c := *w
	return &c
}
