package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/efreitasn/marketcore/internal/domain"
	"github.com/efreitasn/marketcore/internal/metrics"
	"github.com/efreitasn/marketcore/internal/store"
)

// Valid webhook event types, in the order they are reported in errors.
var webhookEvents = []string{
	domain.EventOrderCreated,
	domain.EventOrderShipped,
	domain.EventOrderReceived,
	domain.EventOrderCancellationRequested,
	domain.EventOrderCancelled,
}

func isWebhookEvent(e string) bool {
	for _, v := range webhookEvents {
		if v == e {
			return true
		}
	}
	return false
}

// UserLookup resolves a registered principal.
type UserLookup interface {
	User(caller domain.Principal) (domain.User, error)
}

// UpsertWebhookRequest represents the input for webhook registration.
type UpsertWebhookRequest struct {
	Owner  domain.Principal
	URL    string
	Events []string
}

// WebhookService handles webhook CRUD and order event dispatch.
type WebhookService struct {
	store   *store.WebhookStore
	users   UserLookup
	client  *http.Client
	log     zerolog.Logger
	metrics *metrics.Metrics
	wg      sync.WaitGroup // in-flight deliveries
}

// NewWebhookService creates a new WebhookService with the given dependencies.
func NewWebhookService(
	webhookStore *store.WebhookStore,
	users UserLookup,
	webhookTimeout time.Duration,
	log zerolog.Logger,
	m *metrics.Metrics,
) *WebhookService {
	return &WebhookService{
		store: webhookStore,
		users: users,
		client: &http.Client{
			Timeout: webhookTimeout,
		},
		log:     log.With().Str("component", "webhooks").Logger(),
		metrics: m,
	}
}

// Upsert validates the request and creates or updates webhook subscriptions.
// Returns the resulting webhooks, whether any new subscriptions were created, and any error.
func (s *WebhookService) Upsert(req UpsertWebhookRequest) ([]*domain.Webhook, bool, error) {
	if _, err := s.users.User(req.Owner); err != nil {
		return nil, false, err
	}

	if req.URL == "" {
		return nil, false, &domain.ValidationError{Message: "url is required"}
	}
	if len(req.URL) > 2048 {
		return nil, false, &domain.ValidationError{Message: "url must be at most 2048 characters"}
	}
	parsed, err := url.ParseRequestURI(req.URL)
	if err != nil || !parsed.IsAbs() {
		return nil, false, &domain.ValidationError{Message: "url must be a valid absolute URL"}
	}
	if parsed.Scheme != "https" {
		return nil, false, &domain.ValidationError{Message: "url must use https scheme"}
	}

	if len(req.Events) == 0 {
		return nil, false, &domain.ValidationError{Message: "events must be a non-empty array"}
	}

	// Deduplicate events while preserving order and validating.
	seen := make(map[string]bool, len(req.Events))
	deduped := make([]string, 0, len(req.Events))
	for _, event := range req.Events {
		if !isWebhookEvent(event) {
			return nil, false, &domain.ValidationError{
				Message: fmt.Sprintf("unknown event type: %s, must be one of: %s", event, strings.Join(webhookEvents, ", ")),
			}
		}
		if !seen[event] {
			seen[event] = true
			deduped = append(deduped, event)
		}
	}

	now := time.Now().UTC().Truncate(time.Second)
	anyCreated := false
	webhooks := make([]*domain.Webhook, 0, len(deduped))

	for _, event := range deduped {
		w := &domain.Webhook{
			WebhookID: uuid.New().String(),
			Owner:     req.Owner,
			Event:     event,
			URL:       req.URL,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if s.store.Upsert(w) {
			anyCreated = true
			webhooks = append(webhooks, w)
		} else if existing := s.store.GetByOwnerEvent(req.Owner, event); existing != nil {
			webhooks = append(webhooks, existing)
		}
	}

	s.log.Info().
		Str("owner", string(req.Owner)).
		Strs("events", deduped).
		Bool("created", anyCreated).
		Msg("webhooks upserted")
	return webhooks, anyCreated, nil
}

// List returns the caller's webhook subscriptions.
func (s *WebhookService) List(owner domain.Principal) ([]*domain.Webhook, error) {
	if _, err := s.users.User(owner); err != nil {
		return nil, err
	}
	return s.store.ListByOwner(owner), nil
}

// Delete removes one of the caller's webhook subscriptions.
func (s *WebhookService) Delete(owner domain.Principal, webhookID string) error {
	return s.store.Delete(owner, webhookID)
}

// orderEventPayload is the JSON payload of every order event.
type orderEventPayload struct {
	Event     string         `json:"event"`
	Timestamp string         `json:"timestamp"`
	Data      orderEventData `json:"data"`
}

type orderEventItem struct {
	ProductID uint64 `json:"product_id"`
	Quantity  uint32 `json:"quantity"`
}

type orderEventData struct {
	OrderID             uint64           `json:"order_id"`
	Status              string           `json:"status"`
	Buyer               string           `json:"buyer"`
	Seller              string           `json:"seller"`
	Amount              uint32           `json:"amount"`
	Items               []orderEventItem `json:"items"`
	CancellationRequest *string          `json:"cancellation_request"`
}

// DispatchOrderEvent notifies the buyer's and the seller's subscriptions to
// event. Fire-and-forget: delivery runs in the background and failures are
// only logged.
func (s *WebhookService) DispatchOrderEvent(event string, o domain.Order) {
	payload := buildOrderEventPayload(event, o)
	for _, p := range []domain.Principal{o.Buyer, o.Seller} {
		wh := s.store.GetByOwnerEvent(p, event)
		if wh == nil {
			continue
		}
		s.wg.Add(1)
		go func(wh *domain.Webhook) {
			defer s.wg.Done()
			s.deliver(wh, event, payload)
		}(wh)
	}
}

// Wait blocks until every in-flight delivery has finished.
func (s *WebhookService) Wait() {
	s.wg.Wait()
}

func buildOrderEventPayload(event string, o domain.Order) orderEventPayload {
	items := make([]orderEventItem, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderEventItem{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	var req *string
	if o.CancellationRequest != nil {
		r := string(*o.CancellationRequest)
		req = &r
	}
	return orderEventPayload{
		Event:     event,
		Timestamp: time.Now().UTC().Truncate(time.Second).Format(time.RFC3339),
		Data: orderEventData{
			OrderID:             o.ID,
			Status:              string(o.Status),
			Buyer:               string(o.Buyer),
			Seller:              string(o.Seller),
			Amount:              o.Amount,
			Items:               items,
			CancellationRequest: req,
		},
	}
}

// deliver sends the webhook payload via HTTP POST with the required headers.
func (s *WebhookService) deliver(wh *domain.Webhook, eventType string, payload orderEventPayload) {
	deliveryID := uuid.New().String()
	err := s.post(wh, eventType, deliveryID, payload)
	s.metrics.ObserveWebhookDelivery(eventType, err)

	evt := s.log.Debug()
	if err != nil {
		evt = s.log.Warn().Err(err)
	}
	evt.Str("webhook_id", wh.WebhookID).
		Str("delivery_id", deliveryID).
		Str("event", eventType).
		Uint64("order_id", payload.Data.OrderID).
		Msg("webhook delivery")
}

func (s *WebhookService) post(wh *domain.Webhook, eventType, deliveryID string, payload orderEventPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, wh.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Delivery-Id", deliveryID)
	req.Header.Set("X-Webhook-Id", wh.WebhookID)
	req.Header.Set("X-Event-Type", eventType)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
