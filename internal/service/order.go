package service

import (
	"fmt"

	"github.com/efreitasn/marketcore/internal/domain"
)

// OrderLineInput is one requested line of an order.
type OrderLineInput struct {
	ListingID uint64
	Quantity  int64
}

// CreateOrderRequest represents the input for order creation.
type CreateOrderRequest struct {
	Caller         domain.Principal
	Items          []OrderLineInput
	AvailableFunds int64
}

// CreateOrder validates the request shape, places the order and dispatches
// the order.created event.
func (s *MarketService) CreateOrder(req CreateOrderRequest) (domain.Order, error) {
	o, err := s.createOrder(req)
	s.observe("create_order", req.Caller, err)
	if err != nil {
		return domain.Order{}, err
	}
	s.metrics.ObserveOrderAmount(o.Amount)
	s.notify(domain.EventOrderCreated, o)
	return o, nil
}

func (s *MarketService) createOrder(req CreateOrderRequest) (domain.Order, error) {
	funds, err := toUint32("available_funds", req.AvailableFunds)
	if err != nil {
		return domain.Order{}, err
	}
	lines := make([]domain.OrderLine, len(req.Items))
	for i, it := range req.Items {
		qty, err := toUint32(fmt.Sprintf("items[%d].quantity", i), it.Quantity)
		if err != nil {
			return domain.Order{}, err
		}
		lines[i] = domain.OrderLine{ListingID: it.ListingID, Quantity: qty}
	}
	return s.market.CreateOrder(req.Caller, lines, funds)
}

// MarkShipped moves one of the caller's sales to shipped.
func (s *MarketService) MarkShipped(caller domain.Principal, orderID uint64) (domain.Order, error) {
	o, err := s.market.MarkShipped(caller, orderID)
	s.observe("mark_shipped", caller, err)
	if err != nil {
		return domain.Order{}, err
	}
	s.notify(domain.EventOrderShipped, o)
	return o, nil
}

// MarkReceived moves one of the caller's purchases to received.
func (s *MarketService) MarkReceived(caller domain.Principal, orderID uint64) (domain.Order, error) {
	o, err := s.market.MarkReceived(caller, orderID)
	s.observe("mark_received", caller, err)
	if err != nil {
		return domain.Order{}, err
	}
	s.notify(domain.EventOrderReceived, o)
	return o, nil
}

// RequestCancellation records or confirms a cancellation request. The event
// is order.cancelled when the request finalised the cancellation and
// order.cancellation_requested otherwise.
func (s *MarketService) RequestCancellation(caller domain.Principal, orderID uint64) (domain.Order, error) {
	o, err := s.market.RequestCancellation(caller, orderID)
	s.observe("request_cancellation", caller, err)
	if err != nil {
		return domain.Order{}, err
	}
	if o.Status == domain.OrderStatusCancelled {
		s.notify(domain.EventOrderCancelled, o)
	} else {
		s.notify(domain.EventOrderCancellationRequested, o)
	}
	return o, nil
}

// MyOrders returns the orders the caller takes part in.
func (s *MarketService) MyOrders(caller domain.Principal) []domain.Order {
	return s.market.MyOrders(caller)
}
