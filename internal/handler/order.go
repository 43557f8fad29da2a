package handler

import (
	"net/http"

	"github.com/efreitasn/marketcore/internal/domain"
	"github.com/efreitasn/marketcore/internal/service"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	svc *service.MarketService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc *service.MarketService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type orderLineRequest struct {
	ListingID uint64 `json:"listing_id"`
	Quantity  int64  `json:"quantity"`
}

// createOrderRequest is the JSON request body for POST /orders.
type createOrderRequest struct {
	Items          []orderLineRequest `json:"items"`
	AvailableFunds int64              `json:"available_funds"`
}

type orderItemResponse struct {
	ProductID uint64 `json:"product_id"`
	Quantity  uint32 `json:"quantity"`
}

type orderResponse struct {
	OrderID             uint64              `json:"order_id"`
	Items               []orderItemResponse `json:"items"`
	Status              string              `json:"status"`
	Buyer               string              `json:"buyer"`
	Seller              string              `json:"seller"`
	CancellationRequest *string             `json:"cancellation_request"`
	Amount              uint32              `json:"amount"`
}

type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
}

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	items := make([]service.OrderLineInput, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.OrderLineInput{ListingID: it.ListingID, Quantity: it.Quantity}
	}
	o, err := h.svc.CreateOrder(service.CreateOrderRequest{
		Caller:         principal(r),
		Items:          items,
		AvailableFunds: req.AvailableFunds,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, buildOrderResponse(o))
}

// Mine handles GET /orders/mine.
func (h *OrderHandler) Mine(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, orderListResponse{Orders: buildOrderResponses(h.svc.MyOrders(principal(r)))})
}

// Ship handles POST /orders/{order_id}/ship.
func (h *OrderHandler) Ship(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.MarkShipped)
}

// Receive handles POST /orders/{order_id}/receive.
func (h *OrderHandler) Receive(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.MarkReceived)
}

// Cancel handles POST /orders/{order_id}/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.RequestCancellation)
}

func (h *OrderHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	apply func(domain.Principal, uint64) (domain.Order, error),
) {
	id, err := pathID(r, "order_id")
	if err != nil {
		writeDomainError(w, err)
		return
	}
	o, err := apply(principal(r), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildOrderResponse(o))
}

func buildOrderResponse(o domain.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemResponse{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	var req *string
	if o.CancellationRequest != nil {
		s := string(*o.CancellationRequest)
		req = &s
	}
	return orderResponse{
		OrderID:             o.ID,
		Items:               items,
		Status:              string(o.Status),
		Buyer:               string(o.Buyer),
		Seller:              string(o.Seller),
		CancellationRequest: req,
		Amount:              o.Amount,
	}
}

func buildOrderResponses(orders []domain.Order) []orderResponse {
	result := make([]orderResponse, len(orders))
	for i, o := range orders {
		result[i] = buildOrderResponse(o)
	}
	return result
}
