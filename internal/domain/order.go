package domain

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusReceived  OrderStatus = "received"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusReceived || s == OrderStatusCancelled
}

// OrderLine is one requested (listing, quantity) pair of a purchase.
type OrderLine struct {
	ListingID uint64
	Quantity  uint32
}

// OrderItem is one purchased (product, quantity) pair recorded on an order.
// Items reference products, not the listings they were bought from.
type OrderItem struct {
	ProductID uint64
	Quantity  uint32
}

// Order is a confirmed, priced purchase from a single seller.
type Order struct {
	ID                  uint64
	Items               []OrderItem
	Status              OrderStatus
	Buyer               Principal
	Seller              Principal
	CancellationRequest *Principal // nil until a participant asks to cancel
	Amount              uint32
}

// IsParticipant reports whether p is the buyer or the seller of the order.
func (o *Order) IsParticipant(p Principal) bool {
	return p == o.Buyer || p == o.Seller
}

// Clone returns a deep copy of the order.
func (o *Order) Clone() Order {
	c := *o
	c.Items = make([]OrderItem, len(o.Items))
	copy(c.Items, o.Items)
	if o.CancellationRequest != nil {
		p := *o.CancellationRequest
		c.CancellationRequest = &p
	}
	return c
}
