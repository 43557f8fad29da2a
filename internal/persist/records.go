package persist

import (
	"github.com/efreitasn/marketcore/internal/domain"
)

// Records are the JSON values stored under each key. They are kept apart from
// the domain types so the on-disk format only changes on purpose.

type userRecord struct {
	Seq        int      `json:"seq"`
	Principal  string   `json:"principal"`
	Name       string   `json:"name"`
	Surname    string   `json:"surname"`
	Email      string   `json:"email"`
	Role       string   `json:"role"`
	ListingIDs []uint64 `json:"listing_ids"`
	OrderIDs   []uint64 `json:"order_ids"`
}

type productRecord struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type listingRecord struct {
	ID        uint64 `json:"id"`
	ProductID uint64 `json:"product_id"`
	Seller    string `json:"seller"`
	UnitPrice uint32 `json:"unit_price"`
	Stock     uint32 `json:"stock"`
	Active    bool   `json:"active"`
}

type orderItemRecord struct {
	ProductID uint64 `json:"product_id"`
	Quantity  uint32 `json:"quantity"`
}

type orderRecord struct {
	ID                  uint64            `json:"id"`
	Items               []orderItemRecord `json:"items"`
	Status              string            `json:"status"`
	Buyer               string            `json:"buyer"`
	Seller              string            `json:"seller"`
	CancellationRequest *string           `json:"cancellation_request"`
	Amount              uint32            `json:"amount"`
}

type countersRecord struct {
	NextProductID uint64 `json:"next_product_id"`
	NextListingID uint64 `json:"next_listing_id"`
	NextOrderID   uint64 `json:"next_order_id"`
}

func toUserRecord(seq int, u domain.User) userRecord {
	return userRecord{
		Seq:        seq,
		Principal:  string(u.Principal),
		Name:       u.Name,
		Surname:    u.Surname,
		Email:      u.Email,
		Role:       string(u.Role),
		ListingIDs: u.ListingIDs,
		OrderIDs:   u.OrderIDs,
	}
}

func (r userRecord) toDomain() (domain.User, error) {
	role, err := domain.ParseRole(r.Role)
	if err != nil {
		return domain.User{}, err
	}
	u := domain.User{
		Principal:  domain.Principal(r.Principal),
		Name:       r.Name,
		Surname:    r.Surname,
		Email:      r.Email,
		Role:       role,
		ListingIDs: r.ListingIDs,
		OrderIDs:   r.OrderIDs,
	}
	if u.ListingIDs == nil {
		u.ListingIDs = []uint64{}
	}
	if u.OrderIDs == nil {
		u.OrderIDs = []uint64{}
	}
	return u, nil
}

func toProductRecord(p domain.Product) productRecord {
	return productRecord{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    string(p.Category),
	}
}

func (r productRecord) toDomain() (domain.Product, error) {
	c, err := domain.ParseCategory(r.Category)
	if err != nil {
		return domain.Product{}, err
	}
	return domain.Product{ID: r.ID, Name: r.Name, Description: r.Description, Category: c}, nil
}

func toListingRecord(l domain.Listing) listingRecord {
	return listingRecord{
		ID:        l.ID,
		ProductID: l.ProductID,
		Seller:    string(l.Seller),
		UnitPrice: l.UnitPrice,
		Stock:     l.Stock,
		Active:    l.Active,
	}
}

func (r listingRecord) toDomain() domain.Listing {
	return domain.Listing{
		ID:        r.ID,
		ProductID: r.ProductID,
		Seller:    domain.Principal(r.Seller),
		UnitPrice: r.UnitPrice,
		Stock:     r.Stock,
		Active:    r.Active,
	}
}

func toOrderRecord(o domain.Order) orderRecord {
	items := make([]orderItemRecord, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemRecord{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	var req *string
	if o.CancellationRequest != nil {
		s := string(*o.CancellationRequest)
		req = &s
	}
	return orderRecord{
		ID:                  o.ID,
		Items:               items,
		Status:              string(o.Status),
		Buyer:               string(o.Buyer),
		Seller:              string(o.Seller),
		CancellationRequest: req,
		Amount:              o.Amount,
	}
}

func (r orderRecord) toDomain() (domain.Order, error) {
	status := domain.OrderStatus(r.Status)
	switch status {
	case domain.OrderStatusPending, domain.OrderStatusShipped, domain.OrderStatusReceived, domain.OrderStatusCancelled:
	default:
		return domain.Order{}, &domain.ValidationError{Message: "unknown order status " + r.Status}
	}
	items := make([]domain.OrderItem, len(r.Items))
	for i, it := range r.Items {
		items[i] = domain.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	var req *domain.Principal
	if r.CancellationRequest != nil {
		p := domain.Principal(*r.CancellationRequest)
		req = &p
	}
	return domain.Order{
		ID:                  r.ID,
		Items:               items,
		Status:              status,
		Buyer:               domain.Principal(r.Buyer),
		Seller:              domain.Principal(r.Seller),
		CancellationRequest: req,
		Amount:              r.Amount,
	}, nil
}
