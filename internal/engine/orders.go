package engine

import (
	"github.com/efreitasn/marketcore/internal/domain"
)

// stockUpdate is one planned stock write of a purchase.
type stockUpdate struct {
	listing *domain.Listing
	stock   uint32
}

// CreateOrder buys the given (listing, quantity) lines from a single seller.
// Every check runs before the first write: the order is created with status
// pending and amount equal to the checked sum of unit price times quantity,
// each listing loses exactly the purchased quantity, and both participants
// get the order id appended. On any error nothing changes.
func (m *Marketplace) CreateOrder(caller domain.Principal, lines []domain.OrderLine, availableFunds uint32) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	buyer, err := m.buyer(caller)
	if err != nil {
		return domain.Order{}, err
	}
	if len(lines) == 0 {
		return domain.Order{}, domain.ErrEmptyOrder
	}

	first, err := m.listings.Get(lines[0].ListingID)
	if err != nil {
		return domain.Order{}, err
	}
	sellerID := first.Seller
	if sellerID == caller {
		return domain.Order{}, domain.ErrCannotBuyOwnListing
	}

	if err := m.validateLines(lines, sellerID); err != nil {
		return domain.Order{}, err
	}
	total, err := m.priceLines(lines, availableFunds)
	if err != nil {
		return domain.Order{}, err
	}

	updates, items, err := m.planStock(lines)
	if err != nil {
		return domain.Order{}, err
	}
	seller, err := m.users.Get(sellerID)
	if err != nil {
		return domain.Order{}, err
	}
	id, err := m.ids.NextOrderID()
	if err != nil {
		return domain.Order{}, err
	}

	// Nothing below can fail.
	for _, u := range updates {
		u.listing.Stock = u.stock
	}
	o := &domain.Order{
		ID:     id,
		Items:  items,
		Status: domain.OrderStatusPending,
		Buyer:  caller,
		Seller: sellerID,
		Amount: total,
	}
	m.orders.Append(o)
	buyer.OrderIDs = append(buyer.OrderIDs, id)
	seller.OrderIDs = append(seller.OrderIDs, id)
	m.commit()
	return o.Clone(), nil
}

// validateLines checks each line in input order and reports the first
// violation: repeated listing, zero quantity, unknown listing, foreign
// seller, then insufficient stock.
func (m *Marketplace) validateLines(lines []domain.OrderLine, seller domain.Principal) error {
	seen := make(map[uint64]struct{}, len(lines))
	for _, line := range lines {
		if _, dup := seen[line.ListingID]; dup {
			return domain.ErrDuplicateListing
		}
		seen[line.ListingID] = struct{}{}

		if line.Quantity == 0 {
			return domain.ErrCannotBuyZero
		}

		l, err := m.listings.Get(line.ListingID)
		if err != nil {
			return err
		}
		if l.Seller != seller {
			return domain.ErrSellerMismatch
		}
		if !l.HasSufficientStock(line.Quantity) {
			return domain.ErrInsufficientStock
		}
	}
	return nil
}

// priceLines sums unit price times quantity with checked arithmetic and
// compares the total against the buyer's declared funds. Listings are
// resolved by id.
func (m *Marketplace) priceLines(lines []domain.OrderLine, availableFunds uint32) (uint32, error) {
	var total uint32
	for _, line := range lines {
		l, err := m.listings.Get(line.ListingID)
		if err != nil {
			return 0, err
		}
		lineTotal, err := domain.LineTotal(l.UnitPrice, line.Quantity)
		if err != nil {
			return 0, err
		}
		sum, ok := domain.CheckedAdd32(total, lineTotal)
		if !ok {
			return 0, domain.ErrOutOfRange
		}
		total = sum
	}
	if availableFunds < total {
		return 0, domain.ErrInsufficientFunds
	}
	return total, nil
}

// planStock computes every listing's stock after the purchase with checked
// subtraction, and the product-keyed items the order records.
func (m *Marketplace) planStock(lines []domain.OrderLine) ([]stockUpdate, []domain.OrderItem, error) {
	updates := make([]stockUpdate, 0, len(lines))
	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		l, err := m.listings.Get(line.ListingID)
		if err != nil {
			return nil, nil, err
		}
		left, err := l.StockAfter(line.Quantity)
		if err != nil {
			return nil, nil, err
		}
		updates = append(updates, stockUpdate{listing: l, stock: left})
		items = append(items, domain.OrderItem{ProductID: l.ProductID, Quantity: line.Quantity})
	}
	return updates, items, nil
}

// MarkShipped moves a pending order to shipped. Only its seller may do so.
func (m *Marketplace) MarkShipped(caller domain.Principal, orderID uint64) (domain.Order, error) {
	return m.transition(caller, orderID, func(o *domain.Order) error {
		if o.Seller != caller || o.Status != domain.OrderStatusPending {
			return domain.ErrInvalidOperation
		}
		o.Status = domain.OrderStatusShipped
		return nil
	})
}

// MarkReceived moves a shipped order to received. Only its buyer may do so.
func (m *Marketplace) MarkReceived(caller domain.Principal, orderID uint64) (domain.Order, error) {
	return m.transition(caller, orderID, func(o *domain.Order) error {
		if o.Buyer != caller || o.Status != domain.OrderStatusShipped {
			return domain.ErrInvalidOperation
		}
		o.Status = domain.OrderStatusReceived
		return nil
	})
}

// RequestCancellation runs the two-phase cancellation protocol. The first
// call records the requester and leaves the status alone. A later call by a
// different principal cancels the order when the recorded requester is the
// buyer or the seller; otherwise it replaces the recorded requester.
//
// Neither phase checks that the current caller takes part in the order.
// Callers relying on two-party consent must check participation themselves.
func (m *Marketplace) RequestCancellation(caller domain.Principal, orderID uint64) (domain.Order, error) {
	return m.transition(caller, orderID, func(o *domain.Order) error {
		switch o.Status {
		case domain.OrderStatusCancelled:
			return domain.ErrOrderAlreadyCancelled
		case domain.OrderStatusReceived:
			return domain.ErrInvalidOperation
		}

		if o.CancellationRequest != nil {
			prior := *o.CancellationRequest
			if prior == caller {
				return domain.ErrCancellationAlreadyRequested
			}
			if o.IsParticipant(prior) {
				o.Status = domain.OrderStatusCancelled
				return nil
			}
		}
		requester := caller
		o.CancellationRequest = &requester
		return nil
	})
}

// transition applies a status change to one order under the lock. apply
// must not modify the order when it returns an error.
func (m *Marketplace) transition(caller domain.Principal, orderID uint64, apply func(*domain.Order) error) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, err := m.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if err := apply(o); err != nil {
		return domain.Order{}, err
	}
	m.commit()
	return o.Clone(), nil
}
