package domain

// Listing is a seller's offer of a product at a unit price with a stock level.
type Listing struct {
	ID        uint64
	ProductID uint64
	Seller    Principal
	UnitPrice uint32
	Stock     uint32
	Active    bool // stored for compatibility, not consulted by any operation
}

// HasSufficientStock reports whether qty units can be taken from the listing.
func (l *Listing) HasSufficientStock(qty uint32) bool {
	return l.Stock >= qty
}

// StockAfter returns the stock left after taking qty units. It returns
// ErrStockExhausted instead of wrapping below zero.
func (l *Listing) StockAfter(qty uint32) (uint32, error) {
	left, ok := CheckedSub32(l.Stock, qty)
	if !ok {
		return 0, ErrStockExhausted
	}
	return left, nil
}
