package engine

import (
	"github.com/efreitasn/marketcore/internal/domain"
)

// CreateListing publishes stock units of a product at a unit price. The
// product must exist and the initial stock must be positive.
func (m *Marketplace) CreateListing(caller domain.Principal, productID uint64, unitPrice, stock uint32) (domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, err := m.seller(caller)
	if err != nil {
		return domain.Listing{}, err
	}
	// Products are never deleted, so every id below the counter exists.
	if !m.ids.ProductIssued(productID) {
		return domain.Listing{}, domain.ErrInvalidProduct
	}
	if stock == 0 {
		return domain.Listing{}, domain.ErrInsufficientStock
	}

	id, err := m.ids.NextListingID()
	if err != nil {
		return domain.Listing{}, err
	}
	l := &domain.Listing{
		ID:        id,
		ProductID: productID,
		Seller:    caller,
		UnitPrice: unitPrice,
		Stock:     stock,
		Active:    true,
	}
	m.listings.Append(l)
	u.ListingIDs = append(u.ListingIDs, id)
	m.commit()
	return *l, nil
}

// AllListings returns every listing in sequence order.
func (m *Marketplace) AllListings() []domain.Listing {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.listings.All()
}

// OwnListings returns the listings published by caller. Only sellers may ask;
// a seller with no listings gets an empty slice.
func (m *Marketplace) OwnListings(caller domain.Principal) ([]domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.seller(caller); err != nil {
		return nil, err
	}
	return m.listings.BySeller(caller), nil
}
