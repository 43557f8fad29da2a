package engine

import (
	"github.com/efreitasn/marketcore/internal/domain"
)

// CreateProduct adds an immutable product to the catalog and returns its id.
// Only sellers may create products.
func (m *Marketplace) CreateProduct(caller domain.Principal, name, description string, category domain.Category) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.seller(caller); err != nil {
		return 0, err
	}

	id, err := m.ids.NextProductID()
	if err != nil {
		return 0, err
	}
	m.products.Insert(&domain.Product{
		ID:          id,
		Name:        name,
		Description: description,
		Category:    category,
	})
	m.commit()
	return id, nil
}

// Product returns the product with the given id.
func (m *Marketplace) Product(id uint64) (domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.ids.ProductIssued(id) {
		return domain.Product{}, domain.ErrInvalidProduct
	}
	return m.products.Get(id)
}

// Products returns the whole catalog in id order.
func (m *Marketplace) Products() []domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.products.All()
}
