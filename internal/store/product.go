package store

import (
	"github.com/google/btree"

	"github.com/efreitasn/marketcore/internal/domain"
)

func productLess(a, b *domain.Product) bool { return a.ID < b.ID }

// ProductStore is an id-ordered arena of immutable products.
//
// ProductStore is not safe for concurrent use; the engine serialises access.
type ProductStore struct {
	products *btree.BTreeG[*domain.Product]
}

// NewProductStore creates an empty ProductStore.
func NewProductStore() *ProductStore {
	return &ProductStore{
		products: btree.NewG[*domain.Product](arenaDegree, productLess),
	}
}

// Insert stores a product under its id.
func (s *ProductStore) Insert(p *domain.Product) {
	s.products.ReplaceOrInsert(p)
}

// Get retrieves a copy of a product by id. It returns
// domain.ErrInvalidProduct if no product has that id.
func (s *ProductStore) Get(id uint64) (domain.Product, error) {
	p, ok := s.products.Get(&domain.Product{ID: id})
	if !ok {
		return domain.Product{}, domain.ErrInvalidProduct
	}
	return *p, nil
}

// All returns every product in id order.
func (s *ProductStore) All() []domain.Product {
	result := make([]domain.Product, 0, s.products.Len())
	s.products.Ascend(func(p *domain.Product) bool {
		result = append(result, *p)
		return true
	})
	return result
}

// Len returns the number of stored products.
func (s *ProductStore) Len() int {
	return s.products.Len()
}
