package store

import (
	"github.com/google/btree"

	"github.com/efreitasn/marketcore/internal/domain"
)

func orderLess(a, b *domain.Order) bool { return a.ID < b.ID }

// OrderStore is the append-only arena of orders keyed by order id.
// Per-user indexes live on domain.User.OrderIDs.
//
// OrderStore is not safe for concurrent use; the engine serialises access.
type OrderStore struct {
	orders *btree.BTreeG[*domain.Order]
}

// NewOrderStore creates an empty OrderStore.
func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders: btree.NewG[*domain.Order](arenaDegree, orderLess),
	}
}

// Append adds an order to the arena.
func (s *OrderStore) Append(o *domain.Order) {
	s.orders.ReplaceOrInsert(o)
}

// Get retrieves an order by ID. It returns domain.ErrInvalidOrderID if the
// order does not exist. The returned pointer is the stored record.
func (s *OrderStore) Get(id uint64) (*domain.Order, error) {
	o, ok := s.orders.Get(&domain.Order{ID: id})
	if !ok {
		return nil, domain.ErrInvalidOrderID
	}
	return o, nil
}

// ByIDs returns copies of the orders with the given ids, in the order the
// ids were given. Unknown ids are skipped.
func (s *OrderStore) ByIDs(ids []uint64) []domain.Order {
	result := make([]domain.Order, 0, len(ids))
	for _, id := range ids {
		if o, ok := s.orders.Get(&domain.Order{ID: id}); ok {
			result = append(result, o.Clone())
		}
	}
	return result
}

// All returns copies of every order in id order.
func (s *OrderStore) All() []domain.Order {
	result := make([]domain.Order, 0, s.orders.Len())
	s.orders.Ascend(func(o *domain.Order) bool {
		result = append(result, o.Clone())
		return true
	})
	return result
}

// Len returns the number of orders.
func (s *OrderStore) Len() int {
	return s.orders.Len()
}
