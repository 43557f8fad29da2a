package engine

import (
	"github.com/efreitasn/marketcore/internal/domain"
)

// MyOrders returns the orders caller takes part in, in the order they were
// recorded. An unregistered caller has no orders.
func (m *Marketplace) MyOrders(caller domain.Principal) []domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.ordersFor(caller)
}

// OrdersFor returns the orders of any principal. It backs the reporting
// queries, which run on behalf of the platform rather than a participant.
func (m *Marketplace) OrdersFor(p domain.Principal) []domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.ordersFor(p)
}

func (m *Marketplace) ordersFor(p domain.Principal) []domain.Order {
	u, err := m.users.Get(p)
	if err != nil {
		return []domain.Order{}
	}
	return m.orders.ByIDs(u.OrderIDs)
}

// Users returns every registered user in registration order.
func (m *Marketplace) Users() []domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.users.All()
}

// ListingsByCategory groups every listing by the category of its product.
// Every category is present; listings keep sequence order within a group.
func (m *Marketplace) ListingsByCategory() map[domain.Category][]domain.Listing {
	m.mu.Lock()
	defer m.mu.Unlock()

	groups := make(map[domain.Category][]domain.Listing, len(domain.Categories))
	for _, c := range domain.Categories {
		groups[c] = []domain.Listing{}
	}
	for _, l := range m.listings.All() {
		p, err := m.products.Get(l.ProductID)
		if err != nil {
			continue
		}
		groups[p.Category] = append(groups[p.Category], l)
	}
	return groups
}
