package service

import (
	"github.com/efreitasn/marketcore/internal/domain"
)

// Users returns every registered user in registration order.
func (s *MarketService) Users() []domain.User {
	return s.market.Users()
}

// ListingsByCategory groups every listing by product category.
func (s *MarketService) ListingsByCategory() map[domain.Category][]domain.Listing {
	return s.market.ListingsByCategory()
}

// OrdersFor returns the orders principal p takes part in.
func (s *MarketService) OrdersFor(p domain.Principal) []domain.Order {
	return s.market.OrdersFor(p)
}
