package service

import (
	"github.com/efreitasn/marketcore/internal/domain"
)

// CreateProductRequest represents the input for product creation.
type CreateProductRequest struct {
	Caller      domain.Principal
	Name        string
	Description string
	Category    string
}

// CreateListingRequest represents the input for listing creation.
type CreateListingRequest struct {
	Caller    domain.Principal
	ProductID uint64
	UnitPrice int64
	Stock     int64
}

// CreateProduct validates the request and adds a product to the catalog.
func (s *MarketService) CreateProduct(req CreateProductRequest) (domain.Product, error) {
	p, err := s.createProduct(req)
	s.observe("create_product", req.Caller, err)
	return p, err
}

func (s *MarketService) createProduct(req CreateProductRequest) (domain.Product, error) {
	if err := checkLength("name", req.Name); err != nil {
		return domain.Product{}, err
	}
	if err := checkLength("description", req.Description); err != nil {
		return domain.Product{}, err
	}
	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		return domain.Product{}, err
	}
	id, err := s.market.CreateProduct(req.Caller, req.Name, req.Description, category)
	if err != nil {
		return domain.Product{}, err
	}
	return s.market.Product(id)
}

// Product returns one catalog entry.
func (s *MarketService) Product(id uint64) (domain.Product, error) {
	return s.market.Product(id)
}

// Products returns the whole catalog in id order.
func (s *MarketService) Products() []domain.Product {
	return s.market.Products()
}

// CreateListing validates the request and publishes a listing.
func (s *MarketService) CreateListing(req CreateListingRequest) (domain.Listing, error) {
	l, err := s.createListing(req)
	s.observe("create_listing", req.Caller, err)
	return l, err
}

func (s *MarketService) createListing(req CreateListingRequest) (domain.Listing, error) {
	price, err := toUint32("unit_price", req.UnitPrice)
	if err != nil {
		return domain.Listing{}, err
	}
	stock, err := toUint32("stock", req.Stock)
	if err != nil {
		return domain.Listing{}, err
	}
	return s.market.CreateListing(req.Caller, req.ProductID, price, stock)
}

// AllListings returns every listing in id order.
func (s *MarketService) AllListings() []domain.Listing {
	return s.market.AllListings()
}

// OwnListings returns the caller's listings.
func (s *MarketService) OwnListings(caller domain.Principal) ([]domain.Listing, error) {
	return s.market.OwnListings(caller)
}
