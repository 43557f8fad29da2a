package handler

import (
	"net/http"

	"github.com/efreitasn/marketcore/internal/domain"
	"github.com/efreitasn/marketcore/internal/service"
)

// CatalogHandler handles HTTP requests for products and listings.
type CatalogHandler struct {
	svc *service.MarketService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(svc *service.MarketService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// createProductRequest is the JSON request body for POST /products.
type createProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// createListingRequest is the JSON request body for POST /listings.
type createListingRequest struct {
	ProductID uint64 `json:"product_id"`
	UnitPrice int64  `json:"unit_price"`
	Stock     int64  `json:"stock"`
}

type productResponse struct {
	ProductID   uint64 `json:"product_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type productListResponse struct {
	Products []productResponse `json:"products"`
}

type listingResponse struct {
	ListingID uint64 `json:"listing_id"`
	ProductID uint64 `json:"product_id"`
	Seller    string `json:"seller"`
	UnitPrice uint32 `json:"unit_price"`
	Stock     uint32 `json:"stock"`
	Active    bool   `json:"active"`
}

type listingListResponse struct {
	Listings []listingResponse `json:"listings"`
}

// CreateProduct handles POST /products.
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	p, err := h.svc.CreateProduct(service.CreateProductRequest{
		Caller:      principal(r),
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, buildProductResponse(p))
}

// Product handles GET /products/{product_id}.
func (h *CatalogHandler) Product(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "product_id")
	if err != nil {
		writeDomainError(w, err)
		return
	}
	p, err := h.svc.Product(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildProductResponse(p))
}

// Products handles GET /products.
func (h *CatalogHandler) Products(w http.ResponseWriter, r *http.Request) {
	products := h.svc.Products()
	resp := productListResponse{Products: make([]productResponse, len(products))}
	for i, p := range products {
		resp.Products[i] = buildProductResponse(p)
	}
	WriteJSON(w, http.StatusOK, resp)
}

// CreateListing handles POST /listings.
func (h *CatalogHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	l, err := h.svc.CreateListing(service.CreateListingRequest{
		Caller:    principal(r),
		ProductID: req.ProductID,
		UnitPrice: req.UnitPrice,
		Stock:     req.Stock,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, buildListingResponse(l))
}

// AllListings handles GET /listings.
func (h *CatalogHandler) AllListings(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, listingListResponse{Listings: buildListingResponses(h.svc.AllListings())})
}

// OwnListings handles GET /listings/mine.
func (h *CatalogHandler) OwnListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.svc.OwnListings(principal(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, listingListResponse{Listings: buildListingResponses(listings)})
}

func buildProductResponse(p domain.Product) productResponse {
	return productResponse{
		ProductID:   p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    string(p.Category),
	}
}

func buildListingResponse(l domain.Listing) listingResponse {
	return listingResponse{
		ListingID: l.ID,
		ProductID: l.ProductID,
		Seller:    string(l.Seller),
		UnitPrice: l.UnitPrice,
		Stock:     l.Stock,
		Active:    l.Active,
	}
}

func buildListingResponses(listings []domain.Listing) []listingResponse {
	result := make([]listingResponse, len(listings))
	for i, l := range listings {
		result[i] = buildListingResponse(l)
	}
	return result
}
