package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/efreitasn/marketcore/internal/domain"
	"github.com/efreitasn/marketcore/internal/service"
)

// ReportHandler serves the read-only queries consumed by the reporting
// facade. Sorting and ranking happen there.
type ReportHandler struct {
	svc *service.MarketService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(svc *service.MarketService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

type userListResponse struct {
	Users []userResponse `json:"users"`
}

type listingsByCategoryResponse struct {
	Categories map[string][]listingResponse `json:"categories"`
}

// Users handles GET /reports/users.
func (h *ReportHandler) Users(w http.ResponseWriter, r *http.Request) {
	users := h.svc.Users()
	resp := userListResponse{Users: make([]userResponse, len(users))}
	for i, u := range users {
		resp.Users[i] = buildUserResponse(u)
	}
	WriteJSON(w, http.StatusOK, resp)
}

// ListingsByCategory handles GET /reports/listings-by-category.
func (h *ReportHandler) ListingsByCategory(w http.ResponseWriter, r *http.Request) {
	groups := h.svc.ListingsByCategory()
	resp := listingsByCategoryResponse{Categories: make(map[string][]listingResponse, len(groups))}
	for c, listings := range groups {
		resp.Categories[string(c)] = buildListingResponses(listings)
	}
	WriteJSON(w, http.StatusOK, resp)
}

// OrdersFor handles GET /reports/users/{principal}/orders.
func (h *ReportHandler) OrdersFor(w http.ResponseWriter, r *http.Request) {
	p := domain.Principal(chi.URLParam(r, "principal"))
	WriteJSON(w, http.StatusOK, orderListResponse{Orders: buildOrderResponses(h.svc.OrdersFor(p))})
}
