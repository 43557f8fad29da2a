package handler

import (
	"net/http"

	"github.com/efreitasn/marketcore/internal/domain"
	"github.com/efreitasn/marketcore/internal/service"
)

// UserHandler handles HTTP requests for the caller's profile and roles.
type UserHandler struct {
	svc *service.MarketService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.MarketService) *UserHandler {
	return &UserHandler{svc: svc}
}

// registerRequest is the JSON request body for POST /users.
type registerRequest struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
	Role    string `json:"role"`
}

// addRoleRequest is the JSON request body for POST /users/me/roles.
type addRoleRequest struct {
	Role string `json:"role"`
}

type userResponse struct {
	Principal  string   `json:"principal"`
	Name       string   `json:"name"`
	Surname    string   `json:"surname"`
	Email      string   `json:"email"`
	Role       string   `json:"role"`
	ListingIDs []uint64 `json:"listing_ids"`
	OrderIDs   []uint64 `json:"order_ids"`
}

type rolesResponse struct {
	Role     string `json:"role"`
	IsSeller bool   `json:"is_seller"`
	IsBuyer  bool   `json:"is_buyer"`
}

// Register handles POST /users.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	u, err := h.svc.Register(service.RegisterRequest{
		Caller:  principal(r),
		Name:    req.Name,
		Surname: req.Surname,
		Email:   req.Email,
		Role:    req.Role,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, buildUserResponse(u))
}

// Me handles GET /users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Me(principal(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildUserResponse(u))
}

// Roles handles GET /users/me/roles.
func (h *UserHandler) Roles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.svc.Roles(principal(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, rolesResponse{
		Role:     string(roles.Role),
		IsSeller: roles.IsSeller,
		IsBuyer:  roles.IsBuyer,
	})
}

// AddRole handles POST /users/me/roles.
func (h *UserHandler) AddRole(w http.ResponseWriter, r *http.Request) {
	var req addRoleRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	role, err := h.svc.AddRole(principal(r), req.Role)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, rolesResponse{
		Role:     string(role),
		IsSeller: role.CanSell(),
		IsBuyer:  role.CanBuy(),
	})
}

func buildUserResponse(u domain.User) userResponse {
	return userResponse{
		Principal:  string(u.Principal),
		Name:       u.Name,
		Surname:    u.Surname,
		Email:      u.Email,
		Role:       string(u.Role),
		ListingIDs: nonNil(u.ListingIDs),
		OrderIDs:   nonNil(u.OrderIDs),
	}
}

func nonNil(ids []uint64) []uint64 {
	if ids == nil {
		return []uint64{}
	}
	return ids
}
