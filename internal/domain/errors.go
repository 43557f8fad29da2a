package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes; the message doubles as
// the API error code.
var (
	// Identity.
	ErrUserNotFound      = errors.New("user_not_found")
	ErrAlreadyRegistered = errors.New("already_registered")
	ErrRoleAlreadyHeld   = errors.New("role_already_held")
	ErrNotSeller         = errors.New("not_seller")
	ErrNotBuyer          = errors.New("not_buyer")

	// Catalog.
	ErrInvalidProduct   = errors.New("invalid_product")
	ErrIDSpaceExhausted = errors.New("id_space_exhausted")

	// Listings.
	ErrInsufficientStock = errors.New("insufficient_stock")
	ErrStockExhausted    = errors.New("stock_exhausted")

	// Order validation.
	ErrEmptyOrder          = errors.New("empty_order")
	ErrInvalidListing      = errors.New("invalid_listing")
	ErrDuplicateListing    = errors.New("duplicate_listing")
	ErrCannotBuyZero       = errors.New("cannot_buy_zero")
	ErrSellerMismatch      = errors.New("seller_mismatch")
	ErrCannotBuyOwnListing = errors.New("cannot_buy_own_listing")
	ErrInsufficientFunds   = errors.New("insufficient_funds")
	ErrOutOfRange          = errors.New("out_of_range")

	// Order lifecycle.
	ErrInvalidOrderID               = errors.New("invalid_order_id")
	ErrInvalidOperation             = errors.New("invalid_operation")
	ErrCancellationAlreadyRequested = errors.New("cancellation_already_requested")
	ErrOrderAlreadyCancelled        = errors.New("order_already_cancelled")

	ErrWebhookNotFound = errors.New("webhook_not_found")
)

// ValidationError represents a request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
