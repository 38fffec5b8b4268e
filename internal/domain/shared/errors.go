package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInvalidQuantity     = NewDomainError("INVALID_QUANTITY", "Quantity is not valid for this product")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrCartEmpty           = NewDomainError("CART_EMPTY", "Cart has no items")
	ErrCustomerRequired    = NewDomainError("CUSTOMER_REQUIRED", "A customer must be selected before payment")
	ErrProductInactive     = NewDomainError("PRODUCT_INACTIVE", "Product is not active for sale")
	ErrOperationInFlight   = NewDomainError("OPERATION_IN_FLIGHT", "A previous submission is still in progress")
	ErrCollaboratorFailure = NewDomainError("COLLABORATOR_FAILURE", "Upstream service returned an error")
)
