package errors

import "errors"

var ErrForbidden = errors.New("operation is forbidden for user")

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInvalidToken = errors.New("invalid authentication token")

var ErrEventNotFound = errors.New("event not found")
var ErrCouponNotFound = errors.New("coupon not found")
var ErrTicketNotFound = errors.New("ticket not found")

var ErrDuplicateEmail = errors.New("email already registered")
var ErrDuplicateCouponCode = errors.New("coupon code already exists")

var ErrMembershipRequired = errors.New("verified membership required for member tickets")
var ErrSoldOut = errors.New("not enough tickets available")
var ErrNotMember = errors.New("account is not marked as a member")

var ErrSymbolNotFound = errors.New("unknown market symbol")

// ValidationError reports a request that is well-formed but semantically
// unacceptable (bad date range, inventory overflow, too little market data).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidation builds a ValidationError.
func NewValidation(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// AsValidation unwraps err into a ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// CouponInvalidError carries the human-readable reason a coupon could not be
// applied (wrong event, outside the validity window, usage cap reached, ...).
type CouponInvalidError struct {
	Reason string
}

func (e *CouponInvalidError) Error() string {
	return "coupon invalid: " + e.Reason
}

// AsCouponInvalid unwraps err into a CouponInvalidError if it is one.
func AsCouponInvalid(err error) (*CouponInvalidError, bool) {
	var ce *CouponInvalidError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
