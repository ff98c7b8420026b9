package domain

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")

	// ErrNoPricingDefined means no tier matched the request. Callers must
	// treat it as a hard error before checkout, never as a free decoration.
	ErrNoPricingDefined = errors.New("no pricing defined")

	ErrEmptyCart               = errors.New("cart is empty")
	ErrCommentRequired         = errors.New("comment required")
	ErrIncompleteConfiguration = errors.New("incomplete decoration configuration")

	// ErrExternalSubmission marks an order that is persisted locally but not
	// yet acknowledged by the fulfillment API. Retryable via Resync.
	ErrExternalSubmission = errors.New("external submission failed")

	ErrStorageUnavailable = errors.New("blob storage unavailable")
	ErrUnavailable        = errors.New("service unavailable")
)
