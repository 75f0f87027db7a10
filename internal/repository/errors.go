package repository

import "errors"

// Sentinel errors for conditions the storage layer detects itself.
// Services wrap these with context; handlers map them to HTTP statuses
// via errors.Is.
var (
	ErrNotFound = errors.New("record not found")

	// ErrInsufficientStock is returned when a decrement would drive a lot's
	// quantity negative. The text is the client-facing message.
	ErrInsufficientStock = errors.New("Not enough quantity in inventory")

	// ErrLotReferenced blocks physical deletion of a lot that issue records
	// still point at.
	ErrLotReferenced = errors.New("stock lot is referenced by issue records")
)
