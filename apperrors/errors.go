package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrNoAvailability indicates that no room of the requested type is free for allocation.
var ErrNoAvailability = errors.New("no rooms available")

// ErrInvalidAmount indicates a negative or otherwise unusable monetary amount.
var ErrInvalidAmount = errors.New("invalid amount")

// ErrInsufficientBalance indicates an account balance too low for a deduction.
var ErrInsufficientBalance = errors.New("insufficient balance")

// ErrInsufficientStock indicates an outgoing stock movement larger than current stock.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrMaximumStockExceeded indicates a stock movement that would overflow the item's maximum.
var ErrMaximumStockExceeded = errors.New("maximum stock exceeded")

// ErrMultipleMainAccounts indicates the exactly-one-main-account invariant is broken.
var ErrMultipleMainAccounts = errors.New("multiple main accounts")

// ErrInactiveItem indicates a stock movement against a deactivated inventory item.
var ErrInactiveItem = errors.New("inventory item inactive")

// ErrUnauthorized indicates a missing or invalid session.
var ErrUnauthorized = errors.New("unauthorized")
