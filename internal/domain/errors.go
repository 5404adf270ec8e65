package domain

import "errors"

// Failure taxonomy shared by the workflows. Remote failures are caught
// at workflow boundaries and mapped to one of these; none of them is
// allowed to escape as a panic.
var (
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrOutOfStock          = errors.New("out of stock")
	ErrRemoteFetch         = errors.New("remote fetch failed")
	ErrRemoteWrite         = errors.New("remote write failed")
	ErrNotFound            = errors.New("not found")
)
