package ledger

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrEmptyName         = errors.New("name is required")
	ErrDuplicateName     = errors.New("name already exists")
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrHasTransactions   = errors.New("customer has transactions")
	ErrBadFormat         = errors.New("malformed bundle")
)
