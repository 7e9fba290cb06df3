package service

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/rl1809/rocketshoes-cart/internal/port"
)

var (
	ErrOutOfStock   = errors.New("requested quantity out of stock")
	ErrNotFound     = errors.New("product not in cart")
	ErrAddFailed    = errors.New("add product failed")
	ErrUpdateFailed = errors.New("update product amount failed")
	ErrRemoveFailed = errors.New("remove product failed")
)

type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
	OpUpdate Op = "update"
)

// OperationError reports an unexpected failure (catalog fetch, storage write)
// that aborted a cart operation. It matches ErrAddFailed, ErrUpdateFailed or
// ErrRemoveFailed according to Op and unwraps to the underlying cause.
type OperationError struct {
	Op  Op
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s product: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

func (e *OperationError) Is(target error) bool {
	switch e.Op {
	case OpAdd:
		return target == ErrAddFailed
	case OpUpdate:
		return target == ErrUpdateFailed
	case OpRemove:
		return target == ErrRemoveFailed
	}
	return false
}

const (
	msgOutOfStock     = "Requested quantity is out of stock"
	msgRemoveNotFound = "Product is not in the cart"
	msgUpdateNotFound = "Cannot change amount of a product that is not in the cart"
	msgAddFailed      = "Failed to add product"
	msgUpdateFailed   = "Failed to update product amount"
	msgRemoveFailed   = "Failed to remove product"
)

// notification maps a failed operation to what the user gets to see.
func notification(op Op, err error) (port.Severity, string) {
	switch {
	case errors.Is(err, ErrOutOfStock):
		return port.SeverityWarning, msgOutOfStock
	case errors.Is(err, ErrNotFound) && op == OpRemove:
		return port.SeverityError, msgRemoveNotFound
	case errors.Is(err, ErrNotFound):
		return port.SeverityError, msgUpdateNotFound
	case errors.Is(err, ErrAddFailed):
		return port.SeverityError, msgAddFailed
	case errors.Is(err, ErrUpdateFailed):
		return port.SeverityError, msgUpdateFailed
	default:
		return port.SeverityError, msgRemoveFailed
	}
}
