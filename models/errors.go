package models

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindAccessDenied
	KindInsufficientStock
	KindOutOfStock
	KindEmptyCart
	KindValidation
	KindConflict
	KindUnauthorized
)

var kindNames = map[ErrorKind]string{
	KindInternal:          "internal",
	KindNotFound:          "not_found",
	KindAccessDenied:      "access_denied",
	KindInsufficientStock: "insufficient_stock",
	KindOutOfStock:        "out_of_stock",
	KindEmptyCart:         "empty_cart",
	KindValidation:        "validation",
	KindConflict:          "conflict",
	KindUnauthorized:      "unauthorized",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// AppError is the only error type that crosses the service boundary.
type AppError struct {
	Kind      ErrorKind
	Message   string
	ProductID int
	Fields    []FieldViolation
	Err       error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches any AppError of the same kind, so errors.Is(err, ErrEmptyCart) works
// for every empty-cart error regardless of message.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.ProductID == 0
}

// Sentinels for errors.Is checks; they carry no message.
var (
	ErrNotFound          = &AppError{Kind: KindNotFound}
	ErrAccessDenied      = &AppError{Kind: KindAccessDenied}
	ErrInsufficientStock = &AppError{Kind: KindInsufficientStock}
	ErrOutOfStock        = &AppError{Kind: KindOutOfStock}
	ErrEmptyCart         = &AppError{Kind: KindEmptyCart}
	ErrValidation        = &AppError{Kind: KindValidation}
	ErrConflict          = &AppError{Kind: KindConflict}
	ErrUnauthorized      = &AppError{Kind: KindUnauthorized}
)

func NotFound(what string) *AppError {
	return &AppError{Kind: KindNotFound, Message: what + " not found"}
}

func ProductNotFound(productID int) *AppError {
	return &AppError{Kind: KindNotFound, Message: "Product not found", ProductID: productID}
}

func AccessDenied() *AppError {
	return &AppError{Kind: KindAccessDenied, Message: "Access denied"}
}

func InsufficientStock(productID int, name string) *AppError {
	msg := "Insufficient stock"
	if name != "" {
		msg = "Insufficient stock for " + name
	}
	return &AppError{Kind: KindInsufficientStock, Message: msg, ProductID: productID}
}

func OutOfStock(productID int) *AppError {
	return &AppError{Kind: KindOutOfStock, Message: "Product is out of stock", ProductID: productID}
}

func EmptyCart() *AppError {
	return &AppError{Kind: KindEmptyCart, Message: "Cart is empty"}
}

func Validation(message string, fields ...FieldViolation) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Fields: fields}
}

func Conflict(message string, err error) *AppError {
	return &AppError{Kind: KindConflict, Message: message, Err: err}
}

func Unauthorized(message string, err error) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message, Err: err}
}

func Internal(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

// KindOf reports the kind of the first AppError in err's chain; plain errors are internal.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
