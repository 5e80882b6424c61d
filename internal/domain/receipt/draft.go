package receipt

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Common extraction errors
var (
	ErrInvalidImage   = errors.New("file must be an image")
	ErrNoReceiptData  = errors.New("no receipt detected in image")
	ErrIncompleteData = errors.New("extracted receipt data is incomplete")
)

// Draft is an unpersisted transaction suggestion extracted from a receipt
// image. The caller reviews it and submits it through the transaction API;
// nothing here is trusted or stored as-is.
type Draft struct {
	Amount       float64   `json:"amount"`
	Date         time.Time `json:"date"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	MerchantName string    `json:"merchant_name"`
}

// ErrAllModelsFailed indicates every model in the fallback list failed.
// It carries the attempted list and the last upstream error.
type ErrAllModelsFailed struct {
	Models  []string
	LastErr error
}

func (e ErrAllModelsFailed) Error() string {
	return fmt.Sprintf("all extraction models failed (tried: %s): %v", strings.Join(e.Models, ", "), e.LastErr)
}

func (e ErrAllModelsFailed) Unwrap() error {
	return e.LastErr
}
