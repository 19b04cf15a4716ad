package models

import (
	"errors"
	"fmt"
	"time"
)

// Product represents a sellable item in the catalog
type Product struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Category string `json:"category"`
	Stock    int    `json:"stock"`
	Icon     string `json:"icon"`
}

// CartItem is a product line in the active cart
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// LineTotal returns price times quantity
func (i CartItem) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}

// SaleRecord is an immutable log entry of a completed checkout
type SaleRecord struct {
	ID        string     `json:"id"`
	Items     []CartItem `json:"items"`
	Total     int64      `json:"total"`
	Date      string     `json:"date"`
	Time      string     `json:"time"`
	CreatedAt time.Time  `json:"created_at"`
}

// Date and time layouts used on sale records
const (
	SaleDateLayout = "02/01/2006"
	SaleTimeLayout = "15:04:05"
)

// ErrInvalidView is returned for an unknown view name
var ErrInvalidView = errors.New("invalid view")

// View selects which screen the terminal is showing
type View string

// Views
const (
	ViewPOS    View = "pos"
	ViewAdmin  View = "admin"
	ViewReport View = "report"
)

// Views lists every view in display order
var Views = []View{ViewPOS, ViewAdmin, ViewReport}

// ParseView validates a view name
func ParseView(s string) (View, error) {
	for _, v := range Views {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidView, s)
}

// StockPolicy decides what checkout does when a line exceeds available stock
type StockPolicy string

// Stock policies
const (
	StockPolicyReject    StockPolicy = "reject"
	StockPolicyBackorder StockPolicy = "backorder"
)

// BestSeller is an aggregated quantity sold for one product name
type BestSeller struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}
