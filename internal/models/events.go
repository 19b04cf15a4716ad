package models

import "time"

// Event types
const (
	EventTypeSaleCompleted         = "SALE_COMPLETED"
	EventTypeProductRestocked      = "PRODUCT_RESTOCKED"
	EventTypeProductAdded          = "PRODUCT_ADDED"
	EventTypeHistoryCleared        = "HISTORY_CLEARED"
	EventTypeReceiptPrintRequested = "RECEIPT_PRINT_REQUESTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// SaleCompletedEvent published after a checkout commits
type SaleCompletedEvent struct {
	BaseEvent
	SaleID string     `json:"sale_id"`
	Total  int64      `json:"total"`
	Items  []SaleLine `json:"items"`
}

// ProductRestockedEvent published when stock is added to a product
type ProductRestockedEvent struct {
	BaseEvent
	ProductID int64 `json:"product_id"`
	Amount    int   `json:"amount"`
	Stock     int   `json:"stock"`
}

// ProductAddedEvent published when a product joins the catalog
type ProductAddedEvent struct {
	BaseEvent
	Product Product `json:"product"`
}

// HistoryClearedEvent published when the sales history is wiped
type HistoryClearedEvent struct {
	BaseEvent
	Removed int   `json:"removed"`
	Revenue int64 `json:"revenue"`
}

// ReceiptPrintRequestedEvent carries a rendered receipt to the print worker
type ReceiptPrintRequestedEvent struct {
	BaseEvent
	SaleID  string `json:"sale_id"`
	Receipt string `json:"receipt"`
}

// SaleLine represents item data in events
type SaleLine struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}
