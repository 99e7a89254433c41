package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// totals are exchanged as JSON numbers with the client
	decimal.MarshalJSONWithoutQuotes = true
}

// OrderStatus represents the processing state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// AllStatuses lists the statuses in workflow order.
var AllStatuses = []OrderStatus{StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled}

// Valid reports whether s is one of AllStatuses.
func (s OrderStatus) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// FulfillmentType is how the goods reach the distributor.
type FulfillmentType string

const (
	FulfillmentDelivery FulfillmentType = "delivery"
	FulfillmentBilti    FulfillmentType = "bilti" // freight consignment note
)

// Valid reports whether t is delivery or bilti.
func (t FulfillmentType) Valid() bool {
	return t == FulfillmentDelivery || t == FulfillmentBilti
}

// Customer is the delivery contact captured when the order is placed.
// The length limits match the account fields of the same name.
type Customer struct {
	Name    string `json:"name" validate:"required,max=100"`
	Phone   string `json:"phone" validate:"required,pkphone"`
	Address string `json:"address" validate:"required,max=200"`
	City    string `json:"city" validate:"required,max=30"`
}

// LineItem is a copy of catalog data at order time, not a live reference.
type LineItem struct {
	ProductCode string `json:"productCode" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Price       string `json:"price" validate:"required"`
	Quantity    int    `json:"quantity" validate:"min=1"`
	Unit        string `json:"unit,omitempty"`
	ImageLink   string `json:"image_link,omitempty"`
}

// Order is a purchase placed by a distributor.
type Order struct {
	ID        string          `json:"_id"`
	Customer  Customer        `json:"customer"`
	Items     []LineItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Timestamp string          `json:"timestamp"`
	Type      FulfillmentType `json:"orderType"`
	Status    OrderStatus     `json:"status"`
	UserID    string          `json:"user"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ComputeTotal sums price × quantity over items. It fails when a line's
// price text carries no number.
func ComputeTotal(items []LineItem) (decimal.Decimal, error) {
	total := decimal.Zero
	for i, it := range items {
		p := ParsePrice(it.Price)
		if !p.Fixed {
			return decimal.Zero, fmt.Errorf("item %d (%s): price %q is not numeric", i, it.ProductCode, it.Price)
		}
		total = total.Add(p.Amount.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total, nil
}
