package order

import (
	"time"
)

// StatusNew is the status every order starts in; administrators may set
// any non-empty status afterwards.
const StatusNew = "new"

const (
	AreaDhaka   = "dhaka"
	AreaOutside = "outside"
)

// Flat shipping rates in BDT by delivery area.
const (
	ShippingDhaka   = 70
	ShippingOutside = 130
)

type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type Order struct {
	OrderID     string    `json:"orderId"`
	CreatedAt   time.Time `json:"createdAt"`
	Status      string    `json:"status"`
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName"`
	ProductLink string    `json:"productLink"`
	UnitPrice   float64   `json:"unitPrice"`
	Qty         int       `json:"qty"`
	Size        string    `json:"size"`
	Area        string    `json:"area"`
	Shipping    float64   `json:"shipping"`
	Total       float64   `json:"total"`
	Customer    Customer  `json:"customer"`
}

// Collection is the whole order book as persisted on disk, newest first.
type Collection struct {
	Orders []Order `json:"orders"`
}

func (c *Collection) Contains(orderID string) bool {
	for i := range c.Orders {
		if c.Orders[i].OrderID == orderID {
			return true
		}
	}
	return false
}
