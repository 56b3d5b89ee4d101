package contracts

import "time"

// Routing keys on the orders fanout exchange.
const (
	RouteOrderCreated       = "order.created"
	RouteOrderStatusChanged = "order.status_changed"
	RouteOrderDeleted       = "order.deleted"
)

type OrderCreatedEvent struct {
	EventID   string    `json:"event_id"`
	OrderID   string    `json:"order_id"`
	Area      string    `json:"area"`
	Total     float64   `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}

type OrderStatusChangedEvent struct {
	EventID   string    `json:"event_id"`
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	ChangedAt time.Time `json:"changed_at"`
}

type OrderDeletedEvent struct {
	EventID   string    `json:"event_id"`
	OrderIDs  []string  `json:"order_ids"`
	Deleted   int       `json:"deleted"`
	DeletedAt time.Time `json:"deleted_at"`
}
