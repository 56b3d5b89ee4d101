package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ggshop/orders-service/internal/contracts"
	"ggshop/orders-service/internal/messaging"
	"ggshop/orders-service/internal/websocket"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errors.New("order not found")
)

// Storage is the durable order book. Update must serialize the whole
// load-mutate-save cycle; returning an error from fn aborts without
// saving.
type Storage interface {
	Load(ctx context.Context) (Collection, error)
	Update(ctx context.Context, fn func(c *Collection) error) error
}

type Service struct {
	store     Storage
	hub       *websocket.Hub
	publisher messaging.Publisher
	logger    *slog.Logger
}

func NewService(store Storage, hub *websocket.Hub, publisher messaging.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, hub: hub, publisher: publisher, logger: logger}
}

// Create validates the request, mints an identifier and prepends the
// new order to the collection.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Order, error) {
	o, err := req.Validate()
	if err != nil {
		return nil, err
	}
	o.Status = StatusNew
	o.CreatedAt = time.Now().UTC()

	err = s.store.Update(ctx, func(c *Collection) error {
		o.OrderID = NewID()
		// Collisions are astronomically unlikely; the loop is free
		// since the collection is already in memory.
		for c.Contains(o.OrderID) {
			o.OrderID = NewID()
		}
		c.Orders = append([]Order{o}, c.Orders...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}

	s.notify(websocket.Event{Type: contracts.RouteOrderCreated, OrderID: o.OrderID, Status: o.Status})
	s.publish(ctx, contracts.RouteOrderCreated, contracts.OrderCreatedEvent{
		EventID:   uuid.NewString(),
		OrderID:   o.OrderID,
		Area:      o.Area,
		Total:     o.Total,
		CreatedAt: o.CreatedAt,
	})

	return &o, nil
}

// List returns the full collection, newest first.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	c, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	if c.Orders == nil {
		return []Order{}, nil
	}
	return c.Orders, nil
}

// UpdateStatus sets the status of one order. Status is the only field
// an administrator may change.
func (s *Service) UpdateStatus(ctx context.Context, orderID, status string) error {
	status = strings.TrimSpace(status)
	if status == "" {
		return invalid("status", "Missing status")
	}

	err := s.store.Update(ctx, func(c *Collection) error {
		for i := range c.Orders {
			if c.Orders[i].OrderID == orderID {
				c.Orders[i].Status = status
				return nil
			}
		}
		return ErrOrderNotFound
	})
	if err != nil {
		return err
	}

	s.notify(websocket.Event{Type: contracts.RouteOrderStatusChanged, OrderID: orderID, Status: status})
	s.publish(ctx, contracts.RouteOrderStatusChanged, contracts.OrderStatusChangedEvent{
		EventID:   uuid.NewString(),
		OrderID:   orderID,
		Status:    status,
		ChangedAt: time.Now().UTC(),
	})

	return nil
}

// Delete removes one order by ID.
func (s *Service) Delete(ctx context.Context, orderID string) error {
	err := s.store.Update(ctx, func(c *Collection) error {
		for i := range c.Orders {
			if c.Orders[i].OrderID == orderID {
				c.Orders = append(c.Orders[:i], c.Orders[i+1:]...)
				return nil
			}
		}
		return ErrOrderNotFound
	})
	if err != nil {
		return err
	}

	s.notify(websocket.Event{Type: contracts.RouteOrderDeleted, OrderIDs: []string{orderID}})
	s.publish(ctx, contracts.RouteOrderDeleted, contracts.OrderDeletedEvent{
		EventID:   uuid.NewString(),
		OrderIDs:  []string{orderID},
		Deleted:   1,
		DeletedAt: time.Now().UTC(),
	})

	return nil
}

// BulkDelete removes every order whose ID is in orderIDs and reports
// how many were removed. IDs that match nothing are ignored.
func (s *Service) BulkDelete(ctx context.Context, orderIDs []string) (int, error) {
	if len(orderIDs) == 0 {
		return 0, invalid("orderIds", "Missing orderIds")
	}

	target := make(map[string]struct{}, len(orderIDs))
	for _, id := range orderIDs {
		target[id] = struct{}{}
	}

	deleted := 0
	err := s.store.Update(ctx, func(c *Collection) error {
		kept := make([]Order, 0, len(c.Orders))
		for _, o := range c.Orders {
			if _, ok := target[o.OrderID]; ok {
				deleted++
				continue
			}
			kept = append(kept, o)
		}
		c.Orders = kept
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("persist bulk delete: %w", err)
	}

	if deleted > 0 {
		s.notify(websocket.Event{Type: contracts.RouteOrderDeleted, OrderIDs: orderIDs})
		s.publish(ctx, contracts.RouteOrderDeleted, contracts.OrderDeletedEvent{
			EventID:   uuid.NewString(),
			OrderIDs:  orderIDs,
			Deleted:   deleted,
			DeletedAt: time.Now().UTC(),
		})
	}

	return deleted, nil
}

func (s *Service) notify(evt websocket.Event) {
	if s.hub != nil {
		s.hub.Broadcast(evt)
	}
}

// publish is best-effort: a broker outage must never fail a request
// that already committed to disk.
func (s *Service) publish(ctx context.Context, routingKey string, evt any) {
	payload, err := json.Marshal(evt)
	if err != nil {
		s.logger.Error("marshal order event", "routing_key", routingKey, "err", err)
		return
	}
	if err := s.publisher.Publish(ctx, routingKey, payload); err != nil {
		s.logger.Warn("publish order event failed", "routing_key", routingKey, "err", err)
	}
}
