package core

import (
	"context"

	"github.com/JonMunkholm/erpdash/internal/logging"
)

// Event topics published after successful mutations.
const (
	TopicCustomerCreated     = "erp.customer.created"
	TopicCustomerDeleted     = "erp.customer.deleted"
	TopicCustomerColumnAdded = "erp.customer.column_added"
	TopicProjectColumnAdded  = "erp.project.column_added"
)

type CustomerCreated struct {
	Customer Record `json:"customer"`
}

type CustomerDeleted struct {
	CustomerID int64 `json:"customer_id"`
}

type CustomerColumnAdded struct {
	Column Column `json:"column"`
}

type ProjectColumnAdded struct {
	Column ProjectColumn `json:"column"`
}

// Publisher emits domain events. Implementations live in internal/events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// publish sends an event and logs failures; a lost event never fails the mutation.
func (s *Service) publish(ctx context.Context, topic string, event any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, topic, event); err != nil {
		logging.FromContext(ctx).Warn("event publish failed", "topic", topic, "error", err)
	}
}
