// Package events publishes user change notifications.
package events

import (
	"context"
	"time"

	"github.com/dmitrijs2005/usersvc/internal/server/models"
)

type Type string

const (
	UserCreated Type = "created"
	UserUpdated Type = "updated"
	UserDeleted Type = "deleted"
)

// Event describes one committed change. User is nil for deletions.
type Event struct {
	Type       Type         `json:"type"`
	UserID     int64        `json:"user_id"`
	User       *models.User `json:"user,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// Publisher delivers events. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
