// Package notification delivers a summary of each migration run to the
// push services configured by the operator.
package notification

import "context"

// Type classifies a notification.
type Type string

const (
	TypeInfo  Type = "info"  // run completed
	TypeError Type = "error" // run halted
)

// Notification is one message to deliver.
type Notification struct {
	Type    Type
	Title   string
	Message string
}

// Provider defines a push delivery backend.
// Implementations must be safe for concurrent use.
type Provider interface {
	GetName() string
	ValidateConfig() error
	Send(ctx context.Context, n *Notification) error
	SupportsType(notifType Type) bool
	IsEnabled() bool
}
