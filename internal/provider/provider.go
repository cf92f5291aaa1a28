// Package provider defines the interface for message sinks.
package provider

import (
	"context"

	"github.com/shineum/mailsink-lite/internal/email"
)

// Provider is the interface that message sinks must implement. A provider
// records a message somewhere a developer can inspect it (files, stdout);
// none of them deliver over the network.
type Provider interface {
	// Send records msg. It returns an error if the message is rejected or
	// cannot be recorded.
	Send(ctx context.Context, msg *email.Message) error

	// Name returns the human-readable name of this provider.
	Name() string
}
