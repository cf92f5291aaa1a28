// Package stdout implements a Provider that prints messages to standard output.
package stdout

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shineum/mailsink-lite/internal/email"
)

const separator = "========================================\n"

// Provider prints messages in a human-readable format.
type Provider struct {
	writer io.Writer
}

// New creates a stdout Provider that writes to os.Stdout.
func New() *Provider {
	return &Provider{writer: os.Stdout}
}

// NewWithWriter creates a Provider that writes to w.
func NewWithWriter(w io.Writer) *Provider {
	return &Provider{writer: w}
}

// Send prints msg. Simulated errors are honored so callers exercising
// failure paths see the same behavior as with the file provider; the delay
// is not.
func (p *Provider) Send(_ context.Context, msg *email.Message) error {
	if msg == nil {
		return &email.Error{Code: email.CodeInvalidEmail, Message: "message is nil"}
	}
	if msg.Simulate != nil && msg.Simulate.Error != nil {
		injected := *msg.Simulate.Error
		return &injected
	}

	var b strings.Builder

	b.WriteString(separator)
	fmt.Fprintf(&b, "From: %s\n", msg.From)

	to := make([]string, 0, len(msg.To))
	for _, rcpt := range msg.To {
		to = append(to, rcpt.String())
	}
	fmt.Fprintf(&b, "To: %s\n", strings.Join(to, ", "))

	if msg.MessageID != "" {
		fmt.Fprintf(&b, "Message-ID: %s\n", msg.MessageID)
	}
	fmt.Fprintf(&b, "Subject: %s\n", msg.Subject)

	if msg.Text != "" {
		b.WriteString("Text:\n")
		b.WriteString(msg.Text + "\n")
	}
	if msg.HTML != "" {
		fmt.Fprintf(&b, "HTML: %s\n", formatSize(len(msg.HTML)))
	}

	b.WriteString(separator)

	if _, err := io.WriteString(p.writer, b.String()); err != nil {
		return fmt.Errorf("stdout: write message: %w", err)
	}
	return nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "stdout"
}

// formatSize formats a byte count into a human-readable string.
func formatSize(bytes int) string {
	const (
		kb = 1024
		mb = kb * 1024
	)

	switch {
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
