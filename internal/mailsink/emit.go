package mailsink

import (
	"context"
	"encoding/json"

	"github.com/shineum/mailsink-lite/internal/email"
	"github.com/shineum/mailsink-lite/internal/storage"
)

// Artifact is the per-recipient view recorded in the .json file: the message
// as sent, with "to" narrowed to the single recipient.
type Artifact struct {
	From      email.Address   `json:"from"`
	To        email.Address   `json:"to"`
	Subject   string          `json:"subject,omitempty"`
	Text      string          `json:"text,omitempty"`
	HTML      string          `json:"html,omitempty"`
	MessageID string          `json:"messageId,omitempty"`
	Simulate  *email.Simulate `json:"simulate,omitempty"`
}

func newArtifact(msg *email.Message, rcpt email.Address) Artifact {
	return Artifact{
		From:      msg.From,
		To:        rcpt,
		Subject:   msg.Subject,
		Text:      msg.Text,
		HTML:      msg.HTML,
		MessageID: msg.MessageID,
		Simulate:  msg.Simulate,
	}
}

// emit writes base.txt, base.html and base.json for one recipient, skipping
// empty bodies and suppressed formats. Existing files are overwritten. It
// returns the paths written.
func emit(ctx context.Context, store storage.Storage, base string, msg *email.Message, rcpt email.Address, suppress Suppress) ([]string, error) {
	var written []string

	if msg.Text != "" && !suppress.Text {
		p := base + ".txt"
		if err := store.WriteFile(ctx, p, []byte(msg.Text)); err != nil {
			return written, email.IOFailure("failed to write "+p, err)
		}
		written = append(written, p)
	}

	if msg.HTML != "" && !suppress.HTML {
		p := base + ".html"
		if err := store.WriteFile(ctx, p, []byte(msg.HTML)); err != nil {
			return written, email.IOFailure("failed to write "+p, err)
		}
		written = append(written, p)
	}

	if !suppress.JSON {
		data, err := json.MarshalIndent(newArtifact(msg, rcpt), "", "  ")
		if err != nil {
			return written, email.IOFailure("failed to marshal message", err)
		}
		p := base + ".json"
		if err := store.WriteFile(ctx, p, data); err != nil {
			return written, email.IOFailure("failed to write "+p, err)
		}
		written = append(written, p)
	}

	return written, nil
}
