package mailsink

import (
	"context"
	"path"

	"github.com/shineum/mailsink-lite/internal/email"
	"github.com/shineum/mailsink-lite/internal/storage"
)

// recipientDir is the folder holding one recipient's artifacts.
func recipientDir(outputDir string, rcpt email.Address) string {
	return path.Join(outputDir, rcpt.Address)
}

// provision ensures a folder exists for every distinct recipient address and
// returns the recipients in input order, duplicates included.
func provision(ctx context.Context, store storage.Storage, outputDir string, to email.Recipients) (email.Recipients, error) {
	seen := make(map[string]struct{}, len(to))
	out := make(email.Recipients, 0, len(to))

	for _, rcpt := range to {
		out = append(out, rcpt)
		if _, ok := seen[rcpt.Address]; ok {
			continue
		}
		seen[rcpt.Address] = struct{}{}

		dir := recipientDir(outputDir, rcpt)
		if err := store.MkdirAll(ctx, dir); err != nil {
			return nil, email.IOFailure("failed to create recipient folder "+dir, err)
		}
	}

	return out, nil
}
