// Package mailsink implements a local mail sink: instead of delivering a
// message, it writes one set of files per recipient under an output
// directory for inspection during development and testing.
//
// Layout produced by Send:
//
//	<outputDir>/<recipient address>/<expanded file name>.{txt,html,json}
package mailsink

import (
	"context"
	"log/slog"
	"path"
	"time"

	"github.com/shineum/mailsink-lite/internal/email"
	"github.com/shineum/mailsink-lite/internal/provider"
	"github.com/shineum/mailsink-lite/internal/storage"
	"github.com/shineum/mailsink-lite/internal/storage/local"
)

var _ provider.Provider = (*Mailer)(nil)

// Mailer holds an immutable resolved configuration and may be shared by
// concurrent senders.
type Mailer struct {
	config  Config
	storage storage.Storage
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Mailer's collaborators.
type Option func(*Mailer)

// WithStorage replaces the local filesystem backend.
func WithStorage(s storage.Storage) Option {
	return func(m *Mailer) {
		m.storage = s
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Mailer) {
		m.logger = l
	}
}

// WithClock overrides the clock used for file name templates.
func WithClock(now func() time.Time) Option {
	return func(m *Mailer) {
		m.now = now
	}
}

// New creates a Mailer from partial options.
func New(opts Options, options ...Option) *Mailer {
	m := &Mailer{
		config:  ResolveConfig(opts),
		storage: local.New(),
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Config returns the resolved configuration.
func (m *Mailer) Config() Config {
	return m.config
}

// Name returns the provider name.
func (m *Mailer) Name() string {
	return "file"
}

// Result is the outcome delivered by SendAsync.
type Result struct {
	Err error
}

// Success reports whether the send completed without error.
func (r Result) Success() bool {
	return r.Err == nil
}

// SendAsync runs Send in its own goroutine. The returned channel receives
// exactly one Result and is then closed.
func (m *Mailer) SendAsync(ctx context.Context, msg *email.Message) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		ch <- Result{Err: m.Send(ctx, msg)}
	}()
	return ch
}

// Send writes msg for every recipient. Failures are *email.Error values:
// SIMULATE_ERROR (or the injected code), INVALID_EMAIL, or IO_FAILURE. If
// ctx is cancelled during the simulated delay, ctx.Err() is returned.
//
// All addresses are validated, from first and then to in order, before
// anything is written. Success is reported only after every recipient's
// files exist.
func (m *Mailer) Send(ctx context.Context, msg *email.Message) error {
	if msg == nil {
		return &email.Error{Code: email.CodeInvalidEmail, Message: "message is nil"}
	}

	if err := simulate(ctx, msg.Simulate); err != nil {
		return err
	}

	if err := validateMessage(msg); err != nil {
		return err
	}

	if err := m.storage.MkdirAll(ctx, m.config.OutputDir); err != nil {
		return email.IOFailure("failed to create output directory "+m.config.OutputDir, err)
	}

	recipients, err := provision(ctx, m.storage, m.config.OutputDir, msg.To)
	if err != nil {
		return err
	}

	files := 0
	for _, rcpt := range recipients {
		name := safeFileName(Expand(m.config.FileNameTemplate, TemplateData{
			Now:         m.now(),
			Subject:     msg.Subject,
			FromName:    msg.From.Name,
			FromAddress: msg.From.Address,
		}))
		base := path.Join(recipientDir(m.config.OutputDir, rcpt), name)

		written, err := emit(ctx, m.storage, base, msg, rcpt, m.config.Suppress)
		for _, p := range written {
			m.logger.DebugContext(ctx, "artifact written", "path", p, "storage", m.storage.Name())
		}
		if err != nil {
			return err
		}
		files += len(written)
	}

	m.logger.InfoContext(ctx, "message stored",
		"from", msg.From.Address,
		"recipients", len(recipients),
		"files", files,
		"subject", msg.Subject,
	)

	return nil
}

// HealthCheck verifies the output directory can be created and, for
// backends that support it, that the backend is reachable.
func (m *Mailer) HealthCheck(ctx context.Context) error {
	if err := m.storage.MkdirAll(ctx, m.config.OutputDir); err != nil {
		return email.IOFailure("output directory not writable", err)
	}
	if p, ok := m.storage.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(ctx); err != nil {
			return email.IOFailure("storage unreachable", err)
		}
	}
	return nil
}

// validateMessage fails on the first invalid address, from first.
func validateMessage(msg *email.Message) error {
	if !Validate(msg.From.Address) {
		return email.InvalidEmail(msg.From.Address)
	}
	if len(msg.To) == 0 {
		return &email.Error{Code: email.CodeInvalidEmail, Message: "no recipients"}
	}
	for _, rcpt := range msg.To {
		if !Validate(rcpt.Address) {
			return email.InvalidEmail(rcpt.Address)
		}
	}
	return nil
}
