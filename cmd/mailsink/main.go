// Package main is the entry point for the mail sink command. It reads one
// message from a file or stdin and records it with the configured provider.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/shineum/mailsink-lite/internal/config"
	"github.com/shineum/mailsink-lite/internal/email"
	"github.com/shineum/mailsink-lite/internal/mailsink"
	"github.com/shineum/mailsink-lite/internal/parser"
	"github.com/shineum/mailsink-lite/internal/provider"
	"github.com/shineum/mailsink-lite/internal/provider/stdout"
	"github.com/shineum/mailsink-lite/internal/storage"
	"github.com/shineum/mailsink-lite/internal/storage/local"
	"github.com/shineum/mailsink-lite/internal/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin); err != nil {
		slog.Error("mailsink failed", "error", err)
		os.Exit(1)
	}
}

// run parses flags, loads configuration and sends a single message.
func run(ctx context.Context, args []string, stdin io.Reader) error {
	fs := flag.NewFlagSet("mailsink", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to YAML configuration file (optional)")
	envFile := fs.String("env-file", ".env", "dotenv file to load if present")
	input := fs.String("input", "-", "message file to read, - for stdin")
	format := fs.String("format", "auto", "input format: eml, json or auto")
	check := fs.Bool("check", false, "verify the output location is writable and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", *envFile, err)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	setupLogger(cfg.Logging.Level)

	prov, err := selectProvider(ctx, cfg)
	if err != nil {
		return err
	}

	if *check {
		hc, ok := prov.(interface{ HealthCheck(context.Context) error })
		if !ok {
			slog.Info("provider has no health check", "provider", prov.Name())
			return nil
		}
		if err := hc.HealthCheck(ctx); err != nil {
			return err
		}
		slog.Info("health check passed", "provider", prov.Name())
		return nil
	}

	raw, err := readInput(*input, stdin)
	if err != nil {
		return err
	}

	msg, err := decodeMessage(raw, *format)
	if err != nil {
		return err
	}

	slog.Debug("sending message",
		"provider", prov.Name(),
		"from", msg.From.Address,
		"recipients", len(msg.To),
		"message_id", msg.MessageID,
	)

	if err := prov.Send(ctx, msg); err != nil {
		var mailErr *email.Error
		if errors.As(err, &mailErr) {
			return fmt.Errorf("send rejected (%s): %w", mailErr.Code, err)
		}
		return fmt.Errorf("send failed: %w", err)
	}

	return nil
}

// loadConfig loads configuration from the specified path (YAML + env override)
// or from environment variables only if no path is given.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// setupLogger configures the global slog logger with JSON output and the
// specified log level.
func setupLogger(level string) {
	var logLevel slog.Level

	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// selectProvider builds the provider named in the configuration.
func selectProvider(ctx context.Context, cfg *config.Config) (provider.Provider, error) {
	switch cfg.Provider {
	case "file", "":
		store, err := selectStorage(ctx, cfg)
		if err != nil {
			return nil, err
		}
		slog.Info("using file provider",
			"storage", store.Name(),
			"output_dir", cfg.Sink.OutputDir,
			"template", cfg.Sink.FileNameTemplate,
		)
		return mailsink.New(cfg.SinkOptions(), mailsink.WithStorage(store), mailsink.WithLogger(slog.Default())), nil

	case "stdout":
		slog.Info("using stdout provider")
		return stdout.New(), nil

	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// selectStorage builds the storage backend for the file provider.
func selectStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Driver {
	case "local", "":
		return local.New(), nil

	case "s3":
		if !cfg.S3Configured() {
			return nil, errors.New("s3 storage selected but S3_BUCKET and S3_REGION are required")
		}
		store, err := s3.New(ctx, s3.Config{
			Bucket:          cfg.Storage.S3.Bucket,
			Region:          cfg.Storage.S3.Region,
			Prefix:          cfg.Storage.S3.Prefix,
			Endpoint:        cfg.Storage.S3.Endpoint,
			AccessKeyID:     cfg.Storage.S3.AccessKeyID,
			SecretAccessKey: cfg.Storage.S3.SecretAccessKey,
			ForcePathStyle:  cfg.Storage.S3.ForcePathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 storage: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// readInput reads the whole message from path, or from stdin for "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read message file: %w", err)
	}
	return data, nil
}

// decodeMessage parses raw as eml or json. In auto mode a leading '{'
// selects json.
func decodeMessage(raw []byte, format string) (*email.Message, error) {
	switch format {
	case "json":
		return parser.ParseJSON(raw)
	case "eml":
		return parser.Parse(raw)
	case "auto":
		if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '{' {
			return parser.ParseJSON(raw)
		}
		return parser.Parse(raw)
	default:
		return nil, fmt.Errorf("unknown input format %q", format)
	}
}
