package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shineum/mailsink-lite/internal/email"
)

// sinkEnv points the sink at a temp directory and returns it.
func sinkEnv(t *testing.T) string {
	t.Helper()

	out := filepath.Join(t.TempDir(), "mail")
	for _, v := range []string{"MAILSINK_PROVIDER", "STORAGE_DRIVER", "MAILSINK_IGNORE_TEXT", "MAILSINK_IGNORE_HTML", "MAILSINK_IGNORE_JSON", "S3_BUCKET", "S3_REGION"} {
		t.Setenv(v, "")
	}
	t.Setenv("MAILSINK_OUTPUT_DIR", out)
	t.Setenv("MAILSINK_FILENAME_TEMPLATE", "%s")
	t.Setenv("LOG_LEVEL", "error")
	return out
}

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestRun_JSONFromStdin(t *testing.T) {
	out := sinkEnv(t)

	stdin := strings.NewReader(`{"from":"dev@example.com","to":["a@example.com","b@example.com"],"subject":"hi","text":"hello"}`)
	require.NoError(t, run(context.Background(), []string{"-env-file", noEnvFile(t)}, stdin))

	for _, rcpt := range []string{"a@example.com", "b@example.com"} {
		data, err := os.ReadFile(filepath.Join(out, rcpt, "hi.txt"))
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
	}
}

func TestRun_EMLFromFile(t *testing.T) {
	out := sinkEnv(t)
	t.Setenv("MAILSINK_IGNORE_JSON", "false")

	msgPath := filepath.Join(t.TempDir(), "message.eml")
	raw := strings.Join([]string{
		"From: Dev <dev@example.com>",
		"To: user@example.com",
		"Subject: report",
		"Content-Type: text/html",
		"",
		"<p>report</p>",
	}, "\r\n")
	require.NoError(t, os.WriteFile(msgPath, []byte(raw), 0o644))

	require.NoError(t, run(context.Background(), []string{"-env-file", noEnvFile(t), "-input", msgPath, "-format", "eml"}, nil))

	assert.FileExists(t, filepath.Join(out, "user@example.com", "report.html"))
	assert.FileExists(t, filepath.Join(out, "user@example.com", "report.json"))
}

func TestRun_InvalidAddressRejected(t *testing.T) {
	out := sinkEnv(t)

	stdin := strings.NewReader(`{"from":"not-valid","to":"a@example.com","text":"x"}`)
	err := run(context.Background(), []string{"-env-file", noEnvFile(t)}, stdin)

	require.Error(t, err)
	assert.True(t, email.HasCode(err, email.CodeInvalidEmail))
	assert.NoDirExists(t, out)
}

func TestRun_EnvFile(t *testing.T) {
	out := sinkEnv(t)
	os.Unsetenv("MAILSINK_FILENAME_TEMPLATE")

	envPath := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envPath, []byte("MAILSINK_FILENAME_TEMPLATE=fromdotenv\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("MAILSINK_FILENAME_TEMPLATE") })

	stdin := strings.NewReader(`{"from":"dev@example.com","to":"a@example.com","text":"x"}`)
	require.NoError(t, run(context.Background(), []string{"-env-file", envPath}, stdin))

	assert.FileExists(t, filepath.Join(out, "a@example.com", "fromdotenv.txt"))
}

func TestRun_Check(t *testing.T) {
	out := sinkEnv(t)

	require.NoError(t, run(context.Background(), []string{"-env-file", noEnvFile(t), "-check"}, nil))
	assert.DirExists(t, out)
}

func TestRun_ConfigErrors(t *testing.T) {
	sinkEnv(t)

	t.Setenv("MAILSINK_PROVIDER", "smtp")
	err := run(context.Background(), []string{"-env-file", noEnvFile(t)}, strings.NewReader("{}"))
	assert.ErrorContains(t, err, "unknown provider")

	t.Setenv("MAILSINK_PROVIDER", "file")
	t.Setenv("STORAGE_DRIVER", "s3")
	err = run(context.Background(), []string{"-env-file", noEnvFile(t)}, strings.NewReader("{}"))
	assert.ErrorContains(t, err, "S3_BUCKET")
}

func TestDecodeMessage(t *testing.T) {
	t.Parallel()

	msg, err := decodeMessage([]byte("  {\"from\":\"a@example.com\"}"), "auto")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", msg.From.Address)

	msg, err = decodeMessage([]byte("From: b@example.com\r\n\r\nbody"), "auto")
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", msg.From.Address)

	_, err = decodeMessage([]byte("x"), "yaml")
	assert.ErrorContains(t, err, "unknown input format")
}
