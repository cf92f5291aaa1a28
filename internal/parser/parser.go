// Package parser turns raw input into email.Message values: RFC 5322
// messages (with MIME multipart bodies) and the JSON message shape.
package parser

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/shineum/mailsink-lite/internal/email"
)

// Headers that request simulated behavior on RFC 5322 input.
const (
	HeaderSimulateError = "X-Mailsink-Simulate-Error"
	HeaderSimulateDelay = "X-Mailsink-Simulate-Delay"
)

// messageIDDomain is used for generated Message-IDs.
const messageIDDomain = "mailsink.local"

// Parse parses a raw RFC 5322 message. Text and HTML bodies are taken from
// the top level or from the first matching multipart parts; attachments are
// skipped. A Message-ID is generated when the header is missing.
func Parse(raw []byte) (*email.Message, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	result := &email.Message{
		From:      email.ParseAddress(msg.Header.Get("From")),
		To:        parseAddressList(msg.Header.Get("To")),
		Subject:   decodeHeader(msg.Header.Get("Subject")),
		MessageID: msg.Header.Get("Message-Id"),
	}
	if result.MessageID == "" {
		result.MessageID = fmt.Sprintf("<%s@%s>", uuid.NewString(), messageIDDomain)
	}

	sim, err := parseSimulate(msg.Header)
	if err != nil {
		return nil, err
	}
	result.Simulate = sim

	contentType := msg.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		slog.Warn("failed to parse content type, treating as plain text",
			"content_type", contentType,
			"error", err,
		)
		body, readErr := io.ReadAll(msg.Body)
		if readErr != nil {
			return nil, fmt.Errorf("failed to read message body: %w", readErr)
		}
		result.Text = string(body)
		return result, nil
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return nil, fmt.Errorf("multipart message missing boundary")
		}
		if err := parseMultipart(msg.Body, boundary, result); err != nil {
			return nil, fmt.Errorf("failed to parse multipart message: %w", err)
		}
		return result, nil
	}

	body, err := readContent(msg.Body, msg.Header.Get("Content-Transfer-Encoding"))
	if err != nil {
		return nil, fmt.Errorf("failed to read message body: %w", err)
	}
	if mediaType == "text/html" {
		result.HTML = string(body)
	} else {
		result.Text = string(body)
	}

	return result, nil
}

// ParseJSON decodes the JSON message shape. from and to accept bare address
// strings or {"name","address"} objects, and to also accepts a list.
func ParseJSON(raw []byte) (*email.Message, error) {
	var msg email.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse JSON message: %w", err)
	}
	return &msg, nil
}

// parseSimulate reads the simulate headers, returning nil when neither is set.
func parseSimulate(h mail.Header) (*email.Simulate, error) {
	errText := strings.TrimSpace(h.Get(HeaderSimulateError))
	delayText := strings.TrimSpace(h.Get(HeaderSimulateDelay))
	if errText == "" && delayText == "" {
		return nil, nil
	}

	sim := &email.Simulate{}
	if delayText != "" {
		ms, err := strconv.Atoi(delayText)
		if err != nil || ms < 0 {
			return nil, fmt.Errorf("invalid %s header %q", HeaderSimulateDelay, delayText)
		}
		sim.DelayMs = ms
	}
	if errText != "" {
		sim.Error = email.SimulatedError(errText)
	}
	return sim, nil
}

// parseMultipart walks a multipart body, keeping the first text/plain and
// text/html parts. Nested multiparts are followed.
func parseMultipart(body io.Reader, boundary string, result *email.Message) error {
	reader := multipart.NewReader(body, boundary)

	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read next part: %w", err)
		}

		partContentType := part.Header.Get("Content-Type")
		if partContentType == "" {
			partContentType = "text/plain"
		}

		mediaType, params, err := mime.ParseMediaType(partContentType)
		if err != nil {
			slog.Warn("failed to parse part content type, skipping",
				"content_type", partContentType,
				"error", err,
			)
			continue
		}

		if strings.HasPrefix(mediaType, "multipart/") {
			nested := params["boundary"]
			if nested == "" {
				slog.Warn("nested multipart missing boundary, skipping")
				continue
			}
			if err := parseMultipart(part, nested, result); err != nil {
				slog.Warn("failed to parse nested multipart", "error", err)
			}
			continue
		}

		if strings.HasPrefix(part.Header.Get("Content-Disposition"), "attachment") || part.FileName() != "" {
			slog.Debug("skipping attachment",
				"filename", part.FileName(),
				"content_type", mediaType,
			)
			continue
		}

		if mediaType != "text/plain" && mediaType != "text/html" {
			slog.Warn("unrecognized MIME part, skipping", "content_type", mediaType)
			continue
		}

		content, err := readContent(part, part.Header.Get("Content-Transfer-Encoding"))
		if err != nil {
			slog.Warn("failed to read part content",
				"content_type", mediaType,
				"error", err,
			)
			continue
		}

		switch {
		case mediaType == "text/plain" && result.Text == "":
			result.Text = string(content)
		case mediaType == "text/html" && result.HTML == "":
			result.HTML = string(content)
		}
	}
}

// readContent reads r and undoes the transfer encoding. multipart.Part
// decodes quoted-printable itself and hides the header, so parts only ever
// arrive here as base64 or identity.
func readContent(r io.Reader, encoding string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "quoted-printable":
		return io.ReadAll(quotedprintable.NewReader(r))
	case "base64":
		return readBase64(r)
	default:
		return io.ReadAll(r)
	}
}

func readBase64(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	cleaned := strings.NewReplacer("\r", "", "\n", "").Replace(string(raw))
	decoded, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(cleaned)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 content: %w", err)
		}
	}
	return decoded, nil
}

// decodeHeader decodes RFC 2047 encoded words, returning the input on failure.
func decodeHeader(v string) string {
	decoded, err := new(mime.WordDecoder).DecodeHeader(v)
	if err != nil {
		return v
	}
	return decoded
}

// parseAddressList parses a To header. Entries net/mail rejects are kept
// verbatim so the sink's validator reports them.
func parseAddressList(raw string) email.Recipients {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	addresses, err := mail.ParseAddressList(raw)
	if err != nil {
		var result email.Recipients
		for _, p := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, email.ParseAddress(trimmed))
			}
		}
		return result
	}

	result := make(email.Recipients, 0, len(addresses))
	for _, addr := range addresses {
		result = append(result, email.Address{Name: addr.Name, Address: addr.Address})
	}
	return result
}
