// Package kindle delivers ebook files to a Kindle address over SMTP.
// It is a thin wrapper around net/smtp; the engine core only hands it
// absolute paths.
package kindle

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"

	"github.com/vsivadasan/bookscout/internal/config"
)

// Delivery errors
var (
	// ErrNotConfigured means the Gmail or Kindle address settings are missing.
	ErrNotConfigured = errors.New("email delivery not configured")

	// ErrUnsupportedFormat means Kindle's importer does not accept the file type.
	ErrUnsupportedFormat = errors.New("unsupported format for kindle delivery")

	// ErrTooLarge means the attachment exceeds the configured size limit.
	ErrTooLarge = errors.New("attachment exceeds size limit")
)

// deliverableExts are the file types Kindle's email importer accepts.
var deliverableExts = map[string]bool{
	".pdf": true, ".mobi": true, ".epub": true, ".azw": true,
	".azw3": true, ".txt": true, ".doc": true, ".docx": true,
}

// Sender emails book files to the configured Kindle address.
type Sender struct {
	cfg    *config.Config
	logger *slog.Logger

	// sendMail is swappable in tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSender creates a Sender from the application config.
func NewSender(cfg *config.Config, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{cfg: cfg, logger: logger, sendMail: smtp.SendMail}
}

// Validate checks that the file at path can be delivered: it exists, its
// format is accepted by Kindle, and it fits under the attachment limit.
func (s *Sender) Validate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("file not accessible: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !deliverableExts[ext] {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	maxBytes := int64(s.cfg.MaxAttachmentMB) * 1024 * 1024
	if info.Size() > maxBytes {
		return fmt.Errorf("%w: %d bytes (limit %d MB)", ErrTooLarge, info.Size(), s.cfg.MaxAttachmentMB)
	}
	return nil
}

// Send emails the file to the configured Kindle address. An empty subject
// defaults to the filename.
func (s *Sender) Send(path, subject string) error {
	if !s.cfg.IsFullyConfigured() {
		return ErrNotConfigured
	}
	if err := s.Validate(path); err != nil {
		return err
	}

	filename := filepath.Base(path)
	if subject == "" {
		subject = filename
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	msg := buildMessage(s.cfg.GmailAddress, s.cfg.KindleEmail, subject, filename, content)
	auth := smtp.PlainAuth("", s.cfg.GmailAddress, s.cfg.GmailAppPassword, s.cfg.SMTPServer)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPServer, s.cfg.SMTPPort)

	if err := s.sendMail(addr, auth, s.cfg.GmailAddress, []string{s.cfg.KindleEmail}, msg); err != nil {
		return fmt.Errorf("failed to send to kindle: %w", err)
	}

	s.logger.Info("book sent to kindle", "file", filename, "to", s.cfg.KindleEmail)
	return nil
}

// buildMessage assembles a multipart/mixed MIME message with the book as
// a base64 attachment.
func buildMessage(from, to, subject, filename string, content []byte) []byte {
	const boundary = "bookscout-attachment-boundary"

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n", boundary)
	buf.WriteString("\r\n")

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&buf, "Sent by bookscout: %s\r\n", filename)

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	buf.WriteString("Content-Type: application/octet-stream\r\n")
	buf.WriteString("Content-Transfer-Encoding: base64\r\n")
	fmt.Fprintf(&buf, "Content-Disposition: attachment; filename=%q\r\n\r\n", filename)

	encoded := base64.StdEncoding.EncodeToString(content)
	// RFC 2045 line length limit.
	for len(encoded) > 76 {
		buf.WriteString(encoded[:76])
		buf.WriteString("\r\n")
		encoded = encoded[76:]
	}
	buf.WriteString(encoded)
	buf.WriteString("\r\n")

	fmt.Fprintf(&buf, "--%s--\r\n", boundary)
	return buf.Bytes()
}
