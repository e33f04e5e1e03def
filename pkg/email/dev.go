package email

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-z0-9_-]+`)

// DevSender writes outbound emails to disk instead of sending them.
// Useful for local development where Postmark tokens are not configured.
type DevSender struct {
	dir string
}

// NewDevSender creates a sender that saves emails under dir.
func NewDevSender(dir string) Sender {
	return &DevSender{dir: dir}
}

// SendEmail saves the message body as an HTML file named by timestamp and tag.
func (d *DevSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create dir: %v", ErrSendFailed, err)
	}

	name := params.Tag
	if name == "" {
		name = params.Subject
	}
	name = unsafeFilenameChars.ReplaceAllString(strings.ToLower(name), "_")

	filename := fmt.Sprintf("%s_%s.html", time.Now().Format("2006_01_02_150405"), name)
	body := fmt.Sprintf("<!-- to: %s | subject: %s -->\n%s", params.SendTo, params.Subject, params.BodyHTML)

	if err := os.WriteFile(filepath.Join(d.dir, filename), []byte(body), 0o644); err != nil {
		return fmt.Errorf("%w: write file: %v", ErrSendFailed, err)
	}
	return nil
}
