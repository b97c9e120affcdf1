// Package notify shows a desktop notification when a report is ready.
package notify

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/gen2brain/beeep"
	"go.uber.org/zap"

	"github.com/valentinclaes/claude-wrapped/internal/wrapped"
)

// AppName is shown as the notification source.
const AppName = "Claude Wrapped"

// Notifier sends desktop notifications.
type Notifier struct {
	skipWhenFocused bool
	focused         func() bool
	alert           func(title, message string) error
	logger          *zap.Logger
}

// New returns a notifier backed by beeep. With skipWhenFocused set, nothing
// is shown while the launching terminal has focus.
func New(skipWhenFocused bool, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	beeep.AppName = AppName
	return &Notifier{
		skipWhenFocused: skipWhenFocused,
		focused:         terminalIsFocused,
		alert: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		logger: logger,
	}
}

// Send shows the notification and reports whether it was shown.
func (n *Notifier) Send(title, message string) (bool, error) {
	if n.skipWhenFocused && n.focused() {
		n.logger.Debug("terminal focused, notification skipped")
		return false, nil
	}
	if err := n.alert(title, message); err != nil {
		return false, fmt.Errorf("notify: %w", err)
	}
	return true, nil
}

// ReportReady announces a written report.
func (n *Notifier) ReportReady(sum *wrapped.Summary, path string) (bool, error) {
	return n.Send(Title(sum), Message(sum, path))
}

// Title names the report year.
func Title(sum *wrapped.Summary) string {
	if sum == nil || sum.Year == 0 {
		return "Your Wrapped is ready"
	}
	return fmt.Sprintf("Your %d Wrapped is ready", sum.Year)
}

// Message is a one-line teaser for the notification body.
func Message(sum *wrapped.Summary, path string) string {
	if sum == nil {
		return path
	}
	msg := humanize.Comma(int64(sum.HeadlineStats.TotalConversations)) + " conversations"
	if c := sum.TimePatterns.Chronotype; c != "" {
		msg += ", " + c
	}
	if path != "" {
		msg += "\n" + path
	}
	return msg
}
