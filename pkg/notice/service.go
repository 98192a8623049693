package notice

import (
	"embed"
	"log/slog"

	"github.com/quickcart/device-authz/pkg/notification"
)

// Notice types delivered by the authorize flow.
const (
	// AuthorizeCodeNotice carries the short one-time code for the
	// current challenge.
	AuthorizeCodeNotice notification.NoticeType = "authorize_code"

	// AuthorizeUnlockNotice carries the single-use unlock link sent
	// when a customer confirms they lost their trusted devices.
	AuthorizeUnlockNotice notification.NoticeType = "authorize_unlock"
)

//go:embed templates/*
var templateFiles embed.FS

func loadTemplate(filename string) string {
	content, err := templateFiles.ReadFile(filename)
	if err != nil {
		slog.Error("Error reading template file!", "err", err, "filename", filename)
		return ""
	}
	return string(content)
}

// NewNotificationManager builds a NotificationManager with the SMTP
// notifier and the authorize flow templates registered.
func NewNotificationManager(smtpConfig notification.SMTPConfig) (*notification.NotificationManager, error) {
	notificationManager := notification.NewNotificationManager()

	emailNotifier, err := notification.NewEmailNotifier(smtpConfig)
	if err != nil {
		return nil, err
	}

	notificationManager.RegisterNotifier(notification.EmailSystem, emailNotifier)

	if err := RegisterTemplates(notificationManager); err != nil {
		return nil, err
	}

	return notificationManager, nil
}

// RegisterTemplates registers the authorize flow notices on an existing
// manager. Split out so in-memory setups can pair the templates with a
// mock notifier.
func RegisterTemplates(notificationManager *notification.NotificationManager) error {
	err := notificationManager.RegisterNotification(AuthorizeCodeNotice, notification.EmailSystem, notification.NoticeTemplate{
		Subject: "Your verification code",
		Html:    loadTemplate("templates/email/authorize_code.html"),
	})
	if err != nil {
		slog.Error("failed to register authorize code notification", "error", err)
		return err
	}

	err = notificationManager.RegisterNotification(AuthorizeUnlockNotice, notification.EmailSystem, notification.NoticeTemplate{
		Subject: "Unlock your account",
		Html:    loadTemplate("templates/email/authorize_unlock.html"),
	})
	if err != nil {
		slog.Error("failed to register authorize unlock notification", "error", err)
		return err
	}

	return nil
}
