package notification

// NotificationSystem represents a type of notification system (e.g., email, SMS).
type NotificationSystem string

// NoticeType represents a kind of notification (e.g., "authorize_code").
type NoticeType string

const (
	EmailSystem NotificationSystem = "email"
)

// NotificationData carries the recipient and template variables for one send.
type NotificationData struct {
	To   string            // Recipient identifier (e.g., email address)
	Data map[string]string // Template variables
}

// NoticeTemplate holds the renderable parts of a registered notice.
type NoticeTemplate struct {
	Subject string
	Text    string
	Html    string
}

type Notifier interface {
	Send(noticeType NoticeType, notification NotificationData, template NoticeTemplate) error
}
