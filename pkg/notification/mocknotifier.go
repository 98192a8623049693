package notification

import "sync"

// SentNotice is one recorded delivery made through a MockNotifier.
type SentNotice struct {
	NoticeType NoticeType
	Data       NotificationData
	Template   NoticeTemplate
}

// MockNotifier records notifications instead of delivering them.
type MockNotifier struct {
	mu   sync.Mutex
	Sent []SentNotice
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Send(noticeType NoticeType, notification NotificationData, template NoticeTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, SentNotice{NoticeType: noticeType, Data: notification, Template: template})
	return nil
}

// Last returns the most recently recorded notice, or nil if none were sent.
func (m *MockNotifier) Last() *SentNotice {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return nil
	}
	return &m.Sent[len(m.Sent)-1]
}

// Count returns the number of recorded notices.
func (m *MockNotifier) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}
