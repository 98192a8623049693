package notice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickcart/device-authz/pkg/notification"
)

func TestRegisterTemplates(t *testing.T) {
	manager := notification.NewNotificationManager()
	mock := notification.NewMockNotifier()
	manager.RegisterNotifier(notification.EmailSystem, mock)

	require.NoError(t, RegisterTemplates(manager))

	err := manager.Send(AuthorizeCodeNotice, notification.NotificationData{
		To:   "jane.doe@example.com",
		Data: map[string]string{"Name": "Jane", "Code": "1234"},
	})
	require.NoError(t, err)

	sent := mock.Last()
	require.NotNil(t, sent)
	assert.Equal(t, "Your verification code", sent.Template.Subject)
	assert.Contains(t, sent.Template.Html, "{{.Code}}")

	err = manager.Send(AuthorizeUnlockNotice, notification.NotificationData{
		To:   "jane.doe@example.com",
		Data: map[string]string{"Name": "Jane", "UnlockLink": "https://shop.example.com/reset"},
	})
	require.NoError(t, err)

	sent = mock.Last()
	require.NotNil(t, sent)
	assert.Equal(t, "Unlock your account", sent.Template.Subject)
	assert.Contains(t, sent.Template.Html, "{{.UnlockLink}}")
}
