package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []*messaging.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, m *messaging.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, m)
	return "msg-1", nil
}

func TestSendUserPushNotification(t *testing.T) {
	sender := &fakeSender{}
	svc, err := NewDefaultNotificationService(sender, nil)
	require.NoError(t, err)

	err = svc.SendUserPushNotification(context.Background(), "u1", "Delivery scheduled", "Today 2:00 PM - 4:00 PM", map[string]string{"slotId": "1"})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	require.Equal(t, "user_u1", msg.Topic)
	require.Equal(t, "Delivery scheduled", msg.Notification.Title)
	require.Equal(t, "user", msg.Data["role"])
	require.Equal(t, "1", msg.Data["slotId"])
	require.Equal(t, "high", msg.Android.Priority)
	require.Equal(t, 24*time.Hour, *msg.Android.TTL)
}

func TestUserMessageCollapsesByConfirmation(t *testing.T) {
	data := map[string]string{"confirmationId": "c1", "role": "courier"}
	msg := userMessage("u1", "t", "b", data)

	require.Equal(t, "c1", msg.Android.CollapseKey)
	require.Equal(t, "c1", msg.APNS.Headers["apns-collapse-id"])
	require.Equal(t, "courier", msg.Data["role"])
	require.Len(t, data, 2)
}

func TestSendUserPushNotificationErrors(t *testing.T) {
	_, err := NewDefaultNotificationService(nil, nil)
	require.Error(t, err)

	svc, err := NewDefaultNotificationService(&fakeSender{err: errors.New("unavailable")}, nil)
	require.NoError(t, err)
	require.Error(t, svc.SendUserPushNotification(context.Background(), "u1", "t", "b", nil))
	require.Error(t, svc.SendUserPushNotification(context.Background(), "", "t", "b", nil))
}
