package notification

import (
	"context"
	"fmt"
	"time"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// MessageSender is satisfied by *messaging.Client.
type MessageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// NotificationService delivers push notifications to signed-in users.
type NotificationService interface {
	SendUserPushNotification(ctx context.Context, userID, title, body string, data map[string]string) error
}

// DefaultNotificationService pushes through Firebase Cloud Messaging. Each
// user's devices subscribe to the topic returned by UserTopic.
type DefaultNotificationService struct {
	sender MessageSender
	logger *zap.Logger
}

func NewDefaultNotificationService(sender MessageSender, logger *zap.Logger) (*DefaultNotificationService, error) {
	if sender == nil {
		return nil, fmt.Errorf("notification service initialization error: message sender is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultNotificationService{sender: sender, logger: logger}, nil
}

// UserTopic is the FCM topic a user's devices listen on.
func UserTopic(userID string) string {
	return "user_" + userID
}

func (s *DefaultNotificationService) SendUserPushNotification(
	ctx context.Context,
	userID, title, body string,
	data map[string]string,
) error {
	if userID == "" {
		return fmt.Errorf("SendUserPushNotification: user id is empty")
	}
	msg := userMessage(userID, title, body, data)
	id, err := s.sender.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("SendUserPushNotification: failed to send FCM message: %w", err)
	}
	s.logger.Debug("push notification sent", zap.String("user", userID), zap.String("messageId", id))
	return nil
}

// deliveryTTL bounds how long FCM keeps an undelivered confirmation.
const deliveryTTL = 24 * time.Hour

// userMessage builds a high-priority push for the user's topic. Pushes that
// share a confirmation id collapse into one on the device.
func userMessage(userID, title, body string, data map[string]string) *messaging.Message {
	payload := make(map[string]string, len(data)+1)
	for k, v := range data {
		payload[k] = v
	}
	if _, ok := payload["role"]; !ok {
		payload["role"] = "user"
	}
	collapse := payload["confirmationId"]
	ttl := deliveryTTL

	return &messaging.Message{
		Topic: UserTopic(userID),
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: payload,
		Android: &messaging.AndroidConfig{
			Priority:    "high",
			CollapseKey: collapse,
			TTL:         &ttl,
			Notification: &messaging.AndroidNotification{
				ChannelID: "delivery_updates",
				Sound:     "default",
				Tag:       collapse,
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":    "10",
				"apns-push-type":   "alert",
				"apns-collapse-id": collapse,
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound:    "default",
					ThreadID: "deliveries",
				},
			},
		},
	}
}
