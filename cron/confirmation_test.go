package cron

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"sparkathon/models"
	"sparkathon/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type pushCall struct {
	userID, title, body string
	data                map[string]string
}

type fakeNotifier struct {
	calls []pushCall
	err   error
}

func (f *fakeNotifier) SendUserPushNotification(_ context.Context, userID, title, body string, data map[string]string) error {
	f.calls = append(f.calls, pushCall{userID, title, body, data})
	return f.err
}

func confirmationTask(t *testing.T, p models.ConfirmationPayload) *asynq.Task {
	t.Helper()
	task, _, err := tasks.NewConfirmationTask(p)
	require.NoError(t, err)
	return task
}

func TestHandleConfirmationTaskSendsPush(t *testing.T) {
	n := &fakeNotifier{}
	h := handleConfirmationTask(n, zap.NewNop())

	err := h(context.Background(), confirmationTask(t, models.ConfirmationPayload{
		UserID:         "u1",
		ConfirmationID: "c1",
		SlotID:         "2",
		Window:         "Today 4:00 PM - 6:00 PM",
		Title:          "Delivery scheduled",
		Body:           "Your delivery is booked for Today 4:00 PM - 6:00 PM.",
	}))
	require.NoError(t, err)
	require.Len(t, n.calls, 1)
	require.Equal(t, "u1", n.calls[0].userID)
	require.Equal(t, "c1", n.calls[0].data["confirmationId"])
	require.Equal(t, "2", n.calls[0].data["slotId"])
}

func TestHandleConfirmationTaskErrors(t *testing.T) {
	n := &fakeNotifier{err: errors.New("fcm down")}
	h := handleConfirmationTask(n, zap.NewNop())

	err := h(context.Background(), confirmationTask(t, models.ConfirmationPayload{UserID: "u1"}))
	require.Error(t, err)

	err = h(context.Background(), asynq.NewTask(tasks.TypeDeliveryConfirmation, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)

	var p models.ConfirmationPayload
	require.NoError(t, json.Unmarshal([]byte(`{}`), &p))
	require.NoError(t, h(context.Background(), confirmationTask(t, p)))
	require.Len(t, n.calls, 1)
}
