package scheduling

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"sparkathon/models"
	"sparkathon/services/recommendation"

	"github.com/stretchr/testify/require"
)

// gatedSource resolves each fetch when release fires (or is closed).
type gatedSource struct {
	release chan struct{}
	err     error
	calls   atomic.Int32
	started chan struct{}
}

func newGatedSource() *gatedSource {
	return &gatedSource{release: make(chan struct{}, 4), started: make(chan struct{}, 4)}
}

func (g *gatedSource) FetchRecommendations(ctx context.Context, _ models.RecommendationRequest) ([]models.TimeSlot, error) {
	g.calls.Add(1)
	g.started <- struct{}{}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-g.release:
	}
	if g.err != nil {
		return nil, g.err
	}
	return recommendation.DefaultSlots(), nil
}

// gatedSubmitter resolves one submission per value sent on release.
type gatedSubmitter struct {
	release chan error
	calls   atomic.Int32
	mu      sync.Mutex
	reqs    []models.ScheduleRequest
}

func newGatedSubmitter() *gatedSubmitter {
	return &gatedSubmitter{release: make(chan error, 4)}
}

func (g *gatedSubmitter) Submit(ctx context.Context, req models.ScheduleRequest) (*models.ScheduleConfirmation, error) {
	g.calls.Add(1)
	g.mu.Lock()
	g.reqs = append(g.reqs, req)
	g.mu.Unlock()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-g.release:
		if err != nil {
			return nil, err
		}
	}
	return &models.ScheduleConfirmation{
		ConfirmationID: "c-1",
		SessionID:      req.SessionID,
		Slot:           req.Slot,
		Message:        models.MsgScheduledOK,
	}, nil
}

func nextEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func expectNoEvent(t *testing.T, ch <-chan Event) {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if ok {
			t.Fatalf("unexpected event: phase=%s notification=%v", ev.State.Phase, ev.Notification)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func startReady(t *testing.T, src *gatedSource, sub *gatedSubmitter, opts Options) (*Session, <-chan Event) {
	t.Helper()
	sess := NewSession("s1", src, sub, opts)
	t.Cleanup(sess.Close)

	ch, unsubscribe := sess.Subscribe(16)
	t.Cleanup(unsubscribe)
	require.Equal(t, models.PhaseIdle, nextEvent(t, ch).State.Phase)

	require.NoError(t, sess.Start())
	loading := nextEvent(t, ch)
	require.Equal(t, models.PhaseLoading, loading.State.Phase)
	require.Empty(t, sess.Snapshot().Slots)

	src.release <- struct{}{}
	ready := nextEvent(t, ch)
	require.Equal(t, models.PhaseReady, ready.State.Phase)
	require.Len(t, ready.State.Slots, 4)
	return sess, ch
}

func TestSessionScheduleScenario(t *testing.T) {
	src, sub := newGatedSource(), newGatedSubmitter()
	sess, ch := startReady(t, src, sub, Options{})

	probs := []int{}
	for _, s := range sess.Snapshot().Slots {
		probs = append(probs, s.Probability)
	}
	require.Equal(t, []int{94, 89, 76, 72}, probs)

	_, err := sess.SelectSlot("3")
	require.NoError(t, err)
	require.Equal(t, "3", nextEvent(t, ch).State.SelectedSlotID)

	st, err := sess.Submit()
	require.NoError(t, err)
	require.True(t, st.SubmissionInFlight)
	submitting := nextEvent(t, ch)
	require.True(t, submitting.State.SubmissionInFlight)
	require.Nil(t, submitting.Notification)

	sub.release <- nil
	done := nextEvent(t, ch)
	require.False(t, done.State.SubmissionInFlight)
	require.Equal(t, models.PhaseSubmitted, done.State.Phase)
	require.NotNil(t, done.Notification)
	require.Equal(t, models.NotificationSuccess, done.Notification.Kind)
	require.Equal(t, models.MsgScheduledOK, done.Notification.Message)
	expectNoEvent(t, ch)

	require.Len(t, sub.reqs, 1)
	require.Equal(t, "3", sub.reqs[0].Slot.ID)
	require.False(t, sess.Snapshot().SubmissionInFlight)
}

func TestSessionSubmitWithoutSelection(t *testing.T) {
	src, sub := newGatedSource(), newGatedSubmitter()
	sess, ch := startReady(t, src, sub, Options{})
	before := sess.Snapshot()

	_, err := sess.Submit()
	require.ErrorIs(t, err, ErrNoSlotSelected)

	ev := nextEvent(t, ch)
	require.NotNil(t, ev.Notification)
	require.Equal(t, models.NotificationError, ev.Notification.Kind)
	require.Equal(t, models.MsgSelectWindow, ev.Notification.Message)
	require.Equal(t, before.Version, ev.State.Version)
	require.False(t, ev.State.SubmissionInFlight)
	require.Equal(t, before.Slots, ev.State.Slots)
	expectNoEvent(t, ch)
	require.Zero(t, sub.calls.Load())
}

func TestSessionSelectSameSlotTwice(t *testing.T) {
	src, sub := newGatedSource(), newGatedSubmitter()
	sess, ch := startReady(t, src, sub, Options{})

	_, err := sess.SelectSlot("2")
	require.NoError(t, err)
	nextEvent(t, ch)

	_, err = sess.SelectSlot("2")
	require.NoError(t, err)
	expectNoEvent(t, ch)

	_, err = sess.SelectSlot("9")
	require.ErrorIs(t, err, ErrUnknownSlot)
	require.Equal(t, "2", sess.Snapshot().SelectedSlotID)
}

func TestSessionRejectsDuplicateSubmission(t *testing.T) {
	src, sub := newGatedSource(), newGatedSubmitter()
	sess, ch := startReady(t, src, sub, Options{})

	_, _ = sess.SelectSlot("1")
	nextEvent(t, ch)
	_, err := sess.Submit()
	require.NoError(t, err)
	nextEvent(t, ch)

	_, err = sess.Submit()
	require.ErrorIs(t, err, ErrSubmissionInFlight)
	expectNoEvent(t, ch)

	sub.release <- nil
	nextEvent(t, ch)
	require.EqualValues(t, 1, sub.calls.Load())
}

func TestSessionRepeatedSubmissionsEachNotifyOnce(t *testing.T) {
	src, sub := newGatedSource(), newGatedSubmitter()
	sess, ch := startReady(t, src, sub, Options{})
	_, _ = sess.SelectSlot("1")
	nextEvent(t, ch)

	for i := 1; i <= 2; i++ {
		_, err := sess.Submit()
		require.NoError(t, err)
		nextEvent(t, ch)
		sub.release <- nil
		ev := nextEvent(t, ch)
		require.Equal(t, models.NotificationSuccess, ev.Notification.Kind)
		require.Equal(t, i, ev.State.Submissions)
	}
	expectNoEvent(t, ch)
}

func TestSessionLockAfterSuccess(t *testing.T) {
	src, sub := newGatedSource(), newGatedSubmitter()
	sess, ch := startReady(t, src, sub, Options{Policy: Policy{LockAfterSuccess: true}})
	_, _ = sess.SelectSlot("1")
	nextEvent(t, ch)
	_, _ = sess.Submit()
	nextEvent(t, ch)
	sub.release <- nil
	nextEvent(t, ch)

	_, err := sess.Submit()
	require.ErrorIs(t, err, ErrAlreadyScheduled)
	ev := nextEvent(t, ch)
	require.Equal(t, models.MsgAlreadyScheduled, ev.Notification.Message)
}

func TestSessionSubmissionFailureThenRetry(t *testing.T) {
	src, sub := newGatedSource(), newGatedSubmitter()
	sess, ch := startReady(t, src, sub, Options{})
	_, _ = sess.SelectSlot("2")
	nextEvent(t, ch)

	_, err := sess.Submit()
	require.NoError(t, err)
	nextEvent(t, ch)
	sub.release <- errors.New("backend unavailable")

	failed := nextEvent(t, ch)
	require.Equal(t, models.PhaseFailed, failed.State.Phase)
	require.Equal(t, models.StageSubmit, failed.State.Failure.Stage)
	require.Equal(t, models.NotificationError, failed.Notification.Kind)
	require.False(t, failed.State.SubmissionInFlight)

	_, err = sess.Submit()
	require.NoError(t, err)
	nextEvent(t, ch)
	sub.release <- nil
	require.Equal(t, models.PhaseSubmitted, nextEvent(t, ch).State.Phase)
}

func TestSessionLoadFailureThenRetry(t *testing.T) {
	src, sub := newGatedSource(), newGatedSubmitter()
	src.err = errors.New("recommender down")
	sess := NewSession("s1", src, sub, Options{})
	t.Cleanup(sess.Close)
	ch, unsubscribe := sess.Subscribe(16)
	t.Cleanup(unsubscribe)
	nextEvent(t, ch)

	require.NoError(t, sess.Start())
	nextEvent(t, ch)
	src.release <- struct{}{}

	failed := nextEvent(t, ch)
	require.Equal(t, models.PhaseFailed, failed.State.Phase)
	require.Equal(t, models.StageLoad, failed.State.Failure.Stage)
	require.Equal(t, models.MsgRecommendationFail, failed.Notification.Message)

	require.ErrorIs(t, sess.Start(), ErrInvalidTransition)

	src.err = nil
	require.NoError(t, sess.Retry())
	require.Equal(t, models.PhaseLoading, nextEvent(t, ch).State.Phase)
	src.release <- struct{}{}
	require.Equal(t, models.PhaseReady, nextEvent(t, ch).State.Phase)

	require.ErrorIs(t, sess.Retry(), ErrInvalidTransition)
}

func TestSessionFetchTimeout(t *testing.T) {
	src, sub := newGatedSource(), newGatedSubmitter()
	sess := NewSession("s1", src, sub, Options{FetchTimeout: 10 * time.Millisecond})
	t.Cleanup(sess.Close)
	ch, unsubscribe := sess.Subscribe(16)
	t.Cleanup(unsubscribe)
	nextEvent(t, ch)

	require.NoError(t, sess.Start())
	nextEvent(t, ch)
	failed := nextEvent(t, ch)
	require.Equal(t, models.PhaseFailed, failed.State.Phase)
	require.Contains(t, failed.State.Failure.Message, context.DeadlineExceeded.Error())
}

func TestSessionCloseCancelsPendingFetch(t *testing.T) {
	src, sub := newGatedSource(), newGatedSubmitter()
	sess := NewSession("s1", src, sub, Options{})
	ch, _ := sess.Subscribe(16)
	nextEvent(t, ch)

	require.NoError(t, sess.Start())
	nextEvent(t, ch)
	<-src.started

	sess.Close()
	_, ok := <-ch
	require.False(t, ok)

	snap := sess.Snapshot()
	require.Equal(t, models.PhaseLoading, snap.Phase)
	require.Empty(t, snap.Slots)
	require.True(t, sess.Closed())

	_, err := sess.SelectSlot("1")
	require.ErrorIs(t, err, ErrSessionClosed)
	require.ErrorIs(t, sess.Start(), ErrSessionClosed)
	sess.Close()
}

func TestSessionCloseDiscardsPendingSubmission(t *testing.T) {
	src, sub := newGatedSource(), newGatedSubmitter()
	var hooked atomic.Int32
	sess, ch := startReady(t, src, sub, Options{
		OnSubmitted: func(context.Context, models.ScheduleConfirmation) { hooked.Add(1) },
	})
	_, _ = sess.SelectSlot("1")
	nextEvent(t, ch)
	_, err := sess.Submit()
	require.NoError(t, err)
	nextEvent(t, ch)

	sess.Close()
	require.True(t, sess.Snapshot().SubmissionInFlight)
	require.Zero(t, hooked.Load())
}

func TestSessionSubmittedHook(t *testing.T) {
	got := make(chan models.ScheduleConfirmation, 1)
	sess := NewSession("s1", recommendation.NewStaticSource(0), NewSimulatedSubmitter(0), Options{
		OwnerID: "user-1",
		OnSubmitted: func(_ context.Context, c models.ScheduleConfirmation) {
			got <- c
		},
	})
	t.Cleanup(sess.Close)
	ch, unsubscribe := sess.Subscribe(16)
	t.Cleanup(unsubscribe)
	nextEvent(t, ch)

	require.NoError(t, sess.Start())
	for ev := nextEvent(t, ch); ev.State.Phase != models.PhaseReady; ev = nextEvent(t, ch) {
	}
	_, err := sess.UpdateDetails("Ada", "1 Main St")
	require.NoError(t, err)
	_, err = sess.SelectSlot("3")
	require.NoError(t, err)
	_, err = sess.Submit()
	require.NoError(t, err)

	select {
	case c := <-got:
		require.Equal(t, "user-1", c.OwnerID)
		require.Equal(t, "3", c.Slot.ID)
		require.Equal(t, "Ada", c.CustomerName)
		require.NotEmpty(t, c.ConfirmationID)
	case <-time.After(time.Second):
		t.Fatal("hook not called")
	}
}

func TestSnapshotsAreIndependent(t *testing.T) {
	src, sub := newGatedSource(), newGatedSubmitter()
	sess, _ := startReady(t, src, sub, Options{})

	snap := sess.Snapshot()
	snap.Slots[0].ID = "mutated"
	*snap.Slots[2].Price = 0

	fresh := sess.Snapshot()
	require.Equal(t, "1", fresh.Slots[0].ID)
	require.InDelta(t, 4.99, *fresh.Slots[2].Price, 0.0001)
}
