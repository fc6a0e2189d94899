package scheduling

import (
	"context"
	"errors"
	"sync"
	"time"

	"sparkathon/models"
	"sparkathon/services/recommendation"

	"go.uber.org/zap"
)

// RecommendationSource supplies the slot batch for a session.
type RecommendationSource interface {
	FetchRecommendations(ctx context.Context, req models.RecommendationRequest) ([]models.TimeSlot, error)
}

// Submitter books the selected slot.
type Submitter interface {
	Submit(ctx context.Context, req models.ScheduleRequest) (*models.ScheduleConfirmation, error)
}

// SubmittedHook runs after a successful submission, outside the session lock.
type SubmittedHook func(ctx context.Context, confirmation models.ScheduleConfirmation)

// Event is published to subscribers for every accepted transition and every
// notification. Notification is nil for plain state changes.
type Event struct {
	State        models.SchedulingState `json:"state"`
	Notification *models.Notification   `json:"notification,omitempty"`
}

type Options struct {
	OwnerID       string
	FetchTimeout  time.Duration
	SubmitTimeout time.Duration
	Policy        Policy
	Logger        *zap.Logger
	OnSubmitted   SubmittedHook
}

const hookTimeout = 10 * time.Second

// Session drives one scheduling view from mount (Start) to unmount (Close).
// Transitions are serialized by one mutex; asynchronous results are applied
// in the order they complete and discarded once the session is closed.
type Session struct {
	id        string
	opts      Options
	source    RecommendationSource
	submitter Submitter
	logger    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	state      models.SchedulingState
	subs       map[uint64]chan Event
	nextSub    uint64
	closed     bool
	lastActive time.Time
}

func NewSession(id string, source RecommendationSource, submitter Submitter, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:         id,
		opts:       opts,
		source:     source,
		submitter:  submitter,
		logger:     logger.With(zap.String("session", id)),
		ctx:        ctx,
		cancel:     cancel,
		state:      NewState(id),
		subs:       make(map[uint64]chan Event),
		lastActive: now(),
	}
}

func (s *Session) ID() string      { return s.id }
func (s *Session) OwnerID() string { return s.opts.OwnerID }

// Snapshot returns the current state.
func (s *Session) Snapshot() models.SchedulingState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = now()
	return s.state.Clone()
}

// IdleSince reports whether the session has no subscribers and has not been
// used since cutoff.
func (s *Session) IdleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs) == 0 && s.lastActive.Before(cutoff)
}

// Start moves a new session to loading and requests recommendations.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.state.Phase != models.PhaseIdle {
		return ErrInvalidTransition
	}
	return s.loadLocked()
}

// Retry requests recommendations again after a failed load.
func (s *Session) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	return s.loadLocked()
}

func (s *Session) loadLocked() error {
	next, err := BeginLoading(s.state)
	if err != nil {
		return err
	}
	s.applyLocked(next, nil)

	req := models.RecommendationRequest{
		SessionID:    s.id,
		CustomerName: next.CustomerName,
		Address:      next.Address,
	}
	s.wg.Add(1)
	go s.fetch(req)
	return nil
}

func (s *Session) fetch(req models.RecommendationRequest) {
	defer s.wg.Done()

	ctx, cancel := s.withTimeout(s.opts.FetchTimeout)
	defer cancel()

	started := time.Now()
	slots, err := s.source.FetchRecommendations(ctx, req)
	if err == nil {
		err = recommendation.Validate(slots)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.logger.Debug("discarding recommendations for closed session")
		return
	}
	if err != nil {
		s.logger.Warn("recommendation fetch failed", zap.Error(err), zap.Duration("elapsed", time.Since(started)))
		next, terr := LoadFailed(s.state, err)
		if terr != nil {
			return
		}
		s.applyLocked(next, notification(models.NotificationError, models.MsgRecommendationFail))
		return
	}
	next, terr := SlotsLoaded(s.state, slots)
	if terr != nil {
		return
	}
	s.logger.Debug("recommendations loaded", zap.Int("slots", len(slots)), zap.Duration("elapsed", time.Since(started)))
	s.applyLocked(next, nil)
}

// SelectSlot replaces the selected slot.
func (s *Session) SelectSlot(id string) (models.SchedulingState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = now()
	if s.closed {
		return s.state.Clone(), ErrSessionClosed
	}
	next, err := SelectSlot(s.state, id)
	if err != nil {
		return s.state.Clone(), err
	}
	s.applyLocked(next, nil)
	return next.Clone(), nil
}

// UpdateDetails stores the customer name and address.
func (s *Session) UpdateDetails(customerName, address string) (models.SchedulingState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = now()
	if s.closed {
		return s.state.Clone(), ErrSessionClosed
	}
	next := UpdateDetails(s.state, customerName, address)
	s.applyLocked(next, nil)
	return next.Clone(), nil
}

// Submit schedules the selected slot. Without a selection it publishes one
// error notification and leaves the state untouched.
func (s *Session) Submit() (models.SchedulingState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = now()
	if s.closed {
		return s.state.Clone(), ErrSessionClosed
	}

	next, err := Submit(s.state, s.opts.Policy)
	switch {
	case errors.Is(err, ErrNoSlotSelected):
		s.applyLocked(s.state, notification(models.NotificationError, models.MsgSelectWindow))
		return s.state.Clone(), err
	case errors.Is(err, ErrAlreadyScheduled):
		s.applyLocked(s.state, notification(models.NotificationError, models.MsgAlreadyScheduled))
		return s.state.Clone(), err
	case err != nil:
		return s.state.Clone(), err
	}
	s.applyLocked(next, nil)

	slot, _ := next.Slot(next.SubmittingSlotID)
	req := models.ScheduleRequest{
		SessionID:    s.id,
		OwnerID:      s.opts.OwnerID,
		CustomerName: next.CustomerName,
		Address:      next.Address,
		Slot:         slot.Clone(),
	}
	s.wg.Add(1)
	go s.submit(req)
	return next.Clone(), nil
}

func (s *Session) submit(req models.ScheduleRequest) {
	defer s.wg.Done()

	ctx, cancel := s.withTimeout(s.opts.SubmitTimeout)
	defer cancel()

	confirmation, err := s.submitter.Submit(ctx, req)
	if err == nil && confirmation == nil {
		err = errors.New("submitter returned no confirmation")
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Debug("discarding submission result for closed session")
		return
	}
	if err != nil {
		s.logger.Warn("submission failed", zap.String("slot", req.Slot.ID), zap.Error(err))
		if next, terr := SubmissionFailed(s.state, err); terr == nil {
			s.applyLocked(next, notification(models.NotificationError, models.MsgSchedulingFail))
		}
		s.mu.Unlock()
		return
	}
	next, terr := SubmissionSucceeded(s.state)
	if terr != nil {
		s.mu.Unlock()
		return
	}
	msg := confirmation.Message
	if msg == "" {
		msg = models.MsgScheduledOK
	}
	s.applyLocked(next, notification(models.NotificationSuccess, msg))
	hook := s.opts.OnSubmitted
	s.mu.Unlock()

	s.logger.Info("delivery scheduled",
		zap.String("slot", req.Slot.ID),
		zap.String("confirmation", confirmation.ConfirmationID),
	)
	if hook != nil {
		hookCtx, hookCancel := context.WithTimeout(context.Background(), hookTimeout)
		defer hookCancel()
		hook(hookCtx, *confirmation)
	}
}

// Subscribe returns a channel that first receives the current state and then
// every published event, plus a function to stop the subscription. The
// channel is closed on unsubscribe or when the session closes. Events are
// dropped for a subscriber whose buffer is full.
func (s *Session) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.lastActive = now()
	ch <- Event{State: s.state.Clone()}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
				s.lastActive = now()
			}
		})
	}
}

// Close tears the session down: pending fetches and submissions are cancelled
// and their results discarded, subscribers are closed. Safe to call twice.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancel()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Debug("scheduling session closed")
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) applyLocked(next models.SchedulingState, n *models.Notification) {
	changed := next.Version != s.state.Version
	s.state = next
	if !changed && n == nil {
		return
	}
	ev := Event{State: next.Clone(), Notification: n}
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.logger.Warn("subscriber buffer full, dropping event", zap.Uint64("version", next.Version))
		}
	}
}

func (s *Session) withTimeout(d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(s.ctx, d)
	}
	return context.WithCancel(s.ctx)
}

func notification(kind models.NotificationKind, msg string) *models.Notification {
	return &models.Notification{Kind: kind, Message: msg, At: now()}
}
