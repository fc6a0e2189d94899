package scheduling

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ManagerConfig configures the sessions a Manager creates.
type ManagerConfig struct {
	FetchTimeout  time.Duration
	SubmitTimeout time.Duration
	Policy        Policy
	// IdleTTL closes sessions unused for longer than this. Zero disables sweeping.
	IdleTTL     time.Duration
	OnSubmitted SubmittedHook
}

// Manager keeps the live scheduling sessions of all owners. Each session is
// visible only to the owner that created it.
type Manager struct {
	source    RecommendationSource
	submitter Submitter
	cfg       ManagerConfig
	logger    *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(source RecommendationSource, submitter Submitter, cfg ManagerConfig, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		source:    source,
		submitter: submitter,
		cfg:       cfg,
		logger:    logger,
		sessions:  make(map[string]*Session),
	}
}

// Create mounts a new session for ownerID, stores any delivery details given
// up front, and starts loading recommendations for them.
func (m *Manager) Create(ownerID, customerName, address string) (*Session, error) {
	id := uuid.New().String()
	sess := NewSession(id, m.source, m.submitter, Options{
		OwnerID:       ownerID,
		FetchTimeout:  m.cfg.FetchTimeout,
		SubmitTimeout: m.cfg.SubmitTimeout,
		Policy:        m.cfg.Policy,
		Logger:        m.logger,
		OnSubmitted:   m.cfg.OnSubmitted,
	})

	if customerName != "" || address != "" {
		if _, err := sess.UpdateDetails(customerName, address); err != nil {
			sess.Close()
			return nil, err
		}
	}

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()

	if err := sess.Start(); err != nil {
		m.remove(id)
		sess.Close()
		return nil, err
	}
	m.logger.Debug("scheduling session created", zap.String("session", id), zap.String("owner", ownerID))
	return sess, nil
}

// Get returns ownerID's session with the given id.
func (m *Manager) Get(ownerID, id string) (*Session, error) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok || sess.OwnerID() != ownerID {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Close unmounts ownerID's session, cancelling its pending work.
func (m *Manager) Close(ownerID, id string) error {
	sess, err := m.Get(ownerID, id)
	if err != nil {
		return err
	}
	m.remove(id)
	sess.Close()
	return nil
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Sweep closes sessions idle since before cutoff and returns how many were
// closed. Sessions with a live subscriber are never idle.
func (m *Manager) Sweep(cutoff time.Time) int {
	var stale []*Session
	m.mu.Lock()
	for id, sess := range m.sessions {
		if sess.IdleSince(cutoff) {
			stale = append(stale, sess)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, sess := range stale {
		sess.Close()
	}
	if len(stale) > 0 {
		m.logger.Info("expired idle scheduling sessions", zap.Int("count", len(stale)))
	}
	return len(stale)
}

// Run sweeps idle sessions until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	if m.cfg.IdleTTL <= 0 {
		return
	}
	interval := m.cfg.IdleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(now().Add(-m.cfg.IdleTTL))
		}
	}
}

// Shutdown closes every session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for id, sess := range m.sessions {
		all = append(all, sess)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, sess := range all {
		sess.Close()
	}
}
