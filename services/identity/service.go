package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sparkathon/models"
	"sparkathon/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service implements Gateway on top of an external Provider. Signed-in
// sessions live in a SessionStore and are addressed by app session tokens.
type Service struct {
	provider Provider
	store    SessionStore
	secret   []byte
	ttl      time.Duration
	logger   *zap.Logger

	// ExpiryCheck is how often ObserveSession looks for a session that ended
	// through its TTL, which publishes nothing.
	ExpiryCheck time.Duration
}

func NewService(provider Provider, store SessionStore, secret []byte, ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = utils.DefaultAuthSessionTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		provider: provider,
		store:    store,
		secret:   secret,
		ttl:      ttl,
		logger:   logger,

		ExpiryCheck: 30 * time.Second,
	}
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	creds, err := s.provider.SignInWithPassword(ctx, strings.TrimSpace(email), password)
	if err != nil {
		s.logger.Info("sign-in rejected", zap.Error(err))
		return nil, asAuthError("signIn", err, MsgLoginFailed)
	}
	return s.open(ctx, creds)
}

func (s *Service) SignUp(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	creds, err := s.provider.SignUpWithPassword(ctx, strings.TrimSpace(email), password)
	if err != nil {
		s.logger.Info("sign-up rejected", zap.Error(err))
		return nil, asAuthError("signUp", err, MsgSignupFailed)
	}
	return s.open(ctx, creds)
}

// open records a new session for creds and issues its token.
func (s *Service) open(ctx context.Context, creds *Credentials) (*models.AuthResponse, error) {
	now := time.Now()
	session := models.AuthSession{
		ID:            uuid.New().String(),
		UID:           creds.UID,
		Email:         creds.Email,
		IDToken:       creds.IDToken,
		RefreshToken:  creds.RefreshToken,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}

	token, err := utils.GenerateToken(s.secret, session.UID, session.ID, session.Email, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}
	if err := s.store.Save(ctx, session, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to save auth session: %w", err)
	}

	user := session.User()
	if err := s.store.Publish(ctx, session.ID, &user); err != nil {
		s.logger.Warn("failed to publish session change", zap.String("session", session.ID), zap.Error(err))
	}
	s.logger.Info("user signed in", zap.String("uid", session.UID), zap.String("session", session.ID))

	return &models.AuthResponse{
		Token:     token,
		SessionID: session.ID,
		User:      user,
		ExpiresAt: now.Add(s.ttl),
	}, nil
}

// SignOut ends the session. Signing out an unknown session is a no-op.
func (s *Service) SignOut(ctx context.Context, sessionID string) error {
	session, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load auth session: %w", err)
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete auth session: %w", err)
	}
	if err := s.store.Publish(ctx, sessionID, nil); err != nil {
		s.logger.Warn("failed to publish session change", zap.String("session", sessionID), zap.Error(err))
	}
	if err := s.provider.RevokeSessions(ctx, session.UID); err != nil {
		s.logger.Warn("failed to revoke provider sessions", zap.String("uid", session.UID), zap.Error(err))
	}
	s.logger.Info("user signed out", zap.String("uid", session.UID), zap.String("session", sessionID))
	return nil
}

// CurrentUser returns the session's user, or nil when it is signed out.
func (s *Service) CurrentUser(ctx context.Context, sessionID string) (*models.User, error) {
	if sessionID == "" {
		return nil, nil
	}
	session, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	user := session.User()
	return &user, nil
}

func (s *Service) Authenticate(ctx context.Context, token string) (*models.AuthSession, error) {
	uid, sessionID, err := utils.ExtractIDsFromToken(s.secret, token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UID != uid {
		return nil, ErrInvalidToken
	}
	return session, nil
}

func (s *Service) ObserveSession(ctx context.Context, sessionID string) (<-chan *models.User, error) {
	updates, stop, err := s.store.Subscribe(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	current, err := s.CurrentUser(ctx, sessionID)
	if err != nil {
		stop()
		return nil, err
	}

	interval := s.ExpiryCheck
	if interval <= 0 {
		interval = 30 * time.Second
	}

	out := make(chan *models.User, 1)
	go func() {
		defer close(out)
		defer stop()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		signedIn := false
		send := func(u *models.User) bool {
			select {
			case out <- u:
				signedIn = u != nil
				return true
			case <-ctx.Done():
				return false
			}
		}
		if !send(current) {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case u, ok := <-updates:
				if !ok || !send(u) {
					return
				}
			case <-ticker.C:
				if !signedIn {
					continue
				}
				u, err := s.CurrentUser(ctx, sessionID)
				if err != nil {
					s.logger.Warn("identity: session expiry check failed", zap.String("session", sessionID), zap.Error(err))
					continue
				}
				if u == nil && !send(nil) {
					return
				}
			}
		}
	}()
	return out, nil
}
