package identity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"sparkathon/models"

	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

type fakeProvider struct {
	mu      sync.Mutex
	users   map[string]string // email -> password
	revoked []string
	signErr error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{users: map[string]string{"ada@example.com": "s3cret"}}
}

func (f *fakeProvider) SignInWithPassword(_ context.Context, email, password string) (*Credentials, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signErr != nil {
		return nil, f.signErr
	}
	pw, ok := f.users[email]
	if !ok || pw != password {
		return nil, &AuthError{Op: "signIn", Message: "Firebase: Error (auth/invalid-credential)."}
	}
	return &Credentials{UID: "uid-" + email, Email: email, IDToken: "id", RefreshToken: "refresh"}, nil
}

func (f *fakeProvider) SignUpWithPassword(ctx context.Context, email, password string) (*Credentials, error) {
	f.mu.Lock()
	if _, exists := f.users[email]; exists {
		f.mu.Unlock()
		return nil, &googleapi.Error{Code: 400, Message: "EMAIL_EXISTS"}
	}
	f.users[email] = password
	f.mu.Unlock()
	return f.SignInWithPassword(ctx, email, password)
}

func (f *fakeProvider) RevokeSessions(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, uid)
	return nil
}

func newTestService(p Provider) *Service {
	return NewService(p, NewMemorySessionStore(), []byte("test-secret"), time.Hour, nil)
}

func TestSignInIssuesToken(t *testing.T) {
	svc := newTestService(newFakeProvider())
	ctx := context.Background()

	resp, err := svc.SignIn(ctx, " ada@example.com ", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.Equal(t, "ada@example.com", resp.User.Email)
	require.Equal(t, "A", resp.User.Initial())

	session, err := svc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	require.Equal(t, resp.SessionID, session.ID)
	require.Equal(t, "uid-ada@example.com", session.UID)

	user, err := svc.CurrentUser(ctx, resp.SessionID)
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", user.Email)
}

func TestSignInErrorIsVerbatim(t *testing.T) {
	svc := newTestService(newFakeProvider())

	_, err := svc.SignIn(context.Background(), "ada@example.com", "wrong")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, "Firebase: Error (auth/invalid-credential).", authErr.Error())
}

func TestSignInFallbackMessage(t *testing.T) {
	p := newFakeProvider()
	p.signErr = errors.New("")
	svc := newTestService(p)

	_, err := svc.SignIn(context.Background(), "ada@example.com", "s3cret")
	require.EqualError(t, err, MsgLoginFailed)
}

func TestSignUpSurfacesProviderMessage(t *testing.T) {
	svc := newTestService(newFakeProvider())
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "ada@example.com", "other")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, "EMAIL_EXISTS", authErr.Message)

	resp, err := svc.SignUp(ctx, "grace@example.com", "hopper")
	require.NoError(t, err)
	require.Equal(t, "grace@example.com", resp.User.Email)
}

func TestSignOutEndsSession(t *testing.T) {
	p := newFakeProvider()
	svc := newTestService(p)
	ctx := context.Background()

	resp, err := svc.SignIn(ctx, "ada@example.com", "s3cret")
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(ctx, resp.SessionID))
	user, err := svc.CurrentUser(ctx, resp.SessionID)
	require.NoError(t, err)
	require.Nil(t, user)
	require.Equal(t, []string{"uid-ada@example.com"}, p.revoked)

	_, err = svc.Authenticate(ctx, resp.Token)
	require.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, svc.SignOut(ctx, resp.SessionID))
}

func TestAuthenticateRejectsForeignTokens(t *testing.T) {
	svc := newTestService(newFakeProvider())
	other := NewService(newFakeProvider(), NewMemorySessionStore(), []byte("other-secret"), time.Hour, nil)

	resp, err := other.SignIn(context.Background(), "ada@example.com", "s3cret")
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), resp.Token)
	require.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.Authenticate(context.Background(), "garbage")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestObserveSession(t *testing.T) {
	svc := newTestService(newFakeProvider())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resp, err := svc.SignIn(ctx, "ada@example.com", "s3cret")
	require.NoError(t, err)

	updates, err := svc.ObserveSession(ctx, resp.SessionID)
	require.NoError(t, err)

	receive := func() *models.User {
		select {
		case u, ok := <-updates:
			require.True(t, ok)
			return u
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for session update")
		}
		return nil
	}

	current := receive()
	require.NotNil(t, current)
	require.Equal(t, "ada@example.com", current.Email)

	require.NoError(t, svc.SignOut(ctx, resp.SessionID))
	require.Nil(t, receive())

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-updates:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestObserveUnknownSessionStartsSignedOut(t *testing.T) {
	svc := newTestService(newFakeProvider())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := svc.ObserveSession(ctx, "missing")
	require.NoError(t, err)
	select {
	case u := <-updates:
		require.Nil(t, u)
	case <-time.After(time.Second):
		t.Fatal("no initial value")
	}
}

func TestObserveSessionReportsExpiry(t *testing.T) {
	svc := NewService(newFakeProvider(), NewMemorySessionStore(), []byte("test-secret"), 50*time.Millisecond, nil)
	svc.ExpiryCheck = 10 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resp, err := svc.SignIn(ctx, "ada@example.com", "s3cret")
	require.NoError(t, err)
	updates, err := svc.ObserveSession(ctx, resp.SessionID)
	require.NoError(t, err)

	select {
	case u := <-updates:
		require.NotNil(t, u)
	case <-time.After(time.Second):
		t.Fatal("no initial value")
	}

	select {
	case u, ok := <-updates:
		require.True(t, ok)
		require.Nil(t, u)
	case <-time.After(time.Second):
		t.Fatal("expired session was never reported")
	}
}
