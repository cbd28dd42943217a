package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/gateway"
	"github.com/fjod/go_cart/storefront/internal/notify"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockGateway struct {
	m       sync.Mutex
	result  *gateway.AuthResult
	me      *domain.User
	err     error
	calls   int
	lastReg [3]string
}

func (g *mockGateway) Login(_ context.Context, _, _ string) (*gateway.AuthResult, error) {
	g.m.Lock()
	defer g.m.Unlock()
	g.calls++
	return g.result, g.err
}

func (g *mockGateway) Register(_ context.Context, name, email, password string) (*gateway.AuthResult, error) {
	g.m.Lock()
	defer g.m.Unlock()
	g.calls++
	g.lastReg = [3]string{name, email, password}
	return g.result, g.err
}

func (g *mockGateway) Me(context.Context) (*domain.User, error) {
	g.m.Lock()
	defer g.m.Unlock()
	g.calls++
	return g.me, g.err
}

type posted struct {
	message  string
	severity notify.Severity
}

type mockNotifier struct {
	m     sync.Mutex
	posts []posted
}

func (n *mockNotifier) Post(message string, severity notify.Severity, _ time.Duration) notify.ID {
	n.m.Lock()
	defer n.m.Unlock()
	n.posts = append(n.posts, posted{message, severity})
	return notify.ID(len(n.posts))
}

var asha = domain.User{ID: "7", Name: "Asha", Email: "asha@example.com", Role: domain.RoleCustomer}

func newService(gw *mockGateway) (*Service, *session.Store, *mockNotifier) {
	logger, _ := test.NewNullLogger()
	store := session.NewStore()
	notes := &mockNotifier{}
	return NewService(gw, store, notes, logger), store, notes
}

func TestLogin_EstablishesSession(t *testing.T) {
	gw := &mockGateway{result: &gateway.AuthResult{User: asha, Token: "jwt-1"}}
	svc, store, notes := newService(gw)

	u, err := svc.Login(context.Background(), " asha@example.com ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Asha", u.Name)
	assert.True(t, store.Authenticated())
	assert.Equal(t, "jwt-1", store.Token())
	assert.Equal(t, []posted{{"Welcome back, Asha!", notify.SeveritySuccess}}, notes.posts)
}

func TestLogin_ValidationStopsBeforeNetwork(t *testing.T) {
	gw := &mockGateway{}
	svc, store, _ := newService(gw)

	_, err := svc.Login(context.Background(), "not-an-email", "")
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	var fields domain.FieldErrors
	require.True(t, errors.As(err, &fields))
	assert.Equal(t, "Invalid email", fields["email"])
	assert.Equal(t, "Password is required", fields["password"])
	assert.Equal(t, 0, gw.calls)
	assert.False(t, store.Authenticated())
}

func TestLogin_ServerMessageOrFallback(t *testing.T) {
	gw := &mockGateway{err: fmt.Errorf("Login: %w", &domain.ServerError{Status: 400, Message: "Wrong password"})}
	svc, store, notes := newService(gw)

	_, err := svc.Login(context.Background(), "asha@example.com", "x")
	require.ErrorIs(t, err, domain.ErrServerRejected)
	assert.Equal(t, "Wrong password", domain.UserMessage(err, ""))
	assert.False(t, store.Authenticated())
	assert.Empty(t, notes.posts)

	gw.err = fmt.Errorf("Login: %w", domain.ErrNetwork)
	_, err = svc.Login(context.Background(), "asha@example.com", "x")
	require.ErrorIs(t, err, domain.ErrNetwork)
	assert.Equal(t, "Invalid credentials", domain.UserMessage(err, ""))
}

func TestRegister(t *testing.T) {
	gw := &mockGateway{result: &gateway.AuthResult{User: asha, Token: "jwt-2"}}
	svc, store, notes := newService(gw)

	_, err := svc.Register(context.Background(), " Asha ", "asha@example.com", "secret1", "secret1")
	require.NoError(t, err)
	assert.Equal(t, [3]string{"Asha", "asha@example.com", "secret1"}, gw.lastReg)
	assert.Equal(t, "jwt-2", store.Token())
	assert.Equal(t, []posted{{"Welcome, Asha! 🎉", notify.SeveritySuccess}}, notes.posts)
}

func TestRegister_Validation(t *testing.T) {
	gw := &mockGateway{}
	svc, _, _ := newService(gw)

	_, err := svc.Register(context.Background(), "  ", "asha@example.com", "abc", "abd")
	var fields domain.FieldErrors
	require.True(t, errors.As(err, &fields))
	assert.Equal(t, domain.FieldErrors{
		"name":            "Name is required",
		"password":        "At least 6 characters",
		"confirmPassword": "Passwords do not match",
	}, fields)
	assert.Equal(t, 0, gw.calls)
}

func TestRegister_FailureFallback(t *testing.T) {
	gw := &mockGateway{err: &domain.ServerError{Status: 500}}
	svc, _, _ := newService(gw)

	_, err := svc.Register(context.Background(), "Asha", "asha@example.com", "secret1", "secret1")
	assert.Equal(t, "Registration failed", domain.UserMessage(err, ""))
}

func TestBootstrap(t *testing.T) {
	gw := &mockGateway{me: &asha}
	svc, store, _ := newService(gw)

	u, err := svc.Bootstrap(context.Background(), "persisted")
	require.NoError(t, err)
	assert.Equal(t, asha.ID, u.ID)
	assert.Equal(t, "persisted", store.Token())

	svc.Logout()
	assert.False(t, store.Authenticated())
	assert.Empty(t, store.Token())
}

func TestBootstrap_RejectedToken(t *testing.T) {
	gw := &mockGateway{err: fmt.Errorf("%w: %w", domain.ErrUnauthenticated, &domain.ServerError{Status: 401})}
	svc, store, _ := newService(gw)

	_, err := svc.Bootstrap(context.Background(), "expired")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.False(t, store.Authenticated())

	_, err = svc.Bootstrap(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}
