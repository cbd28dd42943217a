package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/forms"
	"github.com/fjod/go_cart/storefront/internal/gateway"
	"github.com/fjod/go_cart/storefront/internal/notify"
	"github.com/sirupsen/logrus"
)

type Gateway interface {
	Login(ctx context.Context, email, password string) (*gateway.AuthResult, error)
	Register(ctx context.Context, name, email, password string) (*gateway.AuthResult, error)
	Me(ctx context.Context) (*domain.User, error)
}

type Sessions interface {
	Establish(user domain.User, token string)
	Clear()
}

type Notifier interface {
	Post(message string, severity notify.Severity, d time.Duration) notify.ID
}

type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterForm struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
}

var formMessages = forms.Messages{
	"name.required":           "Name is required",
	"email.required":          "Email is required",
	"email.email":             "Invalid email",
	"password.required":       "Password is required",
	"password.min":            "At least 6 characters",
	"confirmPassword.eqfield": "Passwords do not match",
}

type Service struct {
	gw       Gateway
	sessions Sessions
	notes    Notifier
	forms    *forms.Validator
	log      logrus.FieldLogger
}

func NewService(gw Gateway, sessions Sessions, notes Notifier, log logrus.FieldLogger) *Service {
	return &Service{
		gw:       gw,
		sessions: sessions,
		notes:    notes,
		forms:    forms.New(),
		log:      log,
	}
}

func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, error) {
	form := LoginForm{Email: strings.TrimSpace(email), Password: password}
	if err := s.forms.Check(form, formMessages); err != nil {
		return nil, err
	}

	res, err := s.gw.Login(ctx, form.Email, form.Password)
	if err != nil {
		s.log.WithError(err).Warn("login failed")
		return nil, &domain.Failure{Message: domain.UserMessage(err, "Invalid credentials"), Err: err}
	}

	s.sessions.Establish(res.User, res.Token)
	s.notes.Post(fmt.Sprintf("Welcome back, %s!", res.User.Name), notify.SeveritySuccess, notify.DefaultDuration)
	s.log.WithField("user_id", res.User.ID).Info("user logged in")
	return &res.User, nil
}

func (s *Service) Register(ctx context.Context, name, email, password, confirm string) (*domain.User, error) {
	form := RegisterForm{
		Name:            strings.TrimSpace(name),
		Email:           strings.TrimSpace(email),
		Password:        password,
		ConfirmPassword: confirm,
	}
	if err := s.forms.Check(form, formMessages); err != nil {
		return nil, err
	}

	res, err := s.gw.Register(ctx, form.Name, form.Email, form.Password)
	if err != nil {
		s.log.WithError(err).Warn("registration failed")
		return nil, &domain.Failure{Message: domain.UserMessage(err, "Registration failed"), Err: err}
	}

	s.sessions.Establish(res.User, res.Token)
	s.notes.Post(fmt.Sprintf("Welcome, %s! 🎉", res.User.Name), notify.SeveritySuccess, notify.DefaultDuration)
	s.log.WithField("user_id", res.User.ID).Info("user registered")
	return &res.User, nil
}

// Bootstrap restores a session from a persisted token. A rejected token leaves
// the session anonymous.
func (s *Service) Bootstrap(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, fmt.Errorf("bootstrap: empty token: %w", domain.ErrUnauthenticated)
	}
	user, err := s.gw.Me(gateway.WithToken(ctx, token))
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	s.sessions.Establish(*user, token)
	return user, nil
}

func (s *Service) Logout() {
	s.sessions.Clear()
}
