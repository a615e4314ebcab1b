// Package auth implements the login, signup and logout flows. It is the only
// code, besides the gateway's auth-failure handler, that changes the session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/HashtagPatil/KnowledgeHub/client"
	"github.com/HashtagPatil/KnowledgeHub/internal/validation"
	"github.com/HashtagPatil/KnowledgeHub/navigate"
	"github.com/HashtagPatil/KnowledgeHub/session"
)

// Account limits enforced before signing up.
const (
	MinUsername = 3
	MaxUsername = 50
	MinPassword = 6
)

// Backend is the authentication surface of the gateway. *client.Client
// satisfies it.
type Backend interface {
	Login(ctx context.Context, email, password string) (*client.AuthResponse, error)
	Signup(ctx context.Context, username, email, password string) (*client.AuthResponse, error)
	Logout(ctx context.Context) error
}

// SignupForm is what the signup surface collects.
type SignupForm struct {
	Username string
	Email    string
	Password string
	Confirm  string
}

// Validate applies the local signup rules.
func (f SignupForm) Validate() error {
	if n := utf8.RuneCountInString(strings.TrimSpace(f.Username)); n < MinUsername || n > MaxUsername {
		return validation.New("username", fmt.Sprintf("Username must be between %d and %d characters", MinUsername, MaxUsername))
	}
	if strings.TrimSpace(f.Email) == "" {
		return validation.New("email", "Email is required")
	}
	if f.Password != f.Confirm {
		return validation.New("confirm", "Passwords do not match")
	}
	if utf8.RuneCountInString(f.Password) < MinPassword {
		return validation.New("password", fmt.Sprintf("Password must be at least %d characters", MinPassword))
	}
	return nil
}

var errNoToken = errors.New("auth: response carried no token")

// Service runs the authentication flows against one session.
type Service struct {
	api  Backend
	sess *session.Session
	nav  navigate.Navigator
}

// NewService returns a Service. nav may be nil.
func NewService(api Backend, sess *session.Session, nav navigate.Navigator) *Service {
	if api == nil || sess == nil {
		panic("auth: backend and session are required")
	}
	if nav == nil {
		nav = navigate.Func(func(string) {})
	}
	return &Service{api: api, sess: sess, nav: nav}
}

// Login signs in and establishes the session.
func (s *Service) Login(ctx context.Context, email, password string) (session.Profile, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return session.Profile{}, validation.New("email", "Email is required")
	}
	if password == "" {
		return session.Profile{}, validation.New("password", "Password is required")
	}

	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return session.Profile{}, fmt.Errorf("login: %w", err)
	}
	return s.establish(res)
}

// Signup creates an account and establishes the session.
func (s *Service) Signup(ctx context.Context, form SignupForm) (session.Profile, error) {
	if err := form.Validate(); err != nil {
		return session.Profile{}, err
	}

	res, err := s.api.Signup(ctx, strings.TrimSpace(form.Username), strings.TrimSpace(form.Email), form.Password)
	if err != nil {
		return session.Profile{}, fmt.Errorf("signup: %w", err)
	}
	return s.establish(res)
}

// Logout tells the backend, ignoring any failure, and then always clears the
// session.
func (s *Service) Logout(ctx context.Context) error {
	if s.sess.Authenticated() {
		if err := s.api.Logout(ctx); err != nil {
			log.Warn().Err(err).Msg("logout request failed; clearing session anyway")
		}
	}
	if err := s.sess.Clear(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.nav.Navigate(navigate.Home)
	return nil
}

func (s *Service) establish(res *client.AuthResponse) (session.Profile, error) {
	if res == nil || res.Token == "" {
		return session.Profile{}, errNoToken
	}
	p := session.Profile{Username: res.Username, Email: res.Email}
	if err := s.sess.Establish(res.Token, p); err != nil {
		return session.Profile{}, err
	}
	log.Debug().Str("username", p.Username).Msg("signed in")
	s.nav.Navigate(navigate.Home)
	return p, nil
}
