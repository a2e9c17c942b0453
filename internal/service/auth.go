package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/cinema-admin/internal/model"
	"github.com/iliyamo/cinema-admin/internal/repository"
	"github.com/iliyamo/cinema-admin/internal/utils"
)

// UserStore is the part of the user repository used for authentication.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// Mailer sends a templated e-mail.  mailer.Mailer satisfies it.
type Mailer interface {
	Send(recipient, templateFile string, data any) error
}

// Invalidator drops cached responses after a write made outside the
// cached routes.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Session is the result of a successful login.
type Session struct {
	User    *model.User `json:"user"`
	Token   string      `json:"token"`
	Expires time.Time   `json:"expires"`
}

// AuthService registers users and issues session tokens.
type AuthService struct {
	Users      UserStore
	Secret     string
	TTL        time.Duration
	BcryptCost int
	Mailer     Mailer      // optional
	Cache      Invalidator // optional
	Logger     *log.Logger

	wg sync.WaitGroup
}

// Register creates a MEMBER account.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	u := &model.User{Name: strings.TrimSpace(name), Email: email, Role: model.RoleMember}
	if err := s.CreateUser(ctx, u, password); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser hashes password and stores u with whatever role it
// carries.  An address that is already registered yields ErrEmailTaken
// and nothing is written.
func (s *AuthService) CreateUser(ctx context.Context, u *model.User, password string) error {
	hash, err := utils.HashPassword(password, s.BcryptCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrEmailTaken
		}
		return err
	}
	if s.Cache != nil {
		if err := s.Cache.Invalidate(context.WithoutCancel(ctx)); err != nil && s.Logger != nil {
			s.Logger.Warnf("cache: invalidate after creating user %s: %v", u.ID, err)
		}
	}
	s.welcome(u)
	return nil
}

// Authenticate checks the credentials and issues a session token.  An
// unknown e-mail and a wrong password both yield ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.BurnPasswordCheck(password, s.BcryptCost)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	tok, err := utils.NewSessionToken(s.Secret, u.ID, string(u.Role), s.TTL)
	if err != nil {
		return nil, err
	}
	return &Session{User: u, Token: tok.Token, Expires: tok.Exp}, nil
}

// CurrentUser resolves the user named by a verified session.
func (s *AuthService) CurrentUser(ctx context.Context, claims *utils.SessionClaims) (*model.User, error) {
	if claims == nil {
		return nil, utils.ErrInvalidToken
	}
	return s.Users.GetByID(ctx, claims.Subject)
}

// welcome mails the new user in the background.  Wait blocks until
// every pending mail has been handed to the SMTP server.
func (s *AuthService) welcome(u *model.User) {
	if s.Mailer == nil {
		return
	}
	data := map[string]any{"Name": u.Name, "Email": u.Email, "Role": string(u.Role)}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if err := recover(); err != nil && s.Logger != nil {
				s.Logger.Errorf("welcome mail panic: %v", err)
			}
		}()
		if err := s.Mailer.Send(u.Email, "user_welcome.tmpl", data); err != nil && s.Logger != nil {
			s.Logger.Warnf("welcome mail to %s: %v", u.Email, err)
		}
	}()
}

// Wait blocks until background mails have finished.
func (s *AuthService) Wait() {
	s.wg.Wait()
}
