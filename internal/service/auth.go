package service

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/postboard-api/internal/model"
	"github.com/iliyamo/postboard-api/internal/queue"
	"github.com/iliyamo/postboard-api/internal/repository"
	"github.com/iliyamo/postboard-api/internal/utils"
)

// AuthService verifies credentials and drives the token lifecycle.
type AuthService struct {
	users       *UserService
	userRepo    *repository.UserRepo
	tokens      *TokenIssuer
	events      queue.Publisher
	adminSecret string
}

func NewAuthService(users *UserService, tokens *TokenIssuer, events queue.Publisher, adminSecret string) *AuthService {
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &AuthService{
		users:       users,
		userRepo:    users.repo,
		tokens:      tokens,
		events:      events,
		adminSecret: adminSecret,
	}
}

// Login checks email and password and issues a stored token pair.  An
// unknown email is unauthorized and a wrong password forbidden; both carry
// the same message so a caller cannot tell which part was wrong.  Pairs
// from earlier logins stay valid.
func (s *AuthService) Login(ctx context.Context, email, password string) (TokenPair, error) {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, newError(KindUnauthorized, msgWrongCredentials, err)
		}
		return TokenPair{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return TokenPair{}, newError(KindForbidden, msgWrongCredentials, nil)
	}

	pair, err := s.tokens.Issue(PayloadFor(u))
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.tokens.Persist(ctx, pair); err != nil {
		return TokenPair{}, err
	}
	s.emit(ctx, queue.EventLoggedIn, u.ID, u.Email)
	return pair, nil
}

// Register creates a USER account.  The returned user never carries the
// password hash in its JSON form.
func (s *AuthService) Register(ctx context.Context, in UserInput) (*model.User, error) {
	u, err := s.users.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, queue.EventRegistered, u.ID, u.Email)
	return u, nil
}

// GrantAdmin promotes the account with email to ADMIN when secret matches
// the configured admin key.
func (s *AuthService) GrantAdmin(ctx context.Context, secret, email string) (*model.User, error) {
	if s.adminSecret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(s.adminSecret)) != 1 {
		return nil, newError(KindForbidden, "", nil)
	}
	u, err := s.userRepo.SetRole(ctx, email, model.RoleAdmin)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(KindUnauthorized, "", err)
		}
		return nil, err
	}
	s.emit(ctx, queue.EventPromoted, u.ID, u.Email)
	return u, nil
}

// Logout revokes every pair of the caller.
func (s *AuthService) Logout(ctx context.Context, p utils.Payload) error {
	if err := s.tokens.RevokeAll(ctx, p.UserID); err != nil {
		return err
	}
	s.emit(ctx, queue.EventLoggedOut, p.UserID, p.Email)
	return nil
}

// Refresh rotates the caller's pairs into a single new one.
func (s *AuthService) Refresh(ctx context.Context, p utils.Payload) (TokenPair, error) {
	pair, err := s.tokens.Rotate(ctx, p.UserID)
	if err != nil {
		return TokenPair{}, err
	}
	s.emit(ctx, queue.EventTokensRefreshed, pair.UserID, pair.Email)
	return pair, nil
}

func (s *AuthService) emit(ctx context.Context, typ string, userID uint, email string) {
	if err := s.events.Publish(ctx, queue.NewAccountEvent(typ, userID, email)); err != nil {
		log.Warn().Err(err).Str("event", typ).Uint("user_id", userID).Msg("account event not published")
	}
}
