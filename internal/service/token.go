package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/iliyamo/postboard-api/internal/model"
	"github.com/iliyamo/postboard-api/internal/repository"
	"github.com/iliyamo/postboard-api/internal/utils"
)

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	UserID       uint   `json:"userId"`
	Email        string `json:"email"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`

	AccessExpiresAt  time.Time `json:"-"`
	RefreshExpiresAt time.Time `json:"-"`
}

// PayloadFor builds the identity payload embedded in tokens for u.
func PayloadFor(u *model.User) utils.Payload {
	return utils.Payload{UserID: u.ID, Email: u.Email, Phone: u.Phone, Role: string(u.Role)}
}

// TokenIssuer signs, stores, rotates and revokes token pairs, and runs the
// auth gate check.
type TokenIssuer struct {
	db         *gorm.DB
	users      *repository.UserRepo
	tokens     *repository.TokenRepo
	secret     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenIssuer(db *gorm.DB, secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		db:         db,
		users:      repository.NewUserRepo(db),
		tokens:     repository.NewTokenRepo(db),
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Issue signs an access and a refresh token for p.  Nothing is stored.
func (t *TokenIssuer) Issue(p utils.Payload) (TokenPair, error) {
	access, err := utils.SignToken(t.secret, p, utils.KindAccess, t.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := utils.SignToken(t.secret, p, utils.KindRefresh, t.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		UserID:           p.UserID,
		Email:            p.Email,
		AccessToken:      access.Token,
		RefreshToken:     refresh.Token,
		AccessExpiresAt:  access.Exp,
		RefreshExpiresAt: refresh.Exp,
	}, nil
}

func pairRow(pair TokenPair) *model.Token {
	return &model.Token{
		UserID:           pair.UserID,
		Email:            pair.Email,
		AccessTokenHash:  utils.HashToken(pair.AccessToken),
		RefreshTokenHash: utils.HashToken(pair.RefreshToken),
	}
}

// Persist records the hashes of pair so the gate will admit it.
func (t *TokenIssuer) Persist(ctx context.Context, pair TokenPair) error {
	return t.tokens.Store(ctx, pairRow(pair))
}

// Rotate revokes every live pair of userID and stores a freshly issued
// one.  The user is reloaded so a changed role or email is picked up.
// All writes share one transaction: either the new pair exists and the old
// ones are revoked, or nothing changed.
func (t *TokenIssuer) Rotate(ctx context.Context, userID uint) (TokenPair, error) {
	var pair TokenPair
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := t.users.WithTx(tx).GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return newError(KindUnauthorized, "", err)
			}
			return err
		}
		tokens := t.tokens.WithTx(tx)
		if _, err := tokens.RevokeAllForUser(ctx, userID); err != nil {
			return err
		}
		if pair, err = t.Issue(PayloadFor(u)); err != nil {
			return err
		}
		return tokens.Store(ctx, pairRow(pair))
	})
	if err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}

// RevokeAll soft-deletes every live pair of userID.
func (t *TokenIssuer) RevokeAll(ctx context.Context, userID uint) error {
	n, err := t.tokens.RevokeAllForUser(ctx, userID)
	if err != nil {
		return err
	}
	log.Debug().Uint("user_id", userID).Int64("revoked", n).Msg("token pairs revoked")
	return nil
}

// Verify is the auth gate.  raw must carry a valid signature, be
// unexpired, be of the requested kind and still be stored unrevoked for
// the user it names.  Revocation therefore takes effect immediately even
// though the token itself stays cryptographically valid.
func (t *TokenIssuer) Verify(ctx context.Context, raw, kind string) (utils.Payload, error) {
	claims, err := utils.ParseToken(t.secret, raw)
	if err != nil {
		if errors.Is(err, utils.ErrExpiredToken) {
			return utils.Payload{}, newError(KindUnauthorized, "Token expired", err)
		}
		return utils.Payload{}, newError(KindUnauthorized, "", err)
	}
	if claims.Kind != kind {
		return utils.Payload{}, newError(KindUnauthorized, "Wrong token type", nil)
	}
	if _, err := t.tokens.FindActive(ctx, claims.UserID, kind, utils.HashToken(raw)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.Payload{}, newError(KindUnauthorized, "Token revoked", err)
		}
		return utils.Payload{}, err
	}
	return claims.Payload, nil
}
