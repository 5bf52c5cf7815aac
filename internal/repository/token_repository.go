package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/iliyamo/postboard-api/internal/model"
	"github.com/iliyamo/postboard-api/internal/utils"
)

// TokenRepo persists issued token pairs.  Revocation is a soft delete.
type TokenRepo struct{ db *gorm.DB }

func NewTokenRepo(db *gorm.DB) *TokenRepo { return &TokenRepo{db: db} }

// WithTx returns a copy bound to tx.
func (r *TokenRepo) WithTx(tx *gorm.DB) *TokenRepo { return &TokenRepo{db: tx} }

// Store inserts a pair row.  Hashes, not raw tokens, are expected.
func (r *TokenRepo) Store(ctx context.Context, t *model.Token) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// FindActive returns the non-revoked pair of userID whose access or
// refresh hash (chosen by kind) equals hash.
func (r *TokenRepo) FindActive(ctx context.Context, userID uint, kind, hash string) (*model.Token, error) {
	var col string
	switch kind {
	case utils.KindAccess:
		col = "access_token_hash"
	case utils.KindRefresh:
		col = "refresh_token_hash"
	default:
		return nil, fmt.Errorf("unknown token kind %q", kind)
	}
	var t model.Token
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND "+col+" = ?", userID, hash).
		First(&t).Error
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// RevokeAllForUser soft-deletes every live pair of userID and reports how
// many were revoked.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Token{})
	return res.RowsAffected, res.Error
}

// CountActive returns the number of live pairs of userID.
func (r *TokenRepo) CountActive(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Token{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
