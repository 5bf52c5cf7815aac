package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/iliyamo/postboard-api/internal/model"
)

// UserFilter is the allow-list of user fields a listing may match on.
// Zero values are ignored.
type UserFilter struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Age       *int
	Role      model.Role
}

func (f UserFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Email != "" {
		q = q.Where("email = ?", NormalizeEmail(f.Email))
	}
	if f.FirstName != "" {
		q = q.Where("first_name = ?", f.FirstName)
	}
	if f.LastName != "" {
		q = q.Where("last_name = ?", f.LastName)
	}
	if f.Phone != "" {
		q = q.Where("phone = ?", f.Phone)
	}
	if f.Age != nil {
		q = q.Where("age = ?", *f.Age)
	}
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	return q
}

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

// WithTx returns a copy bound to tx.
func (r *UserRepo) WithTx(tx *gorm.DB) *UserRepo { return &UserRepo{db: tx} }

// NormalizeEmail lower-cases and trims an address before it is stored or
// compared.
func NormalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Create inserts u and fills its ID and timestamps.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = NormalizeEmail(u.Email)
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *UserRepo) GetByID(ctx context.Context, id uint) (*model.User, error) {
	return getByID[model.User](ctx, r.db, id)
}

// GetByEmail fetches a live user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// EmailTaken reports whether any row other than exceptID holds email.
// Soft-deleted rows are included because the unique index still covers
// them.
func (r *UserRepo) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Unscoped().Model(&model.User{}).Where("email = ?", NormalizeEmail(email))
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *UserRepo) List(ctx context.Context, f UserFilter, p Page) (Result[model.User], error) {
	return paginate[model.User](ctx, f.apply(r.db.Model(&model.User{})), p)
}

// Update applies column updates keyed by column name.
func (r *UserRepo) Update(ctx context.Context, id uint, fields map[string]any) (*model.User, error) {
	if e, ok := fields["email"].(string); ok {
		fields["email"] = NormalizeEmail(e)
	}
	return updateByID[model.User](ctx, r.db, id, fields)
}

// SetRole changes the role of the live user with email.
func (r *UserRepo) SetRole(ctx context.Context, email string, role model.Role) (*model.User, error) {
	u, err := r.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return r.Update(ctx, u.ID, map[string]any{"role": role})
}

func (r *UserRepo) SetAvatar(ctx context.Context, id uint, url string) (*model.User, error) {
	return r.Update(ctx, id, map[string]any{"avatar": url})
}

// SoftDelete marks the user deleted.  The row is kept.
func (r *UserRepo) SoftDelete(ctx context.Context, id uint) error {
	return softDeleteByID[model.User](ctx, r.db, id)
}
