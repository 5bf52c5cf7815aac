package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/iliyamo/postboard-api/internal/model"
)

// PostFilter is the allow-list for post listings.
type PostFilter struct {
	AuthorID  *uint
	Title     string
	Published *bool
}

func (f PostFilter) apply(q *gorm.DB) *gorm.DB {
	if f.AuthorID != nil {
		q = q.Where("author_id = ?", *f.AuthorID)
	}
	if f.Title != "" {
		q = q.Where("title = ?", f.Title)
	}
	if f.Published != nil {
		q = q.Where("published = ?", *f.Published)
	}
	return q
}

type PostRepo struct{ db *gorm.DB }

func NewPostRepo(db *gorm.DB) *PostRepo { return &PostRepo{db: db} }

func (r *PostRepo) Create(ctx context.Context, p *model.Post) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PostRepo) GetByID(ctx context.Context, id uint) (*model.Post, error) {
	return getByID[model.Post](ctx, r.db, id)
}

func (r *PostRepo) List(ctx context.Context, f PostFilter, p Page) (Result[model.Post], error) {
	return paginate[model.Post](ctx, f.apply(r.db.Model(&model.Post{})), p)
}

func (r *PostRepo) Update(ctx context.Context, id uint, fields map[string]any) (*model.Post, error) {
	return updateByID[model.Post](ctx, r.db, id, fields)
}

func (r *PostRepo) SoftDelete(ctx context.Context, id uint) error {
	return softDeleteByID[model.Post](ctx, r.db, id)
}
