package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/iliyamo/postboard-api/internal/model"
)

// CommentFilter is the allow-list for comment listings.
type CommentFilter struct {
	AuthorID  *uint
	PostID    *uint
	Title     string
	Published *bool
}

func (f CommentFilter) apply(q *gorm.DB) *gorm.DB {
	if f.AuthorID != nil {
		q = q.Where("author_id = ?", *f.AuthorID)
	}
	if f.PostID != nil {
		q = q.Where("post_id = ?", *f.PostID)
	}
	if f.Title != "" {
		q = q.Where("title = ?", f.Title)
	}
	if f.Published != nil {
		q = q.Where("published = ?", *f.Published)
	}
	return q
}

type CommentRepo struct{ db *gorm.DB }

func NewCommentRepo(db *gorm.DB) *CommentRepo { return &CommentRepo{db: db} }

func (r *CommentRepo) Create(ctx context.Context, c *model.Comment) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CommentRepo) GetByID(ctx context.Context, id uint) (*model.Comment, error) {
	return getByID[model.Comment](ctx, r.db, id)
}

func (r *CommentRepo) List(ctx context.Context, f CommentFilter, p Page) (Result[model.Comment], error) {
	return paginate[model.Comment](ctx, f.apply(r.db.Model(&model.Comment{})), p)
}

func (r *CommentRepo) Update(ctx context.Context, id uint, fields map[string]any) (*model.Comment, error) {
	return updateByID[model.Comment](ctx, r.db, id, fields)
}

func (r *CommentRepo) SoftDelete(ctx context.Context, id uint) error {
	return softDeleteByID[model.Comment](ctx, r.db, id)
}
