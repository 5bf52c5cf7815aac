package repository

import (
	"context"

	"gorm.io/gorm"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Page selects one window of an id-ordered result set.
type Page struct {
	Page  int
	Limit int
}

// NewPage normalizes raw query values.  Non-positive values fall back to
// the defaults and limit is capped at maxLimit when maxLimit > 0.
func NewPage(page, limit, maxLimit int) Page {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return Page{Page: page, Limit: limit}
}

// Offset is the number of rows skipped before this page.
func (p Page) Offset() int { return p.Limit * (p.Page - 1) }

// Result is a page of rows plus the total number of matching live rows.
type Result[T any] struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"totalCount"`
	Data       []T   `json:"data"`
}

// paginate counts q and then loads one page of it in insertion order.
func paginate[T any](ctx context.Context, q *gorm.DB, p Page) (Result[T], error) {
	out := Result[T]{Page: p.Page, Limit: p.Limit, Data: make([]T, 0, p.Limit)}

	var model T
	if err := q.WithContext(ctx).Model(&model).Count(&out.TotalCount).Error; err != nil {
		return Result[T]{}, err
	}
	if out.TotalCount == 0 {
		return out, nil
	}
	err := q.WithContext(ctx).
		Order("id ASC").
		Limit(p.Limit).
		Offset(p.Offset()).
		Find(&out.Data).Error
	if err != nil {
		return Result[T]{}, err
	}
	return out, nil
}

func getByID[T any](ctx context.Context, db *gorm.DB, id uint) (*T, error) {
	var row T
	if err := db.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

// updateByID applies fields to a live row and returns the reloaded row.
func updateByID[T any](ctx context.Context, db *gorm.DB, id uint, fields map[string]any) (*T, error) {
	row, err := getByID[T](ctx, db, id)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return row, nil
	}
	if err := db.WithContext(ctx).Model(row).Updates(fields).Error; err != nil {
		return nil, translate(err)
	}
	return getByID[T](ctx, db, id)
}

// softDeleteByID sets deleted_at on a live row.
func softDeleteByID[T any](ctx context.Context, db *gorm.DB, id uint) error {
	var row T
	res := db.WithContext(ctx).Delete(&row, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
