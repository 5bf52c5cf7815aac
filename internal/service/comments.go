package service

import (
	"context"

	"github.com/iliyamo/postboard-api/internal/model"
	"github.com/iliyamo/postboard-api/internal/repository"
	"github.com/iliyamo/postboard-api/internal/utils"
)

type CommentInput struct {
	PostID    uint
	Title     string
	Text      string
	Published bool
}

type CommentPatch struct {
	Title     *string
	Text      *string
	Published *bool
}

type CommentService struct {
	pager
	repo  *repository.CommentRepo
	posts *repository.PostRepo
}

func NewCommentService(repo *repository.CommentRepo, posts *repository.PostRepo, maxLimit int) *CommentService {
	return &CommentService{pager: pager{maxLimit: maxLimit}, repo: repo, posts: posts}
}

// Create stores a comment by authorID on a live post.
func (s *CommentService) Create(ctx context.Context, authorID uint, in CommentInput) (*model.Comment, error) {
	if _, err := s.posts.GetByID(ctx, in.PostID); err != nil {
		return nil, notFound(err, "Post")
	}
	c := &model.Comment{
		AuthorID:  authorID,
		PostID:    in.PostID,
		Title:     in.Title,
		Text:      in.Text,
		Published: in.Published,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CommentService) FindAll(ctx context.Context, f repository.CommentFilter, page, limit int) (repository.Result[model.Comment], error) {
	return s.repo.List(ctx, f, s.page(page, limit))
}

func (s *CommentService) FindOne(ctx context.Context, id uint) (*model.Comment, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Comment")
	}
	return c, nil
}

func (s *CommentService) Update(ctx context.Context, actor utils.Payload, id uint, patch CommentPatch) (*model.Comment, error) {
	c, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(actor, c.AuthorID) {
		return nil, newError(KindForbidden, "", nil)
	}
	fields := map[string]any{}
	if patch.Title != nil {
		fields["title"] = *patch.Title
	}
	if patch.Text != nil {
		fields["text"] = *patch.Text
	}
	if patch.Published != nil {
		fields["published"] = *patch.Published
	}
	updated, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, notFound(err, "Comment")
	}
	return updated, nil
}

func (s *CommentService) Remove(ctx context.Context, actor utils.Payload, id uint) error {
	c, err := s.FindOne(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(actor, c.AuthorID) {
		return newError(KindForbidden, "", nil)
	}
	return notFound(s.repo.SoftDelete(ctx, id), "Comment")
}
