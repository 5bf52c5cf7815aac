package service

import (
	"context"

	"github.com/iliyamo/postboard-api/internal/model"
	"github.com/iliyamo/postboard-api/internal/repository"
	"github.com/iliyamo/postboard-api/internal/storage"
	"github.com/iliyamo/postboard-api/internal/utils"
)

type PostInput struct {
	Title     string
	Text      *string
	Published bool
}

type PostPatch struct {
	Title     *string
	Text      *string
	Published *bool
}

type PostService struct {
	pager
	repo     *repository.PostRepo
	uploader storage.Uploader
}

func NewPostService(repo *repository.PostRepo, uploader storage.Uploader, maxLimit int) *PostService {
	if uploader == nil {
		uploader = storage.Disabled()
	}
	return &PostService{pager: pager{maxLimit: maxLimit}, repo: repo, uploader: uploader}
}

// Create stores a post authored by authorID.
func (s *PostService) Create(ctx context.Context, authorID uint, in PostInput) (*model.Post, error) {
	p := &model.Post{AuthorID: authorID, Title: in.Title, Text: in.Text, Published: in.Published}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PostService) FindAll(ctx context.Context, f repository.PostFilter, page, limit int) (repository.Result[model.Post], error) {
	return s.repo.List(ctx, f, s.page(page, limit))
}

func (s *PostService) FindOne(ctx context.Context, id uint) (*model.Post, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Post")
	}
	return p, nil
}

// Update patches post id on behalf of actor.  When photo is set it is
// uploaded first and its location stored with the patch.
func (s *PostService) Update(ctx context.Context, actor utils.Payload, id uint, patch PostPatch, photo *storage.File) (*model.Post, error) {
	p, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(actor, p.AuthorID) {
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
	if photo != nil {
		loc, err := s.uploader.Upload(ctx, *photo, storage.ItemPost, id)
		if err != nil {
			return nil, uploadError(err)
		}
		fields["photo"] = loc
	}

	updated, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, notFound(err, "Post")
	}
	return updated, nil
}

// Remove soft-deletes post id on behalf of actor.
func (s *PostService) Remove(ctx context.Context, actor utils.Payload, id uint) error {
	p, err := s.FindOne(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(actor, p.AuthorID) {
		return newError(KindForbidden, "", nil)
	}
	return notFound(s.repo.SoftDelete(ctx, id), "Post")
}
